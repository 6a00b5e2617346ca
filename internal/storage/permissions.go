package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"membership-backend/internal/models"
)

const permissionColumns = `id, resource, action, COALESCE(description, '') AS description, created_at`

func (s *Storage) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	query := `SELECT ` + permissionColumns + ` FROM permissions ORDER BY resource, action`

	permissions := make([]models.Permission, 0)
	if err := s.db.SelectContext(ctx, &permissions, query); err != nil {
		return nil, err
	}
	return permissions, nil
}

func (s *Storage) GetPermission(ctx context.Context, id string) (*models.Permission, error) {
	query := `SELECT ` + permissionColumns + ` FROM permissions WHERE id = $1`

	var permission models.Permission
	if err := s.db.GetContext(ctx, &permission, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &permission, nil
}

// CreatePermission enforces uniqueness on the (resource, action) pair.
func (s *Storage) CreatePermission(ctx context.Context, input models.CreatePermissionInput) (*models.Permission, error) {
	query := `
		INSERT INTO permissions (id, resource, action, description)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + permissionColumns

	var permission models.Permission
	err := s.db.GetContext(ctx, &permission, query,
		uuid.New().String(), input.Resource, input.Action, nullIfEmpty(input.Description))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicatePermission
		}
		return nil, err
	}
	return &permission, nil
}

// UpdatePermission applies a partial update: nil input fields are left
// untouched. Moving a permission onto an already-taken (resource, action)
// pair is rejected.
func (s *Storage) UpdatePermission(ctx context.Context, id string, input models.UpdatePermissionInput) (*models.Permission, error) {
	var b updateBuilder
	if input.Resource != nil {
		b.set("resource", *input.Resource)
	}
	if input.Action != nil {
		b.set("action", *input.Action)
	}
	if input.Description != nil {
		b.set("description", nullIfEmpty(*input.Description))
	}

	if b.empty() {
		return s.GetPermission(ctx, id)
	}

	query, args := b.query("permissions", id)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicatePermission
		}
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.GetPermission(ctx, id)
}

func (s *Storage) DeletePermission(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
