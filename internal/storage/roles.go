package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"membership-backend/internal/models"
)

const roleColumns = `id, name, COALESCE(description, '') AS description, created_at`

func (s *Storage) ListRoles(ctx context.Context) ([]models.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles ORDER BY name ASC`

	roles := make([]models.Role, 0)
	if err := s.db.SelectContext(ctx, &roles, query); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(roles))
	for _, role := range roles {
		ids = append(ids, role.ID)
	}
	if err := s.attachRolePermissions(ctx, roles, ids); err != nil {
		return nil, err
	}
	return roles, nil
}

func (s *Storage) GetRole(ctx context.Context, id string) (*models.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE id = $1`

	var role models.Role
	if err := s.db.GetContext(ctx, &role, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	permissions, err := s.getPermissionsForRole(ctx, id)
	if err != nil {
		return nil, err
	}
	role.Permissions = permissions
	return &role, nil
}

func (s *Storage) CreateRole(ctx context.Context, input models.CreateRoleInput) (*models.Role, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	id := uuid.New().String()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO roles (id, name, description)
		VALUES ($1, $2, $3)
	`, id, input.Name, nullIfEmpty(input.Description))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	if err := insertRolePermissions(ctx, tx, id, input.PermissionIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetRole(ctx, id)
}

// UpdateRole applies a partial update: nil input fields are left untouched.
// A non-nil PermissionIDs replaces the role's full permission binding set.
func (s *Storage) UpdateRole(ctx context.Context, id string, input models.UpdateRoleInput) (*models.Role, error) {
	var b updateBuilder
	if input.Name != nil {
		b.set("name", *input.Name)
	}
	if input.Description != nil {
		b.set("description", nullIfEmpty(*input.Description))
	}

	if b.empty() && input.PermissionIDs == nil {
		return s.GetRole(ctx, id)
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if !b.empty() {
		query, args := b.query("roles", id)
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, ErrDuplicate
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
	} else {
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM roles WHERE id = $1)`, id); err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrNotFound
		}
	}

	if input.PermissionIDs != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, id); err != nil {
			return nil, err
		}
		if err := insertRolePermissions(ctx, tx, id, input.PermissionIDs); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetRole(ctx, id)
}

func (s *Storage) DeleteRole(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
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

func (s *Storage) getPermissionsForRole(ctx context.Context, roleID string) ([]models.Permission, error) {
	query := `
		SELECT p.id, p.resource, p.action, COALESCE(p.description, '') AS description, p.created_at
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1
		ORDER BY p.resource, p.action
	`

	permissions := make([]models.Permission, 0)
	if err := s.db.SelectContext(ctx, &permissions, query, roleID); err != nil {
		return nil, err
	}
	return permissions, nil
}

type rolePermissionRow struct {
	RoleID       string    `db:"role_id"`
	PermissionID string    `db:"permission_id"`
	Resource     string    `db:"resource"`
	Action       string    `db:"action"`
	Description  string    `db:"description"`
	CreatedAt    time.Time `db:"created_at"`
}

func (s *Storage) attachRolePermissions(ctx context.Context, roles []models.Role, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		SELECT rp.role_id, p.id AS permission_id, p.resource, p.action, COALESCE(p.description, '') AS description, p.created_at
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = ANY($1)
	`

	var rows []rolePermissionRow
	if err := s.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return err
	}

	byRole := make(map[string][]models.Permission, len(roles))
	for _, row := range rows {
		byRole[row.RoleID] = append(byRole[row.RoleID], models.Permission{
			ID:          row.PermissionID,
			Resource:    row.Resource,
			Action:      row.Action,
			Description: row.Description,
			CreatedAt:   row.CreatedAt,
		})
	}
	for i := range roles {
		roles[i].Permissions = byRole[roles[i].ID]
	}
	return nil
}

// insertRolePermissions runs inside the caller's transaction, so duplicate
// ids are absorbed with ON CONFLICT rather than an error check: a 23505 would
// abort the whole transaction.
func insertRolePermissions(ctx context.Context, tx sqlxExecer, roleID string, permissionIDs []string) error {
	for _, permissionID := range permissionIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO role_permissions (id, role_id, permission_id)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING
		`, uuid.New().String(), roleID, permissionID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrInvalidReference
			}
			return err
		}
	}
	return nil
}
