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

const userColumns = `id, email, full_name, password_hash, menu_access, sub_menu_access, component_access, is_active, needs_password_reset, created_at, updated_at`

type userRow struct {
	ID                  string    `db:"id"`
	Email               string    `db:"email"`
	FullName            string    `db:"full_name"`
	PasswordHash        string    `db:"password_hash"`
	MenuAccessJSON      []byte    `db:"menu_access"`
	SubMenuAccessJSON   []byte    `db:"sub_menu_access"`
	ComponentAccessJSON []byte    `db:"component_access"`
	IsActive            bool      `db:"is_active"`
	NeedsPasswordReset  bool      `db:"needs_password_reset"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

func mapUserRow(row userRow) (models.User, error) {
	menuAccess, err := decodeStringArray(row.MenuAccessJSON)
	if err != nil {
		return models.User{}, err
	}
	subMenuAccess, err := decodeStringListMap(row.SubMenuAccessJSON)
	if err != nil {
		return models.User{}, err
	}
	componentAccess, err := decodeStringArray(row.ComponentAccessJSON)
	if err != nil {
		return models.User{}, err
	}

	return models.User{
		ID:                 row.ID,
		Email:              row.Email,
		FullName:           row.FullName,
		PasswordHash:       row.PasswordHash,
		MenuAccess:         menuAccess,
		SubMenuAccess:      subMenuAccess,
		ComponentAccess:    componentAccess,
		IsActive:           row.IsActive,
		NeedsPasswordReset: row.NeedsPasswordReset,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}, nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		user, err := mapUserRow(row)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
		ids = append(ids, user.ID)
	}

	if err := s.attachUserRoles(ctx, users, ids); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var row userRow
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	user, err := mapUserRow(row)
	if err != nil {
		return nil, err
	}

	roles, err := s.GetRolesForUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	return &user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var row userRow
	if err := s.db.GetContext(ctx, &row, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	user, err := mapUserRow(row)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) CreateUser(ctx context.Context, input models.CreateUserInput, passwordHash string) (*models.User, error) {
	menuJSON, err := encodeJSON(input.MenuAccess, "[]")
	if err != nil {
		return nil, err
	}
	subMenuJSON, err := encodeJSON(input.SubMenuAccess, "{}")
	if err != nil {
		return nil, err
	}
	componentJSON, err := encodeJSON(input.ComponentAccess, "[]")
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	id := uuid.New().String()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, email, full_name, password_hash, menu_access, sub_menu_access, component_access, is_active, needs_password_reset)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7::jsonb, true, false)
	`, id, input.Email, input.FullName, passwordHash, menuJSON, subMenuJSON, componentJSON)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	if err := insertUserRoles(ctx, tx, id, input.RoleIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// UpdateUser applies a partial update: nil input fields are left untouched.
// A non-nil RoleIDs replaces the user's full role assignment set.
func (s *Storage) UpdateUser(ctx context.Context, id string, input models.UpdateUserInput) (*models.User, error) {
	var b updateBuilder
	if input.Email != nil {
		b.set("email", *input.Email)
	}
	if input.FullName != nil {
		b.set("full_name", *input.FullName)
	}
	if input.MenuAccess != nil {
		menuJSON, err := encodeJSON(input.MenuAccess, "[]")
		if err != nil {
			return nil, err
		}
		b.set("menu_access", menuJSON)
	}
	if input.SubMenuAccess != nil {
		subMenuJSON, err := encodeJSON(input.SubMenuAccess, "{}")
		if err != nil {
			return nil, err
		}
		b.set("sub_menu_access", subMenuJSON)
	}
	if input.ComponentAccess != nil {
		componentJSON, err := encodeJSON(input.ComponentAccess, "[]")
		if err != nil {
			return nil, err
		}
		b.set("component_access", componentJSON)
	}
	if input.IsActive != nil {
		b.set("is_active", *input.IsActive)
	}
	if input.NeedsPasswordReset != nil {
		b.set("needs_password_reset", *input.NeedsPasswordReset)
	}

	if b.empty() && input.RoleIDs == nil {
		return s.GetUser(ctx, id)
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if !b.empty() {
		b.set("updated_at", time.Now().UTC())
		query, args := b.query("users", id)
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
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id); err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrNotFound
		}
	}

	if input.RoleIDs != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, id); err != nil {
			return nil, err
		}
		if err := insertUserRoles(ctx, tx, id, input.RoleIDs); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
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

func (s *Storage) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = $1, needs_password_reset = false, updated_at = NOW()
		WHERE id = $2
	`, passwordHash, id)
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

// GetRolesForUser returns every role assigned to the user via the join table.
// The result may contain duplicates; deduplication is the resolver's job.
func (s *Storage) GetRolesForUser(ctx context.Context, userID string) ([]models.Role, error) {
	query := `
		SELECT r.id, r.name, COALESCE(r.description, '') AS description, r.created_at
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
	`

	roles := make([]models.Role, 0)
	if err := s.db.SelectContext(ctx, &roles, query, userID); err != nil {
		return nil, err
	}
	return roles, nil
}

// GetPermissionsForUser returns the permissions granted through all of the
// user's roles. The same (resource, action) pair appears once per granting
// role; deduplication is the resolver's job.
func (s *Storage) GetPermissionsForUser(ctx context.Context, userID string) ([]models.Permission, error) {
	query := `
		SELECT p.id, p.resource, p.action, COALESCE(p.description, '') AS description, p.created_at
		FROM user_roles ur
		JOIN role_permissions rp ON rp.role_id = ur.role_id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE ur.user_id = $1
	`

	permissions := make([]models.Permission, 0)
	if err := s.db.SelectContext(ctx, &permissions, query, userID); err != nil {
		return nil, err
	}
	return permissions, nil
}

type userRoleRow struct {
	UserID      string    `db:"user_id"`
	RoleID      string    `db:"role_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

func (s *Storage) attachUserRoles(ctx context.Context, users []models.User, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		SELECT ur.user_id, r.id AS role_id, r.name, COALESCE(r.description, '') AS description, r.created_at
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = ANY($1)
	`

	var rows []userRoleRow
	if err := s.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return err
	}

	byUser := make(map[string][]models.Role, len(users))
	for _, row := range rows {
		byUser[row.UserID] = append(byUser[row.UserID], models.Role{
			ID:          row.RoleID,
			Name:        row.Name,
			Description: row.Description,
			CreatedAt:   row.CreatedAt,
		})
	}
	for i := range users {
		users[i].Roles = byUser[users[i].ID]
	}
	return nil
}

// insertUserRoles runs inside the caller's transaction, so duplicate ids are
// absorbed with ON CONFLICT rather than an error check: a 23505 would abort
// the whole transaction.
func insertUserRoles(ctx context.Context, tx sqlxExecer, userID string, roleIDs []string) error {
	for _, roleID := range roleIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO user_roles (id, user_id, role_id)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING
		`, uuid.New().String(), userID, roleID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrInvalidReference
			}
			return err
		}
	}
	return nil
}
