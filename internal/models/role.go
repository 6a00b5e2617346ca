package models

import "time"

type Role struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	Permissions []Permission `json:"permissions,omitempty" db:"-"`
}

type CreateRoleInput struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	PermissionIDs []string `json:"permission_ids"`
}

// UpdateRoleInput carries a partial update: nil fields are left untouched.
// PermissionIDs replaces the full permission binding set when present.
type UpdateRoleInput struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	PermissionIDs []string `json:"permission_ids"`
}
