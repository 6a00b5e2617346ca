package models

import "time"

type User struct {
	ID                 string              `json:"id" db:"id"`
	Email              string              `json:"email" db:"email"`
	FullName           string              `json:"full_name" db:"full_name"`
	PasswordHash       string              `json:"-" db:"password_hash"`
	MenuAccess         []string            `json:"menu_access" db:"-"`
	SubMenuAccess      map[string][]string `json:"sub_menu_access" db:"-"`
	ComponentAccess    []string            `json:"component_access" db:"-"`
	IsActive           bool                `json:"is_active" db:"is_active"`
	NeedsPasswordReset bool                `json:"needs_password_reset" db:"needs_password_reset"`
	CreatedAt          time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at" db:"updated_at"`

	// Joined data. Roles is populated on list/get enrichment; Permissions only
	// on the profile fetch, flattened and deduplicated across roles.
	Roles       []Role       `json:"roles,omitempty" db:"-"`
	Permissions []Permission `json:"permissions,omitempty" db:"-"`
}

type CreateUserInput struct {
	Email           string              `json:"email"`
	Password        string              `json:"password"`
	FullName        string              `json:"full_name"`
	RoleIDs         []string            `json:"role_ids"`
	MenuAccess      []string            `json:"menu_access"`
	SubMenuAccess   map[string][]string `json:"sub_menu_access"`
	ComponentAccess []string            `json:"component_access"`
}

// UpdateUserInput carries a partial update: nil fields are left untouched.
// RoleIDs replaces the full role assignment set when present.
type UpdateUserInput struct {
	Email              *string             `json:"email"`
	FullName           *string             `json:"full_name"`
	RoleIDs            []string            `json:"role_ids"`
	MenuAccess         []string            `json:"menu_access"`
	SubMenuAccess      map[string][]string `json:"sub_menu_access"`
	ComponentAccess    []string            `json:"component_access"`
	IsActive           *bool               `json:"is_active"`
	NeedsPasswordReset *bool               `json:"needs_password_reset"`
}
