package models

import "time"

// Permission is an atomic capability identified by the (resource, action)
// pair. Uniqueness is enforced on that pair, not on id.
type Permission struct {
	ID          string    `json:"id" db:"id"`
	Resource    string    `json:"resource" db:"resource"`
	Action      string    `json:"action" db:"action"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type CreatePermissionInput struct {
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

type UpdatePermissionInput struct {
	Resource    *string `json:"resource"`
	Action      *string `json:"action"`
	Description *string `json:"description"`
}
