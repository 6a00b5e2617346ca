package models

import "time"

const (
	MemberStatusActive   = "active"
	MemberStatusInactive = "inactive"
	MemberStatusPending  = "pending"
)

type Member struct {
	ID           string    `json:"id" db:"id"`
	UserID       *string   `json:"user_id" db:"user_id"`
	FullName     string    `json:"full_name" db:"full_name"`
	ContactEmail string    `json:"contact_email" db:"contact_email"`
	PhoneNumber  *string   `json:"phone_number" db:"phone_number"`
	Address      *string   `json:"address" db:"address"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	Accounts []Account `json:"accounts,omitempty" db:"-"`
}

func ValidMemberStatus(status string) bool {
	switch status {
	case MemberStatusActive, MemberStatusInactive, MemberStatusPending:
		return true
	}
	return false
}

type CreateMemberInput struct {
	UserID       *string `json:"user_id"`
	FullName     string  `json:"full_name"`
	ContactEmail string  `json:"contact_email"`
	PhoneNumber  *string `json:"phone_number"`
	Address      *string `json:"address"`
	Status       *string `json:"status"`
}

type UpdateMemberInput struct {
	UserID       *string `json:"user_id"`
	FullName     *string `json:"full_name"`
	ContactEmail *string `json:"contact_email"`
	PhoneNumber  *string `json:"phone_number"`
	Address      *string `json:"address"`
	Status       *string `json:"status"`
}
