package models

import "time"

const (
	AccountStatusOpen      = "open"
	AccountStatusClosed    = "closed"
	AccountStatusSuspended = "suspended"
)

// Account is a member's holding of a given account type. The bank account is
// linked indirectly through the account type.
type Account struct {
	ID                string    `json:"id" db:"id"`
	MemberID          string    `json:"member_id" db:"member_id"`
	AccountTypeID     string    `json:"account_type_id" db:"account_type_id"`
	AccountNumber     string    `json:"account_number" db:"account_number"`
	Balance           float64   `json:"balance" db:"balance"`
	OpenDate          time.Time `json:"open_date" db:"open_date"`
	Status            string    `json:"status" db:"status"`
	ProcessingFeePaid bool      `json:"processing_fee_paid" db:"processing_fee_paid"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`

	// Joined data; keys mirror the underlying table names.
	Member      *MemberRef      `json:"members,omitempty" db:"-"`
	AccountType *AccountTypeRef `json:"account_types,omitempty" db:"-"`
}

// MemberRef is the join-enrichment shape embedded in accounts.
type MemberRef struct {
	ID           string `json:"id"`
	FullName     string `json:"full_name"`
	ContactEmail string `json:"contact_email"`
}

func ValidAccountStatus(status string) bool {
	switch status {
	case AccountStatusOpen, AccountStatusClosed, AccountStatusSuspended:
		return true
	}
	return false
}

type CreateAccountInput struct {
	MemberID      string     `json:"member_id"`
	AccountTypeID string     `json:"account_type_id"`
	AccountNumber string     `json:"account_number"`
	Balance       *float64   `json:"balance"`
	OpenDate      *time.Time `json:"open_date"`
	Status        *string    `json:"status"`
}

type UpdateAccountInput struct {
	MemberID          *string    `json:"member_id"`
	AccountTypeID     *string    `json:"account_type_id"`
	AccountNumber     *string    `json:"account_number"`
	Balance           *float64   `json:"balance"`
	OpenDate          *time.Time `json:"open_date"`
	Status            *string    `json:"status"`
	ProcessingFeePaid *bool      `json:"processing_fee_paid"`
}
