package models

import (
	"encoding/json"
	"time"
)

// AccountType is a product definition (savings, fixed deposit, ...) owned by
// exactly one bank account. WithdrawalRules is open-ended policy data stored
// as JSON.
type AccountType struct {
	ID              string          `json:"id" db:"id"`
	Name            string          `json:"name" db:"name"`
	Description     *string         `json:"description" db:"description"`
	MinBalance      float64         `json:"min_balance" db:"min_balance"`
	ProfitRate      float64         `json:"profit_rate" db:"profit_rate"`
	WithdrawalRules json.RawMessage `json:"withdrawal_rules" db:"withdrawal_rules"`
	ProcessingFee   float64         `json:"processing_fee" db:"processing_fee"`
	BankAccountID   string          `json:"bank_account_id" db:"bank_account_id"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`

	// Joined data; the key mirrors the underlying table name.
	BankAccount *BankAccountRef `json:"bank_accounts,omitempty" db:"-"`
}

// AccountTypeRef is the join-enrichment shape embedded in accounts.
type AccountTypeRef struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description"`
	ProcessingFee float64         `json:"processing_fee"`
	BankAccount   *BankAccountRef `json:"bank_accounts,omitempty"`
}

type CreateAccountTypeInput struct {
	Name            string          `json:"name"`
	Description     *string         `json:"description"`
	MinBalance      *float64        `json:"min_balance"`
	ProfitRate      *float64        `json:"profit_rate"`
	WithdrawalRules json.RawMessage `json:"withdrawal_rules"`
	ProcessingFee   *float64        `json:"processing_fee"`
	BankAccountID   string          `json:"bank_account_id"`
}

type UpdateAccountTypeInput struct {
	Name            *string         `json:"name"`
	Description     *string         `json:"description"`
	MinBalance      *float64        `json:"min_balance"`
	ProfitRate      *float64        `json:"profit_rate"`
	WithdrawalRules json.RawMessage `json:"withdrawal_rules"`
	ProcessingFee   *float64        `json:"processing_fee"`
	BankAccountID   *string         `json:"bank_account_id"`
}
