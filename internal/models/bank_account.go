package models

import "time"

// BankAccount is a custodial account holding pooled organizational funds.
type BankAccount struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	AccountNumber string    `json:"account_number" db:"account_number"`
	Description   *string   `json:"description" db:"description"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// BankAccountRef is the join-enrichment shape embedded in account types and
// accounts.
type BankAccountRef struct {
	ID            string `json:"id" db:"ref_id"`
	Name          string `json:"name" db:"ref_name"`
	AccountNumber string `json:"account_number,omitempty" db:"ref_account_number"`
}

type CreateBankAccountInput struct {
	Name          string  `json:"name"`
	AccountNumber string  `json:"account_number"`
	Description   *string `json:"description"`
}

type UpdateBankAccountInput struct {
	Name          *string `json:"name"`
	AccountNumber *string `json:"account_number"`
	Description   *string `json:"description"`
}

// BankAccountSummary is the computed funds aggregate for one bank account.
// total_funds is recomputed on every request, never cached.
type BankAccountSummary struct {
	BankAccountID string  `json:"bank_account_id"`
	TotalFunds    float64 `json:"total_funds"`
}
