package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"membership-backend/internal/models"
)

const bankAccountColumns = `id, name, account_number, description, created_at`

func (s *Storage) ListBankAccounts(ctx context.Context) ([]models.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts ORDER BY name ASC`

	bankAccounts := make([]models.BankAccount, 0)
	if err := s.db.SelectContext(ctx, &bankAccounts, query); err != nil {
		return nil, err
	}
	return bankAccounts, nil
}

func (s *Storage) GetBankAccount(ctx context.Context, id string) (*models.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts WHERE id = $1`

	var bankAccount models.BankAccount
	if err := s.db.GetContext(ctx, &bankAccount, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &bankAccount, nil
}

func (s *Storage) CreateBankAccount(ctx context.Context, input models.CreateBankAccountInput) (*models.BankAccount, error) {
	query := `
		INSERT INTO bank_accounts (id, name, account_number, description)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + bankAccountColumns

	var bankAccount models.BankAccount
	err := s.db.GetContext(ctx, &bankAccount, query,
		uuid.New().String(), input.Name, input.AccountNumber, input.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &bankAccount, nil
}

// UpdateBankAccount applies a partial update: nil input fields are left
// untouched.
func (s *Storage) UpdateBankAccount(ctx context.Context, id string, input models.UpdateBankAccountInput) (*models.BankAccount, error) {
	var b updateBuilder
	if input.Name != nil {
		b.set("name", *input.Name)
	}
	if input.AccountNumber != nil {
		b.set("account_number", *input.AccountNumber)
	}
	if input.Description != nil {
		b.set("description", nullIfEmpty(*input.Description))
	}

	if b.empty() {
		return s.GetBankAccount(ctx, id)
	}

	query, args := b.query("bank_accounts", id)
	res, err := s.db.ExecContext(ctx, query, args...)
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
	return s.GetBankAccount(ctx, id)
}

// DeleteBankAccount refuses to delete while any account type references the
// bank account.
func (s *Storage) DeleteBankAccount(ctx context.Context, id string) error {
	var linked int
	err := s.db.GetContext(ctx, &linked,
		`SELECT COUNT(1) FROM account_types WHERE bank_account_id = $1`, id)
	if err != nil {
		return err
	}
	if linked > 0 {
		return ErrBankAccountLinked
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM bank_accounts WHERE id = $1`, id)
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

// SummarizeBankAccountFunds sums the balance of every account whose account
// type references the given bank account. Recomputed on every call; a bank
// account with no accounts (or an unknown id) sums to 0.
func (s *Storage) SummarizeBankAccountFunds(ctx context.Context, id string) (float64, error) {
	query := `
		SELECT COALESCE(SUM(a.balance), 0)
		FROM accounts a
		JOIN account_types t ON t.id = a.account_type_id
		WHERE t.bank_account_id = $1
	`

	var total float64
	if err := s.db.GetContext(ctx, &total, query, id); err != nil {
		return 0, err
	}
	return total, nil
}
