package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"membership-backend/internal/models"
)

type accountTypeRow struct {
	ID              string    `db:"id"`
	Name            string    `db:"name"`
	Description     *string   `db:"description"`
	MinBalance      float64   `db:"min_balance"`
	ProfitRate      float64   `db:"profit_rate"`
	WithdrawalRules []byte    `db:"withdrawal_rules"`
	ProcessingFee   float64   `db:"processing_fee"`
	BankAccountID   string    `db:"bank_account_id"`
	CreatedAt       time.Time `db:"created_at"`

	BankID            string `db:"bank_id"`
	BankName          string `db:"bank_name"`
	BankAccountNumber string `db:"bank_account_number"`
}

const accountTypeJoin = `
	SELECT t.id, t.name, t.description, t.min_balance, t.profit_rate, t.withdrawal_rules, t.processing_fee, t.bank_account_id, t.created_at,
		b.id AS bank_id, b.name AS bank_name, b.account_number AS bank_account_number
	FROM account_types t
	JOIN bank_accounts b ON b.id = t.bank_account_id
`

func mapAccountTypeRow(row accountTypeRow) models.AccountType {
	rules := row.WithdrawalRules
	if len(rules) == 0 {
		rules = []byte("{}")
	}

	return models.AccountType{
		ID:              row.ID,
		Name:            row.Name,
		Description:     row.Description,
		MinBalance:      row.MinBalance,
		ProfitRate:      row.ProfitRate,
		WithdrawalRules: rules,
		ProcessingFee:   row.ProcessingFee,
		BankAccountID:   row.BankAccountID,
		CreatedAt:       row.CreatedAt,
		BankAccount: &models.BankAccountRef{
			ID:            row.BankID,
			Name:          row.BankName,
			AccountNumber: row.BankAccountNumber,
		},
	}
}

func (s *Storage) ListAccountTypes(ctx context.Context) ([]models.AccountType, error) {
	query := accountTypeJoin + ` ORDER BY t.name ASC`

	var rows []accountTypeRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	accountTypes := make([]models.AccountType, 0, len(rows))
	for _, row := range rows {
		accountTypes = append(accountTypes, mapAccountTypeRow(row))
	}
	return accountTypes, nil
}

func (s *Storage) GetAccountType(ctx context.Context, id string) (*models.AccountType, error) {
	query := accountTypeJoin + ` WHERE t.id = $1`

	var row accountTypeRow
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	accountType := mapAccountTypeRow(row)
	return &accountType, nil
}

func (s *Storage) CreateAccountType(ctx context.Context, input models.CreateAccountTypeInput) (*models.AccountType, error) {
	minBalance := 0.0
	if input.MinBalance != nil {
		minBalance = *input.MinBalance
	}
	profitRate := 0.0
	if input.ProfitRate != nil {
		profitRate = *input.ProfitRate
	}
	processingFee := 0.0
	if input.ProcessingFee != nil {
		processingFee = *input.ProcessingFee
	}
	rules := []byte("{}")
	if len(input.WithdrawalRules) > 0 {
		rules = input.WithdrawalRules
	}

	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO account_types (id, name, description, min_balance, profit_rate, withdrawal_rules, processing_fee, bank_account_id)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8)
	`, id, input.Name, input.Description, minBalance, profitRate, string(rules), processingFee, input.BankAccountID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrInvalidReference
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return s.GetAccountType(ctx, id)
}

// UpdateAccountType applies a partial update: nil input fields are left
// untouched.
func (s *Storage) UpdateAccountType(ctx context.Context, id string, input models.UpdateAccountTypeInput) (*models.AccountType, error) {
	var b updateBuilder
	if input.Name != nil {
		b.set("name", *input.Name)
	}
	if input.Description != nil {
		b.set("description", nullIfEmpty(*input.Description))
	}
	if input.MinBalance != nil {
		b.set("min_balance", *input.MinBalance)
	}
	if input.ProfitRate != nil {
		b.set("profit_rate", *input.ProfitRate)
	}
	if len(input.WithdrawalRules) > 0 {
		b.set("withdrawal_rules", string(input.WithdrawalRules))
	}
	if input.ProcessingFee != nil {
		b.set("processing_fee", *input.ProcessingFee)
	}
	if input.BankAccountID != nil {
		b.set("bank_account_id", *input.BankAccountID)
	}

	if b.empty() {
		return s.GetAccountType(ctx, id)
	}

	query, args := b.query("account_types", id)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrInvalidReference
		}
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
	return s.GetAccountType(ctx, id)
}

// DeleteAccountType refuses to delete while any account references the
// account type.
func (s *Storage) DeleteAccountType(ctx context.Context, id string) error {
	var linked int
	err := s.db.GetContext(ctx, &linked,
		`SELECT COUNT(1) FROM accounts WHERE account_type_id = $1`, id)
	if err != nil {
		return err
	}
	if linked > 0 {
		return ErrAccountTypeLinked
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM account_types WHERE id = $1`, id)
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
