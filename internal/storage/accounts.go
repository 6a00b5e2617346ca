package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"membership-backend/internal/models"
)

var ErrAccountTypeNotFound = errors.New("account type not found")

const accountColumns = `id, member_id, account_type_id, account_number, balance, open_date, status, processing_fee_paid, created_at, updated_at`

type accountRow struct {
	ID                string    `db:"id"`
	MemberID          string    `db:"member_id"`
	AccountTypeID     string    `db:"account_type_id"`
	AccountNumber     string    `db:"account_number"`
	Balance           float64   `db:"balance"`
	OpenDate          time.Time `db:"open_date"`
	Status            string    `db:"status"`
	ProcessingFeePaid bool      `db:"processing_fee_paid"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`

	MemberFullName     string  `db:"member_full_name"`
	MemberContactEmail string  `db:"member_contact_email"`
	TypeName           string  `db:"type_name"`
	TypeDescription    *string `db:"type_description"`
	TypeProcessingFee  float64 `db:"type_processing_fee"`
	BankID             string  `db:"bank_id"`
	BankName           string  `db:"bank_name"`
}

const accountJoin = `
	SELECT a.id, a.member_id, a.account_type_id, a.account_number, a.balance, a.open_date, a.status, a.processing_fee_paid, a.created_at, a.updated_at,
		m.full_name AS member_full_name, m.contact_email AS member_contact_email,
		t.name AS type_name, t.description AS type_description, t.processing_fee AS type_processing_fee,
		b.id AS bank_id, b.name AS bank_name
	FROM accounts a
	JOIN members m ON m.id = a.member_id
	JOIN account_types t ON t.id = a.account_type_id
	JOIN bank_accounts b ON b.id = t.bank_account_id
`

func mapAccountRow(row accountRow) models.Account {
	return models.Account{
		ID:                row.ID,
		MemberID:          row.MemberID,
		AccountTypeID:     row.AccountTypeID,
		AccountNumber:     row.AccountNumber,
		Balance:           row.Balance,
		OpenDate:          row.OpenDate,
		Status:            row.Status,
		ProcessingFeePaid: row.ProcessingFeePaid,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
		Member: &models.MemberRef{
			ID:           row.MemberID,
			FullName:     row.MemberFullName,
			ContactEmail: row.MemberContactEmail,
		},
		AccountType: &models.AccountTypeRef{
			ID:            row.AccountTypeID,
			Name:          row.TypeName,
			Description:   row.TypeDescription,
			ProcessingFee: row.TypeProcessingFee,
			BankAccount: &models.BankAccountRef{
				ID:   row.BankID,
				Name: row.BankName,
			},
		},
	}
}

func (s *Storage) ListAccounts(ctx context.Context) ([]models.Account, error) {
	query := accountJoin + ` ORDER BY a.open_date DESC`

	var rows []accountRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	accounts := make([]models.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, mapAccountRow(row))
	}
	return accounts, nil
}

func (s *Storage) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	query := accountJoin + ` WHERE a.id = $1`

	var row accountRow
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	account := mapAccountRow(row)
	return &account, nil
}

// CreateAccount inserts the account in a single statement that derives
// processing_fee_paid from the referenced account type (true iff its
// processing fee is zero), so a concurrent fee change cannot produce a stale
// flag. An unknown account type inserts nothing.
func (s *Storage) CreateAccount(ctx context.Context, input models.CreateAccountInput) (*models.Account, error) {
	balance := 0.0
	if input.Balance != nil {
		balance = *input.Balance
	}
	openDate := time.Now().UTC()
	if input.OpenDate != nil {
		openDate = *input.OpenDate
	}
	status := models.AccountStatusOpen
	if input.Status != nil {
		status = *input.Status
	}

	query := `
		INSERT INTO accounts (id, member_id, account_type_id, account_number, balance, open_date, status, processing_fee_paid)
		SELECT $1, $2, t.id, $4, $5, $6, $7, t.processing_fee = 0
		FROM account_types t
		WHERE t.id = $3
		RETURNING id
	`

	id := uuid.New().String()
	var inserted string
	err := s.db.QueryRowContext(ctx, query,
		id, input.MemberID, input.AccountTypeID, input.AccountNumber, balance, openDate, status).Scan(&inserted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountTypeNotFound
		}
		if isForeignKeyViolation(err) {
			return nil, ErrInvalidReference
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return s.GetAccount(ctx, inserted)
}

// UpdateAccount applies a partial update: nil input fields are left untouched.
func (s *Storage) UpdateAccount(ctx context.Context, id string, input models.UpdateAccountInput) (*models.Account, error) {
	var b updateBuilder
	if input.MemberID != nil {
		b.set("member_id", *input.MemberID)
	}
	if input.AccountTypeID != nil {
		b.set("account_type_id", *input.AccountTypeID)
	}
	if input.AccountNumber != nil {
		b.set("account_number", *input.AccountNumber)
	}
	if input.Balance != nil {
		b.set("balance", *input.Balance)
	}
	if input.OpenDate != nil {
		b.set("open_date", *input.OpenDate)
	}
	if input.Status != nil {
		b.set("status", *input.Status)
	}
	if input.ProcessingFeePaid != nil {
		b.set("processing_fee_paid", *input.ProcessingFeePaid)
	}

	if b.empty() {
		return s.GetAccount(ctx, id)
	}
	b.set("updated_at", time.Now().UTC())

	query, args := b.query("accounts", id)
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
	return s.GetAccount(ctx, id)
}

func (s *Storage) DeleteAccount(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
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
