package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membership-backend/internal/models"
)

func accountJoinRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "member_id", "account_type_id", "account_number", "balance",
		"open_date", "status", "processing_fee_paid", "created_at", "updated_at",
		"member_full_name", "member_contact_email",
		"type_name", "type_description", "type_processing_fee",
		"bank_id", "bank_name",
	})
}

func TestCreateAccount_UnknownAccountType(t *testing.T) {
	store, mock := newTestStorage(t)

	// The insert-select matches no account type row, so nothing is returned.
	mock.ExpectQuery("INSERT INTO accounts").
		WillReturnError(sql.ErrNoRows)

	_, err := store.CreateAccount(context.Background(), models.CreateAccountInput{
		MemberID:      "m-1",
		AccountTypeID: "missing",
		AccountNumber: "SA-100",
	})
	assert.ErrorIs(t, err, ErrAccountTypeNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccount_DerivesProcessingFeePaid(t *testing.T) {
	store, mock := newTestStorage(t)

	now := time.Now()

	mock.ExpectQuery("INSERT INTO accounts").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a-1"))
	mock.ExpectQuery("SELECT a.id, a.member_id").
		WithArgs("a-1").
		WillReturnRows(accountJoinRows().AddRow(
			"a-1", "m-1", "at-1", "SA-100", 0.0,
			now, "open", true, now, now,
			"Jane Doe", "jane@example.com",
			"Savings", nil, 0.0,
			"ba-1", "Main Pool",
		))

	account, err := store.CreateAccount(context.Background(), models.CreateAccountInput{
		MemberID:      "m-1",
		AccountTypeID: "at-1",
		AccountNumber: "SA-100",
	})
	require.NoError(t, err)

	assert.True(t, account.ProcessingFeePaid)
	require.NotNil(t, account.Member)
	assert.Equal(t, "Jane Doe", account.Member.FullName)
	require.NotNil(t, account.AccountType)
	assert.Equal(t, "Savings", account.AccountType.Name)
	require.NotNil(t, account.AccountType.BankAccount)
	assert.Equal(t, "Main Pool", account.AccountType.BankAccount.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccount_InvalidMember(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectQuery("INSERT INTO accounts").
		WillReturnError(&pq.Error{Code: "23503"})

	_, err := store.CreateAccount(context.Background(), models.CreateAccountInput{
		MemberID:      "missing",
		AccountTypeID: "at-1",
		AccountNumber: "SA-100",
	})
	assert.ErrorIs(t, err, ErrInvalidReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAccount_PartialUpdate(t *testing.T) {
	store, mock := newTestStorage(t)

	now := time.Now()
	balance := 250.0

	mock.ExpectExec("UPDATE accounts SET balance").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT a.id, a.member_id").
		WithArgs("a-1").
		WillReturnRows(accountJoinRows().AddRow(
			"a-1", "m-1", "at-1", "SA-100", balance,
			now, "open", false, now, now,
			"Jane Doe", "jane@example.com",
			"Savings", nil, 25.0,
			"ba-1", "Main Pool",
		))

	account, err := store.UpdateAccount(context.Background(), "a-1", models.UpdateAccountInput{
		Balance: &balance,
	})
	require.NoError(t, err)
	assert.Equal(t, 250.0, account.Balance)
	assert.False(t, account.ProcessingFeePaid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAccountType_RefusesWhenLinked(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectQuery("SELECT COUNT(.+) FROM accounts WHERE account_type_id").
		WithArgs("at-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	err := store.DeleteAccountType(context.Background(), "at-1")
	assert.ErrorIs(t, err, ErrAccountTypeLinked)
	assert.NoError(t, mock.ExpectationsWereMet())
}
