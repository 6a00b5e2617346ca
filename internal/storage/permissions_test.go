package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membership-backend/internal/models"
)

func TestCreatePermission_DuplicatePair(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectQuery("INSERT INTO permissions").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := store.CreatePermission(context.Background(), models.CreatePermissionInput{
		Resource: "members",
		Action:   "read",
	})
	assert.ErrorIs(t, err, ErrDuplicatePermission)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePermission_Success(t *testing.T) {
	store, mock := newTestStorage(t)

	rows := sqlmock.NewRows([]string{"id", "resource", "action", "description", "created_at"}).
		AddRow("p-1", "members", "read", "", time.Now())
	mock.ExpectQuery("INSERT INTO permissions").
		WillReturnRows(rows)

	permission, err := store.CreatePermission(context.Background(), models.CreatePermissionInput{
		Resource: "members",
		Action:   "read",
	})
	require.NoError(t, err)
	assert.Equal(t, "members", permission.Resource)
	assert.Equal(t, "read", permission.Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePermission_MovesOntoTakenPair(t *testing.T) {
	store, mock := newTestStorage(t)

	action := "write"
	mock.ExpectExec("UPDATE permissions SET action").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := store.UpdatePermission(context.Background(), "p-1", models.UpdatePermissionInput{
		Action: &action,
	})
	assert.ErrorIs(t, err, ErrDuplicatePermission)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePermission_NotFound(t *testing.T) {
	store, mock := newTestStorage(t)

	action := "write"
	mock.ExpectExec("UPDATE permissions SET action").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.UpdatePermission(context.Background(), "missing", models.UpdatePermissionInput{
		Action: &action,
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePermission_NotFound(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectExec("DELETE FROM permissions WHERE id").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeletePermission(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
