package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membership-backend/internal/storage"
)

type stubCache struct {
	revoked bool
	err     error
}

func (c stubCache) RevokeToken(string, time.Duration) error { return nil }
func (c stubCache) IsTokenRevoked(string) (bool, error)     { return c.revoked, c.err }
func (c stubCache) Close() error                            { return nil }

func newTestMiddleware(t *testing.T, c stubCache) (*Middleware, sqlmock.Sqlmock) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewMiddleware(storage.NewStorage(sqlx.NewDb(db, "sqlmock")), c), mock
}

func expectActiveUser(mock sqlmock.Sqlmock, id string) {
	now := time.Now()

	mock.ExpectQuery("SELECT id, email, full_name, password_hash").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "full_name", "password_hash",
			"menu_access", "sub_menu_access", "component_access",
			"is_active", "needs_password_reset", "created_at", "updated_at",
		}).AddRow(
			id, "user@example.com", "User", "hash",
			[]byte("[]"), []byte("{}"), []byte("[]"),
			true, false, now, now,
		))
	mock.ExpectQuery("FROM user_roles ur").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at"}))
}

func serveAuthed(t *testing.T, m *Middleware, token string) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	passed := false
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := PrincipalFromContext(r.Context())
		assert.True(t, ok)
		passed = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/members", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, passed
}

func TestHandler_RevokedTokenRejected(t *testing.T) {
	m, _ := newTestMiddleware(t, stubCache{revoked: true})

	token, err := GenerateToken("u-1")
	require.NoError(t, err)

	rec, passed := serveAuthed(t, m, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, passed)
	assert.JSONEq(t, `{"error":"Invalid authorization token"}`, rec.Body.String())
}

func TestHandler_RevocationCheckFailsOpen(t *testing.T) {
	m, mock := newTestMiddleware(t, stubCache{err: errors.New("redis down")})
	expectActiveUser(mock, "u-1")

	token, err := GenerateToken("u-1")
	require.NoError(t, err)

	rec, passed := serveAuthed(t, m, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, passed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_MissingHeader(t *testing.T) {
	m, _ := newTestMiddleware(t, stubCache{})

	rec, passed := serveAuthed(t, m, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, passed)
	assert.JSONEq(t, `{"error":"Missing authorization header"}`, rec.Body.String())
}
