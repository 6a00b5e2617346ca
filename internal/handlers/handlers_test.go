package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"membership-backend/internal/auth"
	"membership-backend/internal/cache"
	"membership-backend/internal/storage"
)

func newTestServer(t *testing.T) (*chi.Mux, sqlmock.Sqlmock) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := storage.NewStorage(sqlx.NewDb(db, "sqlmock"))
	h := New(store, cache.Noop{}, nil)

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r, mock
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "full_name", "password_hash",
		"menu_access", "sub_menu_access", "component_access",
		"is_active", "needs_password_reset", "created_at", "updated_at",
	})
}

func roleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "description", "created_at"})
}

// expectPrincipal mocks the auth middleware's user lookup plus the role gate's
// role fetch for a caller holding the given role.
func expectPrincipal(mock sqlmock.Sqlmock, userID, roleName string) {
	now := time.Now()

	mock.ExpectQuery("SELECT id, email, full_name, password_hash").
		WithArgs(userID).
		WillReturnRows(userRows().AddRow(
			userID, "caller@example.com", "Caller", "hash",
			[]byte("[]"), []byte("{}"), []byte("[]"),
			true, false, now, now,
		))
	mock.ExpectQuery("FROM user_roles ur").
		WithArgs(userID).
		WillReturnRows(roleRows().AddRow("r-1", roleName, "", now))
	mock.ExpectQuery("FROM user_roles ur").
		WithArgs(userID).
		WillReturnRows(roleRows().AddRow("r-1", roleName, "", now))
}

func doRequest(t *testing.T, r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestProtectedRoute_MissingToken(t *testing.T) {
	r, _ := newTestServer(t)

	rec := doRequest(t, r, http.MethodGet, "/v1/users", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Missing authorization header", errorMessage(t, rec))
}

func TestProtectedRoute_GarbageToken(t *testing.T) {
	r, _ := newTestServer(t)

	rec := doRequest(t, r, http.MethodGet, "/v1/users", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid authorization token", errorMessage(t, rec))
}

func TestStaffCannotManageUsers(t *testing.T) {
	r, mock := newTestServer(t)

	token, err := auth.GenerateToken("u-1")
	require.NoError(t, err)
	expectPrincipal(mock, "u-1", "staff")

	rec := doRequest(t, r, http.MethodGet, "/v1/users", token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Insufficient permissions. Admin role required.", errorMessage(t, rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffCanListMembers(t *testing.T) {
	r, mock := newTestServer(t)

	token, err := auth.GenerateToken("u-1")
	require.NoError(t, err)
	expectPrincipal(mock, "u-1", "staff")

	mock.ExpectQuery("FROM members ORDER BY created_at DESC").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "full_name", "contact_email",
			"phone_number", "address", "status", "created_at", "updated_at",
		}))

	rec := doRequest(t, r, http.MethodGet, "/v1/members", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.JSONEq(t, "[]", string(body["members"]))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBankAccount_Linked(t *testing.T) {
	r, mock := newTestServer(t)

	token, err := auth.GenerateToken("u-1")
	require.NoError(t, err)
	expectPrincipal(mock, "u-1", "admin")

	mock.ExpectQuery("SELECT COUNT(.+) FROM account_types WHERE bank_account_id").
		WithArgs("ba-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	rec := doRequest(t, r, http.MethodDelete, "/v1/bank-accounts/ba-1", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot delete bank account: it is linked to existing account types.", errorMessage(t, rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAccountType_Linked(t *testing.T) {
	r, mock := newTestServer(t)

	token, err := auth.GenerateToken("u-1")
	require.NoError(t, err)
	expectPrincipal(mock, "u-1", "admin")

	mock.ExpectQuery("SELECT COUNT(.+) FROM accounts WHERE account_type_id").
		WithArgs("at-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rec := doRequest(t, r, http.MethodDelete, "/v1/account-types/at-1", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot delete account type: it is linked to existing accounts.", errorMessage(t, rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBankAccountSummary_ZeroFunds(t *testing.T) {
	r, mock := newTestServer(t)

	token, err := auth.GenerateToken("u-1")
	require.NoError(t, err)
	expectPrincipal(mock, "u-1", "admin")

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("ba-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0.0))

	rec := doRequest(t, r, http.MethodGet, "/v1/bank-accounts/ba-1/summary", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		BankAccountID string  `json:"bank_account_id"`
		TotalFunds    float64 `json:"total_funds"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ba-1", body.BankAccountID)
	assert.Equal(t, 0.0, body.TotalFunds)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_MissingCredentials(t *testing.T) {
	r, _ := newTestServer(t)

	rec := doRequest(t, r, http.MethodPost, "/v1/auth/login", "", `{"email":"a@b.c"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email and password required", errorMessage(t, rec))
}

func TestLogin_UnknownUser(t *testing.T) {
	r, mock := newTestServer(t)

	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("nobody@example.com").
		WillReturnRows(userRows())

	rec := doRequest(t, r, http.MethodPost, "/v1/auth/login", "",
		`{"email":"nobody@example.com","password":"secret"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", errorMessage(t, rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccount_MissingFields(t *testing.T) {
	r, mock := newTestServer(t)

	token, err := auth.GenerateToken("u-1")
	require.NoError(t, err)
	expectPrincipal(mock, "u-1", "staff")

	rec := doRequest(t, r, http.MethodPost, "/v1/accounts", token, `{"member_id":"m-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Member ID, Account Type ID, and Account Number are required", errorMessage(t, rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMember_InvalidStatus(t *testing.T) {
	r, mock := newTestServer(t)

	token, err := auth.GenerateToken("u-1")
	require.NoError(t, err)
	expectPrincipal(mock, "u-1", "staff")

	rec := doRequest(t, r, http.MethodPost, "/v1/members", token,
		`{"full_name":"Jane Doe","contact_email":"jane@example.com","status":"frozen"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid member status", errorMessage(t, rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePermission_DuplicatePair(t *testing.T) {
	r, mock := newTestServer(t)

	token, err := auth.GenerateToken("u-1")
	require.NoError(t, err)
	expectPrincipal(mock, "u-1", "admin")

	mock.ExpectQuery("INSERT INTO permissions").
		WillReturnError(&pq.Error{Code: "23505"})

	rec := doRequest(t, r, http.MethodPost, "/v1/permissions", token,
		`{"resource":"members","action":"read"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "A permission with this resource and action already exists", errorMessage(t, rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInactiveUserRejected(t *testing.T) {
	r, mock := newTestServer(t)

	token, err := auth.GenerateToken("u-1")
	require.NoError(t, err)

	now := time.Now()
	mock.ExpectQuery("SELECT id, email, full_name, password_hash").
		WithArgs("u-1").
		WillReturnRows(userRows().AddRow(
			"u-1", "caller@example.com", "Caller", "hash",
			[]byte("[]"), []byte("{}"), []byte("[]"),
			false, false, now, now,
		))
	mock.ExpectQuery("FROM user_roles ur").
		WithArgs("u-1").
		WillReturnRows(roleRows())

	rec := doRequest(t, r, http.MethodGet, "/v1/members", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid authorization token", errorMessage(t, rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}
