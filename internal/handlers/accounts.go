package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"membership-backend/internal/audit"
	"membership-backend/internal/auth"
	"membership-backend/internal/models"
)

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.store.ListAccounts(r.Context())
	if err != nil {
		writeStoreError(w, err, "Account not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.store.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err, "Account not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"account": account})
}

// CreateAccount opens a member account. The processing fee flag is derived
// from the account type in the same statement that inserts the row, so the
// fee read and the insert cannot interleave with a concurrent fee change.
// @Summary Create account
// @Tags accounts
// @Accept json
// @Produce json
// @Param account body models.CreateAccountInput true "Account fields"
// @Success 201 {object} map[string]interface{} "Created account"
// @Failure 400 {object} map[string]string "Missing or invalid fields"
// @Failure 404 {object} map[string]string "Account type not found"
// @Security BearerAuth
// @Router /v1/accounts [post]
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var input models.CreateAccountInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if input.MemberID == "" || input.AccountTypeID == "" || input.AccountNumber == "" {
		writeError(w, http.StatusBadRequest, "Member ID, Account Type ID, and Account Number are required")
		return
	}
	if input.Status != nil && !models.ValidAccountStatus(*input.Status) {
		writeError(w, http.StatusBadRequest, "Invalid account status")
		return
	}

	account, err := h.store.CreateAccount(r.Context(), input)
	if err != nil {
		writeStoreError(w, err, "Account not found")
		return
	}

	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		h.recordAudit(principal, audit.ActionCreated, "accounts", account.ID)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"account": account})
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input models.UpdateAccountInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if input.Status != nil && !models.ValidAccountStatus(*input.Status) {
		writeError(w, http.StatusBadRequest, "Invalid account status")
		return
	}

	account, err := h.store.UpdateAccount(r.Context(), id, input)
	if err != nil {
		writeStoreError(w, err, "Account not found")
		return
	}

	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		h.recordAudit(principal, audit.ActionUpdated, "accounts", id)
	}
	writeJSON(w, http.StatusOK, map[string]any{"account": account})
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteAccount(r.Context(), id); err != nil {
		writeStoreError(w, err, "Account not found")
		return
	}

	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		h.recordAudit(principal, audit.ActionDeleted, "accounts", id)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted successfully"})
}
