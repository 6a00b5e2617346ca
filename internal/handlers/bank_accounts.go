package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"membership-backend/internal/audit"
	"membership-backend/internal/auth"
	"membership-backend/internal/models"
)

func (h *Handler) ListBankAccounts(w http.ResponseWriter, r *http.Request) {
	bankAccounts, err := h.store.ListBankAccounts(r.Context())
	if err != nil {
		writeStoreError(w, err, "Bank account not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bank_accounts": bankAccounts})
}

func (h *Handler) GetBankAccount(w http.ResponseWriter, r *http.Request) {
	bankAccount, err := h.store.GetBankAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err, "Bank account not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bank_account": bankAccount})
}

// BankAccountSummary recomputes the total funds held against a bank account
// across all accounts of its account types. Unknown ids report zero.
// @Summary Bank account funds summary
// @Tags bank-accounts
// @Produce json
// @Param id path string true "Bank account ID"
// @Success 200 {object} models.BankAccountSummary
// @Security BearerAuth
// @Router /v1/bank-accounts/{id}/summary [get]
func (h *Handler) BankAccountSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	total, err := h.store.SummarizeBankAccountFunds(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Bank account not found")
		return
	}
	writeJSON(w, http.StatusOK, models.BankAccountSummary{
		BankAccountID: id,
		TotalFunds:    total,
	})
}

func (h *Handler) CreateBankAccount(w http.ResponseWriter, r *http.Request) {
	var input models.CreateBankAccountInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if input.Name == "" || input.AccountNumber == "" {
		writeError(w, http.StatusBadRequest, "Name and account number are required")
		return
	}

	bankAccount, err := h.store.CreateBankAccount(r.Context(), input)
	if err != nil {
		writeStoreError(w, err, "Bank account not found")
		return
	}

	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		h.recordAudit(principal, audit.ActionCreated, "bank_accounts", bankAccount.ID)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"bank_account": bankAccount})
}

func (h *Handler) UpdateBankAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input models.UpdateBankAccountInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	bankAccount, err := h.store.UpdateBankAccount(r.Context(), id, input)
	if err != nil {
		writeStoreError(w, err, "Bank account not found")
		return
	}

	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		h.recordAudit(principal, audit.ActionUpdated, "bank_accounts", id)
	}
	writeJSON(w, http.StatusOK, map[string]any{"bank_account": bankAccount})
}

func (h *Handler) DeleteBankAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteBankAccount(r.Context(), id); err != nil {
		writeStoreError(w, err, "Bank account not found")
		return
	}

	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		h.recordAudit(principal, audit.ActionDeleted, "bank_accounts", id)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Bank account deleted successfully"})
}
