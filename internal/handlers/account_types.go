package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"membership-backend/internal/audit"
	"membership-backend/internal/auth"
	"membership-backend/internal/models"
)

func (h *Handler) ListAccountTypes(w http.ResponseWriter, r *http.Request) {
	accountTypes, err := h.store.ListAccountTypes(r.Context())
	if err != nil {
		writeStoreError(w, err, "Account type not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"account_types": accountTypes})
}

func (h *Handler) GetAccountType(w http.ResponseWriter, r *http.Request) {
	accountType, err := h.store.GetAccountType(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err, "Account type not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"account_type": accountType})
}

func (h *Handler) CreateAccountType(w http.ResponseWriter, r *http.Request) {
	var input models.CreateAccountTypeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if input.Name == "" || input.BankAccountID == "" {
		writeError(w, http.StatusBadRequest, "Name and bank_account_id are required")
		return
	}

	accountType, err := h.store.CreateAccountType(r.Context(), input)
	if err != nil {
		writeStoreError(w, err, "Account type not found")
		return
	}

	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		h.recordAudit(principal, audit.ActionCreated, "account_types", accountType.ID)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"account_type": accountType})
}

func (h *Handler) UpdateAccountType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input models.UpdateAccountTypeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	accountType, err := h.store.UpdateAccountType(r.Context(), id, input)
	if err != nil {
		writeStoreError(w, err, "Account type not found")
		return
	}

	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		h.recordAudit(principal, audit.ActionUpdated, "account_types", id)
	}
	writeJSON(w, http.StatusOK, map[string]any{"account_type": accountType})
}

func (h *Handler) DeleteAccountType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteAccountType(r.Context(), id); err != nil {
		writeStoreError(w, err, "Account type not found")
		return
	}

	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		h.recordAudit(principal, audit.ActionDeleted, "account_types", id)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Account type deleted successfully"})
}
