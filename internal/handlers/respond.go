package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"membership-backend/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Error("respond: encode payload")
	}
}

// writeError emits the uniform error envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeStoreError translates storage sentinels to the HTTP error taxonomy:
// 404 for missing rows, 400 for constraint and referential failures, and a
// logged generic 500 for everything else.
func writeStoreError(w http.ResponseWriter, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, storage.ErrAccountTypeNotFound):
		writeError(w, http.StatusNotFound, "Account type not found")
	case errors.Is(err, storage.ErrDuplicatePermission):
		writeError(w, http.StatusBadRequest, "A permission with this resource and action already exists")
	case errors.Is(err, storage.ErrDuplicate):
		writeError(w, http.StatusBadRequest, "A record with these unique values already exists")
	case errors.Is(err, storage.ErrInvalidReference):
		writeError(w, http.StatusBadRequest, "Referenced record does not exist")
	case errors.Is(err, storage.ErrBankAccountLinked):
		writeError(w, http.StatusBadRequest, "Cannot delete bank account: it is linked to existing account types.")
	case errors.Is(err, storage.ErrAccountTypeLinked):
		writeError(w, http.StatusBadRequest, "Cannot delete account type: it is linked to existing accounts.")
	default:
		logrus.WithError(err).Error("storage error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
