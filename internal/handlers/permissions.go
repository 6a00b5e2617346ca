package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"membership-backend/internal/audit"
	"membership-backend/internal/auth"
	"membership-backend/internal/models"
)

func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	permissions, err := h.store.ListPermissions(r.Context())
	if err != nil {
		writeStoreError(w, err, "Permission not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"permissions": permissions})
}

func (h *Handler) GetPermission(w http.ResponseWriter, r *http.Request) {
	permission, err := h.store.GetPermission(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err, "Permission not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"permission": permission})
}

func (h *Handler) CreatePermission(w http.ResponseWriter, r *http.Request) {
	var input models.CreatePermissionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if input.Resource == "" || input.Action == "" {
		writeError(w, http.StatusBadRequest, "Resource and action are required")
		return
	}

	permission, err := h.store.CreatePermission(r.Context(), input)
	if err != nil {
		writeStoreError(w, err, "Permission not found")
		return
	}

	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		h.recordAudit(principal, audit.ActionCreated, "permissions", permission.ID)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"permission": permission})
}

func (h *Handler) UpdatePermission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input models.UpdatePermissionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	permission, err := h.store.UpdatePermission(r.Context(), id, input)
	if err != nil {
		writeStoreError(w, err, "Permission not found")
		return
	}

	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		h.recordAudit(principal, audit.ActionUpdated, "permissions", id)
	}
	writeJSON(w, http.StatusOK, map[string]any{"permission": permission})
}

func (h *Handler) DeletePermission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeletePermission(r.Context(), id); err != nil {
		writeStoreError(w, err, "Permission not found")
		return
	}

	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		h.recordAudit(principal, audit.ActionDeleted, "permissions", id)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Permission deleted successfully"})
}
