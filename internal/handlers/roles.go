package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"membership-backend/internal/audit"
	"membership-backend/internal/auth"
	"membership-backend/internal/models"
)

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.store.ListRoles(r.Context())
	if err != nil {
		writeStoreError(w, err, "Role not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"roles": roles})
}

func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.store.GetRole(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err, "Role not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"role": role})
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var input models.CreateRoleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if input.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	role, err := h.store.CreateRole(r.Context(), input)
	if err != nil {
		writeStoreError(w, err, "Role not found")
		return
	}

	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		h.recordAudit(principal, audit.ActionCreated, "roles", role.ID)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"role": role})
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input models.UpdateRoleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	role, err := h.store.UpdateRole(r.Context(), id, input)
	if err != nil {
		writeStoreError(w, err, "Role not found")
		return
	}

	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		h.recordAudit(principal, audit.ActionUpdated, "roles", id)
	}
	writeJSON(w, http.StatusOK, map[string]any{"role": role})
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteRole(r.Context(), id); err != nil {
		writeStoreError(w, err, "Role not found")
		return
	}

	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		h.recordAudit(principal, audit.ActionDeleted, "roles", id)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Role deleted successfully"})
}
