package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"membership-backend/internal/audit"
	"membership-backend/internal/auth"
	"membership-backend/internal/models"
)

// ListMembers returns all members, newest first, each with their accounts.
// @Summary List members
// @Tags members
// @Produce json
// @Success 200 {object} map[string]interface{} "Member list"
// @Security BearerAuth
// @Router /v1/members [get]
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.store.ListMembers(r.Context())
	if err != nil {
		writeStoreError(w, err, "Member not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": members})
}

func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	member, err := h.store.GetMember(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err, "Member not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"member": member})
}

func (h *Handler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var input models.CreateMemberInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if input.FullName == "" || input.ContactEmail == "" {
		writeError(w, http.StatusBadRequest, "Full name and contact email are required")
		return
	}
	if input.Status != nil && !models.ValidMemberStatus(*input.Status) {
		writeError(w, http.StatusBadRequest, "Invalid member status")
		return
	}

	member, err := h.store.CreateMember(r.Context(), input)
	if err != nil {
		writeStoreError(w, err, "Member not found")
		return
	}

	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		h.recordAudit(principal, audit.ActionCreated, "members", member.ID)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"member": member})
}

func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input models.UpdateMemberInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if input.Status != nil && !models.ValidMemberStatus(*input.Status) {
		writeError(w, http.StatusBadRequest, "Invalid member status")
		return
	}

	member, err := h.store.UpdateMember(r.Context(), id, input)
	if err != nil {
		writeStoreError(w, err, "Member not found")
		return
	}

	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		h.recordAudit(principal, audit.ActionUpdated, "members", id)
	}
	writeJSON(w, http.StatusOK, map[string]any{"member": member})
}

func (h *Handler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteMember(r.Context(), id); err != nil {
		writeStoreError(w, err, "Member not found")
		return
	}

	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		h.recordAudit(principal, audit.ActionDeleted, "members", id)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Member deleted successfully"})
}
