package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"membership-backend/internal/auth"
	"membership-backend/internal/authz"
	"membership-backend/internal/storage"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user and returns a JWT token
// @Summary User login
// @Description Authenticates user with email and password, returns JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{} "Token and user data"
// @Failure 400 {object} map[string]string "Invalid request body or missing credentials"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /v1/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password required")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeStoreError(w, err, "User not found")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !user.IsActive {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		logrus.WithError(err).Error("generate token")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

// Logout revokes the presented token for its remaining lifetime.
// @Summary User logout
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Confirmation message"
// @Security BearerAuth
// @Router /v1/auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing authorization header")
		return
	}

	ttl := time.Until(principal.TokenExpiresAt)
	if err := h.cache.RevokeToken(principal.TokenID, ttl); err != nil {
		logrus.WithError(err).Warn("revoke token")
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Me returns the caller's profile: user row, deduplicated roles and the
// flattened capability list, resolved fresh on every call.
// @Summary Get current user profile
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{} "User profile with roles and permissions"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /v1/auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing authorization header")
		return
	}

	user, err := h.resolver.Resolve(r.Context(), principal.ID)
	if err != nil {
		if errors.Is(err, authz.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeStoreError(w, err, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

type changePasswordRequest struct {
	Password string `json:"password"`
}

// ChangePassword sets a new password for the caller and clears the
// needs_password_reset flag.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing authorization header")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("hash password")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := h.store.UpdateUserPassword(r.Context(), principal.ID, string(hash)); err != nil {
		writeStoreError(w, err, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}
