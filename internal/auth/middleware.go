package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"membership-backend/internal/cache"
	"membership-backend/internal/storage"
)

type contextKey string

const principalKey contextKey = "membership_principal"

// Principal is the authenticated caller, resolved from the bearer token.
// TokenID and TokenExpiresAt are carried so logout can revoke the exact token.
type Principal struct {
	ID             string
	Email          string
	TokenID        string
	TokenExpiresAt time.Time
}

// Middleware resolves the bearer token to a principal. Missing or malformed
// headers, rejected tokens, revoked tokens and inactive users all fail with
// 401; the role check happens downstream.
type Middleware struct {
	store *storage.Storage
	cache cache.Client
}

func NewMiddleware(store *storage.Storage, cacheClient cache.Client) *Middleware {
	return &Middleware{store: store, cache: cacheClient}
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			unauthorized(w, "Missing authorization header")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			unauthorized(w, "Missing authorization header")
			return
		}

		claims, err := ParseToken(token)
		if err != nil || claims.Subject == "" {
			unauthorized(w, "Invalid authorization token")
			return
		}

		// The denylist check fails open: a Redis outage must not lock every
		// caller out, same as running with the Noop client. The error is
		// logged so an outage is visible.
		revoked, err := m.cache.IsTokenRevoked(claims.ID)
		if err != nil {
			logrus.WithError(err).Warn("auth: revocation check failed")
		} else if revoked {
			unauthorized(w, "Invalid authorization token")
			return
		}

		user, err := m.store.GetUser(r.Context(), claims.Subject)
		if err != nil || !user.IsActive {
			unauthorized(w, "Invalid authorization token")
			return
		}

		principal := Principal{
			ID:      user.ID,
			Email:   user.Email,
			TokenID: claims.ID,
		}
		if claims.ExpiresAt != nil {
			principal.TokenExpiresAt = claims.ExpiresAt.Time
		}

		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalKey).(Principal)
	return principal, ok
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
