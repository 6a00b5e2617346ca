package authz

import (
	"net/http"
	"strings"

	"membership-backend/internal/auth"
	"membership-backend/internal/models"
	"membership-backend/internal/storage"
)

// RequireRole gates a route group on role names: the caller must hold at
// least one of them. This is the coarse server-side enforcement boundary;
// capability data exists but routes are guarded by role name alone.
func RequireRole(store *storage.Storage, names ...string) func(http.Handler) http.Handler {
	message := "Insufficient permissions. " + roleLabel(names) + " role required."

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "Missing authorization header")
				return
			}

			roles, err := store.GetRolesForUser(r.Context(), principal.ID)
			if err != nil {
				writeJSONError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			authorizer := NewAuthorizer(&models.User{Roles: roles})
			if !authorizer.HasAnyRole(names...) {
				writeJSONError(w, http.StatusForbidden, message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireCapability gates a route on a (resource, action) capability resolved
// through the caller's roles. Enforcement-wise this is stricter than the role
// gate the routes use today; it exists behind the same Authorizer interface.
func RequireCapability(resolver *Resolver, resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "Missing authorization header")
				return
			}

			user, err := resolver.Resolve(r.Context(), principal.ID)
			if err != nil {
				writeJSONError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			authorizer := NewAuthorizer(user)
			if !authorizer.HasRole(RoleAdmin) && !authorizer.HasCapability(resource, action) {
				writeJSONError(w, http.StatusForbidden, "Insufficient permissions.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func roleLabel(names []string) string {
	labels := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		labels = append(labels, strings.ToUpper(name[:1])+name[1:])
	}
	return strings.Join(labels, " or ")
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
