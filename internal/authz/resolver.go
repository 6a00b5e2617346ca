package authz

import (
	"context"
	"errors"

	"membership-backend/internal/models"
	"membership-backend/internal/storage"
)

// ErrProfileNotFound is a hard failure: a principal without a profile row
// never falls back to an empty permission set.
var ErrProfileNotFound = errors.New("profile not found")

// Resolver flattens a principal's role assignments into the profile shape the
// dashboard consumes: deduplicated roles plus a deduplicated capability list.
type Resolver struct {
	store *storage.Storage
}

func NewResolver(store *storage.Storage) *Resolver {
	return &Resolver{store: store}
}

// Resolve fetches the user row, its roles and the permissions granted through
// those roles. Roles are deduplicated by id; permissions by the
// (resource, action) pair, first occurrence wins — a later duplicate's
// description is discarded. Resolution is never cached.
func (r *Resolver) Resolve(ctx context.Context, userID string) (*models.User, error) {
	user, err := r.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	roles, err := r.store.GetRolesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Roles = dedupeRoles(roles)

	permissions, err := r.store.GetPermissionsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Permissions = DedupePermissions(permissions)

	return user, nil
}

func dedupeRoles(roles []models.Role) []models.Role {
	seen := make(map[string]struct{}, len(roles))
	out := make([]models.Role, 0, len(roles))
	for _, role := range roles {
		if _, ok := seen[role.ID]; ok {
			continue
		}
		seen[role.ID] = struct{}{}
		out = append(out, role)
	}
	return out
}

// DedupePermissions collapses the flattened permission list by the
// (resource, action) composite key, keeping the first occurrence.
func DedupePermissions(permissions []models.Permission) []models.Permission {
	seen := make(map[string]struct{}, len(permissions))
	out := make([]models.Permission, 0, len(permissions))
	for _, permission := range permissions {
		key := capabilityKey(permission.Resource, permission.Action)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, permission)
	}
	return out
}

func capabilityKey(resource, action string) string {
	return resource + ":" + action
}
