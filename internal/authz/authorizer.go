package authz

import "membership-backend/internal/models"

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Authorizer is the single authorization surface: coarse role-name checks
// (what the server enforces) and capability checks (what the dashboard uses
// for route gating) behind one interface.
type Authorizer struct {
	roles        map[string]struct{}
	capabilities map[string]struct{}
}

// NewAuthorizer builds an Authorizer from a resolved profile.
func NewAuthorizer(user *models.User) *Authorizer {
	a := &Authorizer{
		roles:        make(map[string]struct{}, len(user.Roles)),
		capabilities: make(map[string]struct{}, len(user.Permissions)),
	}
	for _, role := range user.Roles {
		a.roles[role.Name] = struct{}{}
	}
	for _, permission := range user.Permissions {
		a.capabilities[capabilityKey(permission.Resource, permission.Action)] = struct{}{}
	}
	return a
}

func (a *Authorizer) HasRole(name string) bool {
	_, ok := a.roles[name]
	return ok
}

func (a *Authorizer) HasAnyRole(names ...string) bool {
	for _, name := range names {
		if a.HasRole(name) {
			return true
		}
	}
	return false
}

func (a *Authorizer) HasCapability(resource, action string) bool {
	_, ok := a.capabilities[capabilityKey(resource, action)]
	return ok
}
