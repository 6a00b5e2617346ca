package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"membership-backend/internal/models"
)

func TestAuthorizer_Roles(t *testing.T) {
	authorizer := NewAuthorizer(&models.User{
		Roles: []models.Role{
			{ID: "r-1", Name: "staff"},
		},
	})

	assert.True(t, authorizer.HasRole("staff"))
	assert.False(t, authorizer.HasRole("admin"))
	assert.True(t, authorizer.HasAnyRole("admin", "staff"))
	assert.False(t, authorizer.HasAnyRole("admin"))
}

func TestAuthorizer_Capabilities(t *testing.T) {
	authorizer := NewAuthorizer(&models.User{
		Permissions: []models.Permission{
			{ID: "p-1", Resource: "members", Action: "read"},
		},
	})

	assert.True(t, authorizer.HasCapability("members", "read"))
	assert.False(t, authorizer.HasCapability("members", "write"))
	assert.False(t, authorizer.HasCapability("accounts", "read"))
}

func TestDedupePermissions_FirstOccurrenceWins(t *testing.T) {
	deduped := DedupePermissions([]models.Permission{
		{ID: "p-1", Resource: "members", Action: "read", Description: "granted via staff"},
		{ID: "p-1", Resource: "members", Action: "read", Description: "granted via admin"},
		{ID: "p-2", Resource: "members", Action: "write"},
	})

	assert.Len(t, deduped, 2)
	assert.Equal(t, "granted via staff", deduped[0].Description)
	assert.Equal(t, "write", deduped[1].Action)
}

func TestDedupeRoles(t *testing.T) {
	deduped := dedupeRoles([]models.Role{
		{ID: "r-1", Name: "staff"},
		{ID: "r-1", Name: "staff"},
		{ID: "r-2", Name: "admin"},
	})

	assert.Len(t, deduped, 2)
	assert.Equal(t, "r-1", deduped[0].ID)
	assert.Equal(t, "r-2", deduped[1].ID)
}

func TestRoleLabel(t *testing.T) {
	assert.Equal(t, "Admin", roleLabel([]string{"admin"}))
	assert.Equal(t, "Admin or Staff", roleLabel([]string{"admin", "staff"}))
	assert.Equal(t, "Staff", roleLabel([]string{"", "staff"}))
}
