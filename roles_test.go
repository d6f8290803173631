package auth_test

import (
	"testing"

	auth "github.com/nexorahq/go-auth"
	"github.com/stretchr/testify/assert"
)

func TestIsValidRole(t *testing.T) {
	valid := []auth.Role{
		auth.RoleUser,
		auth.RoleEmployee,
		auth.RoleDepartmentManager,
		auth.RoleHRManager,
		auth.RoleSystemAdmin,
	}

	for _, role := range valid {
		assert.True(t, auth.IsValidRole(role), "expected %q to be valid", role)
	}

	assert.False(t, auth.IsValidRole("superuser"))
	assert.False(t, auth.IsValidRole(""))
}

func TestRoleAuthorities(t *testing.T) {
	t.Run("system admin has every authority", func(t *testing.T) {
		authorities := auth.RoleAuthorities(auth.RoleSystemAdmin)
		assert.Contains(t, authorities, auth.AuthorityAdminDelete)
		assert.Contains(t, authorities, auth.AuthorityHRCreate)
		assert.Contains(t, authorities, auth.AuthorityManagerUpdate)
	})

	t.Run("hr manager is scoped to hr authorities", func(t *testing.T) {
		authorities := auth.RoleAuthorities(auth.RoleHRManager)
		assert.Contains(t, authorities, auth.AuthorityHRRead)
		assert.NotContains(t, authorities, auth.AuthorityAdminRead)
	})

	t.Run("baseline roles get no authorities", func(t *testing.T) {
		assert.Empty(t, auth.RoleAuthorities(auth.RoleUser))
		assert.Empty(t, auth.RoleAuthorities(auth.RoleEmployee))
		assert.Empty(t, auth.RoleAuthorities("unknown"))
	})
}

func TestRoleIsAtLeast(t *testing.T) {
	tests := []struct {
		role     auth.Role
		minRole  auth.Role
		expected bool
	}{
		{auth.RoleSystemAdmin, auth.RoleUser, true},
		{auth.RoleSystemAdmin, auth.RoleSystemAdmin, true},
		{auth.RoleHRManager, auth.RoleDepartmentManager, true},
		{auth.RoleEmployee, auth.RoleHRManager, false},
		{auth.RoleUser, auth.RoleEmployee, false},
		{"unknown", auth.RoleUser, false},
		{auth.RoleUser, "unknown", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, auth.RoleIsAtLeast(tt.role, tt.minRole),
			"RoleIsAtLeast(%q, %q)", tt.role, tt.minRole)
	}
}
