package auth

// Role is the account's global role.
type Role = string

const (
	// RoleUser is the default role with no administrative authorities.
	RoleUser Role = "user"
	// RoleEmployee is a regular staff member.
	RoleEmployee Role = "employee"
	// RoleDepartmentManager manages a single department.
	RoleDepartmentManager Role = "department_manager"
	// RoleHRManager manages people records across departments.
	RoleHRManager Role = "hr_manager"
	// RoleSystemAdmin has every authority.
	RoleSystemAdmin Role = "system_admin"
)

// Authorities recovered from the role catalog. Authorization itself happens
// in the consuming application; this package only hydrates the request
// context with the identity and its authorities.
const (
	AuthorityAdminRead     = "admin:read"
	AuthorityAdminCreate   = "admin:create"
	AuthorityAdminUpdate   = "admin:update"
	AuthorityAdminDelete   = "admin:delete"
	AuthorityHRRead        = "hr:read"
	AuthorityHRCreate      = "hr:create"
	AuthorityHRUpdate      = "hr:update"
	AuthorityHRDelete      = "hr:delete"
	AuthorityManagerRead   = "manager:read"
	AuthorityManagerUpdate = "manager:update"
)

// IsValidRole checks if the role is one of the predefined valid roles.
func IsValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleEmployee, RoleDepartmentManager, RoleHRManager, RoleSystemAdmin:
		return true
	default:
		return false
	}
}

// RoleAuthorities returns the authority list granted by a role. Unknown
// roles get no authorities.
func RoleAuthorities(r Role) []string {
	switch r {
	case RoleSystemAdmin:
		return []string{
			AuthorityAdminRead,
			AuthorityAdminCreate,
			AuthorityAdminUpdate,
			AuthorityAdminDelete,
			AuthorityHRRead,
			AuthorityHRCreate,
			AuthorityHRUpdate,
			AuthorityHRDelete,
			AuthorityManagerRead,
			AuthorityManagerUpdate,
		}
	case RoleHRManager:
		return []string{
			AuthorityHRRead,
			AuthorityHRCreate,
			AuthorityHRUpdate,
			AuthorityHRDelete,
		}
	case RoleDepartmentManager:
		return []string{
			AuthorityManagerRead,
			AuthorityManagerUpdate,
		}
	default:
		return nil
	}
}

// RoleIsAtLeast checks if role meets the minimum required level.
func RoleIsAtLeast(r, minRole Role) bool {
	hierarchy := map[Role]int{
		RoleUser:              0,
		RoleEmployee:          1,
		RoleDepartmentManager: 2,
		RoleHRManager:         3,
		RoleSystemAdmin:       4,
	}

	level, ok := hierarchy[r]
	if !ok {
		return false
	}

	minLevel, ok := hierarchy[minRole]
	if !ok {
		return false
	}

	return level >= minLevel
}
