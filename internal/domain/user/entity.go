package user

type Role string

const (
	RoleOwner    Role = "owner"    // Full access
	RoleManager  Role = "manager"  // Reviews corrections, sees all attendance
	RoleEmployee Role = "employee" // Regular employee
	RolePending  Role = "pending"  // Still in onboarding
)

// Principal is the caller identity carried by a verified access token.
// Accounts live in the external identity provider.
type Principal struct {
	UserID     string
	EmployeeID string
	Role       Role
}

func (p Principal) Can(permission Permission) bool {
	return HasPermission(p.Role, permission)
}

func IsValidRole(r Role) bool {
	switch r {
	case RoleOwner, RoleManager, RoleEmployee, RolePending:
		return true
	}
	return false
}
