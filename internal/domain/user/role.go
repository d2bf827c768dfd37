package user

// Role is carried in the "role" claim of access tokens issued by the identity
// service.
type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Runs and approves payroll
	RoleEmployee Role = "employee" // Can read their own salary
)

func (r Role) IsManager() bool {
	return r == RoleManager || r == RoleOwner
}
