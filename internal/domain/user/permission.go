package user

type Permission string

const (
	// Self service
	PermissionPayrollViewOwn Permission = "payroll.view_own"

	// Payroll management
	PermissionPayrollViewAll        Permission = "payroll.view_all"
	PermissionPayrollApprove        Permission = "payroll.approve"
	PermissionPayrollExport         Permission = "payroll.export"
	PermissionPayrollManageLedger   Permission = "payroll.manage_ledger"
	PermissionPayrollManageSettings Permission = "payroll.manage_settings"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		// Owner has all permissions
		PermissionPayrollViewOwn,
		PermissionPayrollViewAll,
		PermissionPayrollApprove,
		PermissionPayrollExport,
		PermissionPayrollManageLedger,
		PermissionPayrollManageSettings,
	},
	RoleManager: {
		PermissionPayrollViewOwn,
		PermissionPayrollViewAll,
		PermissionPayrollApprove,
		PermissionPayrollExport,
		PermissionPayrollManageLedger,
	},
	RoleEmployee: {
		PermissionPayrollViewOwn,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
