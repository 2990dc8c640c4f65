package auth

const (
	PermMasterDataRead  = "masterdata.read"
	PermMasterDataWrite = "masterdata.write"
	PermLeaveRead       = "leave.read"
	PermLeaveApprove    = "leave.approve"
	PermAuditRead       = "audit.read"
)

const (
	RoleAdmin  = "Admin"
	RoleHR     = "HR"
	RoleClerk  = "Clerk"
	RoleViewer = "Viewer"
)

// DefaultRole applies when a gateway login response names no role. The
// gateway still authorizes every call it receives.
const DefaultRole = RoleAdmin

var DefaultPermissions = []string{
	PermMasterDataRead,
	PermMasterDataWrite,
	PermLeaveRead,
	PermLeaveApprove,
	PermAuditRead,
}

var RolePermissions = map[string][]string{
	RoleAdmin: DefaultPermissions,
	RoleHR: {
		PermMasterDataRead,
		PermMasterDataWrite,
		PermLeaveRead,
		PermLeaveApprove,
	},
	RoleClerk: {
		PermMasterDataRead,
		PermMasterDataWrite,
		PermLeaveRead,
	},
	RoleViewer: {
		PermMasterDataRead,
		PermLeaveRead,
	},
}

// HasPermission reports whether role grants perm. Unknown roles grant nothing.
func HasPermission(role, perm string) bool {
	for _, p := range RolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}
