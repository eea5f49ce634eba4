package user

type Permission string

const (
	PermEmployeeCreate  Permission = "employees.create"
	PermEmployeeUpdate  Permission = "employees.update"
	PermEmployeeDelete  Permission = "employees.delete"
	PermLeaveTransition Permission = "leave.transition"
	PermLeaveDeleteAny  Permission = "leave.delete_any"
	PermLeaveViewAll    Permission = "leave.view_all"
)

// Explicit role x permission table. Anything not listed here is open to any
// authenticated role; handlers only consult the table for the gated operations.
var rolePermissions = map[Role]map[Permission]bool{
	RoleEmployee: {},
	RoleHR: {
		PermEmployeeCreate:  true,
		PermEmployeeUpdate:  true,
		PermLeaveTransition: true,
		PermLeaveViewAll:    true,
	},
	RoleAdmin: {
		PermEmployeeCreate:  true,
		PermEmployeeUpdate:  true,
		PermEmployeeDelete:  true,
		PermLeaveTransition: true,
		PermLeaveDeleteAny:  true,
		PermLeaveViewAll:    true,
	},
}

func Can(role Role, perm Permission) bool {
	perms, ok := rolePermissions[role]

	if !ok {
		return false
	}

	return perms[perm]
}
