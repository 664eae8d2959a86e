package config

// Permissions describes what a role may do. Used by permission-matrix tests
// to decide the expected outcome of an operation.
type Permissions struct {
	CanCreateProject bool
	CanDeleteProject bool
	CanManageUsers   bool
}

// RolePermissions is the static role/permission matrix of the application
// under test.
var RolePermissions = map[string]Permissions{
	"admin":    {CanCreateProject: true, CanDeleteProject: true, CanManageUsers: true},
	"manager":  {CanCreateProject: true},
	"employee": {},
}
