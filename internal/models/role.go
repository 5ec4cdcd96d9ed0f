package models

// UserRole defines the access level of a user.
type UserRole string

const (
	RoleUser    UserRole = "user"
	RoleManager UserRole = "manager"
	RoleAdmin   UserRole = "admin"
	RoleAuditor UserRole = "auditor"
)

// roleRanks orders the roles for permission checks. The auditor rank sits
// above admin: auditors pass every HasPermission check admins pass,
// including the manager check that gates task edits.
var roleRanks = map[UserRole]int{
	RoleUser:    1,
	RoleManager: 2,
	RoleAdmin:   3,
	RoleAuditor: 4,
}

// Rank returns the role's position in the permission order, 0 if unknown.
func (r UserRole) Rank() int {
	return roleRanks[r]
}

// Valid reports whether the role is one of the enumerated set.
func (r UserRole) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// HasPermission reports whether the role ranks at or above required.
func (r UserRole) HasPermission(required UserRole) bool {
	return r.Rank() >= required.Rank()
}
