package authz

import "taskshield/internal/models"

// IsElevated reports whether the role may manage other users' work.
func IsElevated(role models.UserRole) bool {
	return role.HasPermission(models.RoleManager)
}

// CanManageUsers gates user administration endpoints.
func CanManageUsers(role models.UserRole) bool {
	return role.HasPermission(models.RoleAdmin)
}

// CanReadAudit gates the audit trail endpoints.
func CanReadAudit(role models.UserRole) bool {
	return role == models.RoleAuditor || role.HasPermission(models.RoleAdmin)
}
