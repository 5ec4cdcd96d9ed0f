package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taskshield/internal/models"
)

func TestPolicies(t *testing.T) {
	assert.False(t, IsElevated(models.RoleUser))
	assert.True(t, IsElevated(models.RoleManager))
	assert.True(t, IsElevated(models.RoleAuditor))

	assert.False(t, CanManageUsers(models.RoleManager))
	assert.True(t, CanManageUsers(models.RoleAdmin))
	assert.True(t, CanManageUsers(models.RoleAuditor))

	assert.False(t, CanReadAudit(models.RoleUser))
	assert.False(t, CanReadAudit(models.RoleManager))
	assert.True(t, CanReadAudit(models.RoleAdmin))
	assert.True(t, CanReadAudit(models.RoleAuditor))
}
