package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserRole_Ranks(t *testing.T) {
	assert.Equal(t, 1, RoleUser.Rank())
	assert.Equal(t, 2, RoleManager.Rank())
	assert.Equal(t, 3, RoleAdmin.Rank())
	assert.Equal(t, 4, RoleAuditor.Rank())
	assert.Equal(t, 0, UserRole("nope").Rank())
}

func TestUserRole_HasPermission(t *testing.T) {
	assert.False(t, RoleUser.HasPermission(RoleManager))
	assert.True(t, RoleManager.HasPermission(RoleManager))
	assert.True(t, RoleAdmin.HasPermission(RoleManager))
	assert.True(t, RoleAuditor.HasPermission(RoleManager))
	// the auditor rank sits above admin
	assert.True(t, RoleAuditor.HasPermission(RoleAdmin))
	assert.False(t, RoleAdmin.HasPermission(RoleAuditor))
}

func TestUserRole_Valid(t *testing.T) {
	for _, r := range []UserRole{RoleUser, RoleManager, RoleAdmin, RoleAuditor} {
		assert.True(t, r.Valid())
	}
	assert.False(t, UserRole("").Valid())
	assert.False(t, UserRole("root").Valid())
}
