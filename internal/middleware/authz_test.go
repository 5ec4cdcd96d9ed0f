package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"taskshield/internal/models"
)

func runGuard(t *testing.T, guard gin.HandlerFunc, role string) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if role != "" {
		c.Set("role", role)
	}
	guard(c)
	if c.IsAborted() {
		return w.Code
	}
	return http.StatusOK
}

func TestRequireRoles(t *testing.T) {
	guard := RequireRoles(models.RoleAuditor, models.RoleAdmin)

	assert.Equal(t, http.StatusOK, runGuard(t, guard, "admin"))
	assert.Equal(t, http.StatusOK, runGuard(t, guard, "auditor"))
	assert.Equal(t, http.StatusForbidden, runGuard(t, guard, "manager"))
	assert.Equal(t, http.StatusForbidden, runGuard(t, guard, "user"))
	assert.Equal(t, http.StatusUnauthorized, runGuard(t, guard, ""))
}

func TestRequireRank(t *testing.T) {
	guard := RequireRank(models.RoleManager)

	assert.Equal(t, http.StatusForbidden, runGuard(t, guard, "user"))
	assert.Equal(t, http.StatusOK, runGuard(t, guard, "manager"))
	assert.Equal(t, http.StatusOK, runGuard(t, guard, "admin"))
	// auditors rank above admins, so any rank check admits them too
	assert.Equal(t, http.StatusOK, runGuard(t, guard, "auditor"))
}

func TestRequirePolicy(t *testing.T) {
	guard := RequirePolicy(func(r models.UserRole) bool { return r == models.RoleAuditor })

	assert.Equal(t, http.StatusOK, runGuard(t, guard, "auditor"))
	assert.Equal(t, http.StatusForbidden, runGuard(t, guard, "admin"))
	assert.Equal(t, http.StatusUnauthorized, runGuard(t, guard, ""))
}
