package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskshield/internal/models"
)

func authRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware())
	r.GET("/tasks", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func signToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := &Claims{
		UserID: "2b37745e-54a7-4c9c-87f5-1f8ad0fbd3c5",
		Role:   models.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-15 * time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(JWTKey)
	require.NoError(t, err)
	return token
}

func doAuthRequest(r *gin.Engine, method, path, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthMiddleware(t *testing.T) {
	r := authRouter()

	assert.Equal(t, http.StatusOK, doAuthRequest(r, http.MethodPost, "/login", ""), "public path skips auth")
	assert.Equal(t, http.StatusUnauthorized, doAuthRequest(r, http.MethodGet, "/tasks", ""))
	assert.Equal(t, http.StatusUnauthorized, doAuthRequest(r, http.MethodGet, "/tasks", "not-a-jwt"))

	valid := signToken(t, time.Now().Add(15*time.Minute))
	assert.Equal(t, http.StatusOK, doAuthRequest(r, http.MethodGet, "/tasks", valid))
}

func TestAuthMiddleware_ExpiryLeeway(t *testing.T) {
	r := authRouter()

	// expired within the leeway window is still accepted
	justExpired := signToken(t, time.Now().Add(-time.Minute))
	assert.Equal(t, http.StatusOK, doAuthRequest(r, http.MethodGet, "/tasks", justExpired))

	// expired beyond the leeway is rejected
	longExpired := signToken(t, time.Now().Add(-tokenLeeway-time.Minute))
	assert.Equal(t, http.StatusUnauthorized, doAuthRequest(r, http.MethodGet, "/tasks", longExpired))
}
