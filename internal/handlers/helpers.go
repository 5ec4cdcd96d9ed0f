package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskshield/internal/models"
	"taskshield/internal/services"
)

func getUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get("user_id")
	if !ok {
		return uuid.Nil, false
	}
	s, ok := v.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func getRole(c *gin.Context) models.UserRole {
	v, _ := c.Get("role")
	s, _ := v.(string)
	return models.UserRole(s)
}

// currentUser loads the authenticated user for domain-level permission checks.
func currentUser(c *gin.Context, users services.UserService) *models.User {
	id, ok := getUserID(c)
	if !ok {
		return nil
	}
	user, err := users.GetByID(id)
	if err != nil {
		return nil
	}
	return user
}

func requestMeta(c *gin.Context) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
