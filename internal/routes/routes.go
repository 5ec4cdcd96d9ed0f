package routes

import (
	"github.com/gin-gonic/gin"

	"taskshield/internal/authz"
	"taskshield/internal/handlers"
	"taskshield/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	taskHandler *handlers.TaskHandler,
	auditHandler *handlers.AuditHandler,
) *gin.Engine {

	// ---- public
	r.POST("/login", authHandler.Login)
	r.POST("/refresh", authHandler.RefreshToken)
	r.POST("/register", userHandler.Register)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	// ---- protected
	r.Use(middleware.AuthMiddleware())

	r.POST("/logout", authHandler.Logout)

	// USERS (admin)
	users := r.Group("/users", middleware.RequirePolicy(authz.CanManageUsers))
	{
		users.GET("/", userHandler.List)
		users.GET("/count", userHandler.GetCount)
		users.GET("/count/role/:role", userHandler.GetCountByRole)
		users.GET("/:id", userHandler.GetByID)
		users.PUT("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)
		users.POST("/:id/unlock", userHandler.Unlock)
	}

	// TASKS (any authenticated role; edit rights are decided per-task by
	// the domain policy)
	tasks := r.Group("/tasks")
	{
		tasks.POST("/", taskHandler.Create)
		tasks.GET("/", taskHandler.GetAll)
		tasks.GET("/overdue", middleware.RequirePolicy(authz.IsElevated), taskHandler.ListOverdue)
		tasks.GET("/:id", taskHandler.GetByID)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)
		tasks.POST("/:id/status", taskHandler.ChangeStatus)
		tasks.POST("/:id/assign", taskHandler.Assign)
		tasks.DELETE("/:id/assign", taskHandler.Unassign)
	}

	// AUDIT (auditors and admins)
	audit := r.Group("/audit", middleware.RequirePolicy(authz.CanReadAudit))
	{
		audit.GET("/", auditHandler.List)
		audit.GET("/security", auditHandler.SecurityEvents)
		audit.GET("/resource/:type/:id", auditHandler.ResourceHistory)
		audit.GET("/report", auditHandler.DownloadReport)
		audit.GET("/report/security", auditHandler.DownloadSecurityReport)
	}

	return r
}
