package app

import (
	"database/sql"
	"fmt"

	"taskshield/internal/config"
	"taskshield/internal/handlers"
	"taskshield/internal/middleware"
	"taskshield/internal/pdf"
	"taskshield/internal/repositories"
	"taskshield/internal/routes"
	"taskshield/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func Run() {
	cfg := config.LoadConfig()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if cfg.Auth.JWTSecret != "" {
		middleware.JWTKey = []byte(cfg.Auth.JWTSecret)
	}

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to open database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Errorf("failed to close database: %v", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	auditRepo := repositories.NewAuditLogRepository(db)

	// === Services ===
	auditService := services.NewAuditService(auditRepo, log)
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	telegramService, err := services.NewTelegramService(cfg.Telegram.Token, cfg.Telegram.ChatID, log)
	if err != nil {
		log.Warnf("telegram notifications disabled: %v", err)
	}

	authService := services.NewAuthService(userRepo, auditService, emailService, telegramService, log)
	userService := services.NewUserService(userRepo, auditService, emailService, authService, log)
	taskService := services.NewTaskService(taskRepo, userRepo, auditService, telegramService, log)

	pdfGen := pdf.NewReportGenerator(cfg.Files.RootDir)
	reportService := services.NewReportService(auditService, pdfGen)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(authService, log)
	userHandler := handlers.NewUserHandler(userService, log)
	taskHandler := handlers.NewTaskHandler(taskService, userService, log)
	auditHandler := handlers.NewAuditHandler(auditService, reportService, log)

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	routes.SetupRoutes(
		router,
		authHandler,
		userHandler,
		taskHandler,
		auditHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Infof("server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("server stopped: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
