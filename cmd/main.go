package main

import (
	"console-service/internal/handler"
	"console-service/internal/middleware"
	"console-service/internal/session"
	"console-service/internal/store"
	"console-service/internal/tenantauth"
	"console-service/pkg/config"
	"console-service/pkg/cryptoutil"
	"console-service/pkg/database"
	"console-service/pkg/logger"
	"console-service/pkg/openai"
	"console-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting console service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize session tokens and the credential codec
	session.Initialize(&cfg.Session)
	cryptoutil.Initialize(cfg.Crypto.EncryptionKey)

	// Wire the authorization core
	st := store.New(database.GetDB())
	identity := &session.Identity{Store: st}
	engine := tenantauth.NewEngine(st, identity)
	usage := tenantauth.NewRecorder(st, log)
	gateway := tenantauth.NewGateway(engine, usage, "/login")

	openaiClient := openai.NewClient(cfg.OpenAI.BaseURL, cfg.OpenAI.Model, cfg.OpenAI.MaxTokens)
	handler.Initialize(engine, gateway, openaiClient)
	log.Info("Authorization engine initialized")

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())
	e.Use(middleware.SessionMiddleware)

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/login", handler.Login)
	auth.POST("/logout", handler.Logout)

	// API routes
	api := e.Group("/api")
	api.GET("/me", handler.Me, middleware.RequireSession)

	// Member routes - tenant membership checked by the authorization engine
	api.GET("/member/apps", handler.ListMemberApps)

	// Tenant-scoped app execution - gated by the access gateway
	apps := api.Group("/apps")
	apps.POST("/prompt", handler.ExecutePrompt)
	apps.POST("/translate", handler.ExecuteTranslate)

	// Platform administration - super admins only
	admin := api.Group("/admin")
	admin.Use(middleware.RequireSuperAdmin)

	admin.GET("/organizations", handler.ListOrganizations)
	admin.POST("/organizations", handler.CreateOrganization)
	admin.PUT("/organizations/:id", handler.UpdateOrganization)
	admin.DELETE("/organizations/:id", handler.DeleteOrganization)
	admin.GET("/organizations/:id/members", handler.ListOrganizationMembers)
	admin.POST("/organizations/:id/members", handler.AddOrganizationMember)
	admin.DELETE("/organizations/:id/members/:userId", handler.RemoveOrganizationMember)
	admin.GET("/organizations/:id/apps", handler.ListOrganizationApps)
	admin.POST("/organizations/:id/apps", handler.ToggleOrganizationApp)

	admin.GET("/users", handler.ListUsers)
	admin.POST("/users", handler.CreateUser)
	admin.DELETE("/users/:id", handler.DeleteUser)

	admin.GET("/apps", handler.ListApps)
	admin.POST("/apps", handler.SubmitApp)
	admin.PUT("/apps/:id", handler.UpdateApp)
	admin.DELETE("/apps/:id", handler.DeleteApp)
	admin.POST("/apps/:id/approve", handler.ApproveApp)
	admin.POST("/apps/:id/reject", handler.RejectApp)

	admin.GET("/api-keys", handler.ListAPIKeys)
	admin.POST("/api-keys", handler.UpsertAPIKey)
	admin.DELETE("/api-keys/:id", handler.DeleteAPIKey)
	admin.POST("/api-keys/test", handler.TestAPIKey)

	admin.GET("/usage-logs", handler.ListUsageLogs)
	admin.GET("/usage-analytics", handler.UsageAnalytics)

	// Get server port from configuration
	port := cfg.Server.Port

	// Start server
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
