package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"grantia/internal/config"
	"grantia/internal/database"
	"grantia/internal/events"
	"grantia/internal/handlers"
	"grantia/internal/logger"
	"grantia/internal/middleware"
	"grantia/internal/services"
	"grantia/internal/validator"
)

// @title           Grantia API
// @version         1.0
// @description     Grantia is a research-grant management platform for budgets, resource planning, and timesheets.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom validation tags
	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Event publisher: disabled when no broker is configured
	var publisher events.Publisher = events.NopPublisher{}
	if appConfig.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(appConfig.AMQPURL, appConfig.AMQPExchange, appConfig.AMQPQueue)
		if err != nil {
			return fmt.Errorf("failed to connect to message broker: %w", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		log.Infow("Event publishing enabled", "exchange", appConfig.AMQPExchange)
	}

	// Initialize services
	db := dbManager.DB()
	auditService := services.NewAuditService(db)
	userService := services.NewUserService(db)
	projectService := services.NewProjectService(db)
	budgetService := services.NewBudgetService(db, publisher)
	planningService := services.NewPlanningService(db)
	timesheetService := services.NewTimesheetService(db, publisher)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	adminHandler := handlers.NewAdminHandler(userService, auditService)
	projectHandler := handlers.NewProjectHandler(projectService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	planningHandler := handlers.NewPlanningHandler(planningService, auditService)
	timesheetHandler := handlers.NewTimesheetHandler(timesheetService, auditService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Admin routes
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole("admin"))
	admin.POST("/users", adminHandler.CreateUser)
	admin.GET("/users", adminHandler.GetUsers)
	admin.PATCH("/users/:id", adminHandler.UpdateUser)

	// Project routes
	projects := protected.Group("/projects")
	projects.GET("", projectHandler.GetProjects)
	projects.GET("/:id", projectHandler.GetProject)
	projects.GET("/:id/categories", budgetHandler.GetCategories)
	projects.GET("/:id/expenses", budgetHandler.GetExpenses)
	projects.POST("/:id/expenses", budgetHandler.LogExpense)
	projects.GET("/:id/activities", planningHandler.GetActivities)
	projects.GET("/:id/team", planningHandler.GetTeam)
	projects.GET("/:id/allocations", planningHandler.GetAllocations)
	projects.GET("/:id/planner", planningHandler.GetPlanner)

	// Manager-only project routes
	managed := projects.Group("")
	managed.Use(middleware.RequireManager())
	managed.POST("", projectHandler.CreateProject)
	managed.PATCH("/:id", projectHandler.UpdateProject)
	managed.DELETE("/:id", projectHandler.DeleteProject)
	managed.POST("/:id/categories", budgetHandler.CreateCategory)
	managed.DELETE("/:id/categories/:category_id", budgetHandler.DeleteCategory)
	managed.GET("/:id/export", budgetHandler.ExportAccounting)
	managed.POST("/:id/activities", planningHandler.CreateActivity)
	managed.POST("/:id/team", planningHandler.AddTeamMember)
	managed.PUT("/:id/allocations", planningHandler.SaveAllocations)

	// Expense approval routes
	expenses := protected.Group("/expenses")
	expenses.Use(middleware.RequireManager())
	expenses.PATCH("/:id/status", budgetHandler.SetExpenseStatus)
	expenses.PATCH("/:id/payment-status", budgetHandler.SetExpensePaymentStatus)

	// Timesheet routes
	timesheets := protected.Group("/timesheets")
	timesheets.PUT("", timesheetHandler.SaveTimesheets)
	timesheets.GET("", timesheetHandler.GetTimesheets)

	// Timesheet approval routes
	approvals := timesheets.Group("")
	approvals.Use(middleware.RequireManager())
	approvals.GET("/approvals", timesheetHandler.GetPendingApprovals)
	approvals.POST("/approve", timesheetHandler.ApproveTimesheets)
	approvals.POST("/:id/reject", timesheetHandler.RejectTimesheet)

	log.Infof("Starting Grantia backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
