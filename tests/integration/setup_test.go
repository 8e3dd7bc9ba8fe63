package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"grantia/internal/handlers"
	"grantia/internal/logger"
	"grantia/internal/middleware"
	"grantia/internal/models"
	"grantia/internal/services"
	"grantia/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.Organization{},
		&models.User{},
		&models.Project{},
		&models.BudgetCategory{},
		&models.Expense{},
		&models.Activity{},
		&models.TeamMember{},
		&models.Allocation{},
		&models.Timesheet{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	auditService := services.NewAuditService(db)
	userService := services.NewUserService(db)
	projectService := services.NewProjectService(db)
	budgetService := services.NewBudgetService(db, nil)
	planningService := services.NewPlanningService(db)
	timesheetService := services.NewTimesheetService(db, nil)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	adminHandler := handlers.NewAdminHandler(userService, auditService)
	projectHandler := handlers.NewProjectHandler(projectService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	planningHandler := handlers.NewPlanningHandler(planningService, auditService)
	timesheetHandler := handlers.NewTimesheetHandler(timesheetService, auditService)

	// Router mirroring cmd/api
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole("admin"))
	admin.POST("/users", adminHandler.CreateUser)
	admin.GET("/users", adminHandler.GetUsers)
	admin.PATCH("/users/:id", adminHandler.UpdateUser)

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

	expenses := protected.Group("/expenses")
	expenses.Use(middleware.RequireManager())
	expenses.PATCH("/:id/status", budgetHandler.SetExpenseStatus)
	expenses.PATCH("/:id/payment-status", budgetHandler.SetExpensePaymentStatus)

	timesheets := protected.Group("/timesheets")
	timesheets.PUT("", timesheetHandler.SaveTimesheets)
	timesheets.GET("", timesheetHandler.GetTimesheets)

	approvals := timesheets.Group("")
	approvals.Use(middleware.RequireManager())
	approvals.GET("/approvals", timesheetHandler.GetPendingApprovals)
	approvals.POST("/approve", timesheetHandler.ApproveTimesheets)
	approvals.POST("/:id/reject", timesheetHandler.RejectTimesheet)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerOrg registers a new organization and returns the admin's access
// token, refresh token, and user ID.
func (app *testApp) registerOrg(t *testing.T, orgName, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"organization_name":%q,"email":%q,"password":%q,"full_name":"Test Admin"}`, orgName, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// createUser provisions an organization member via the admin API and
// returns the new user's ID.
func (app *testApp) createUser(t *testing.T, adminToken, email, password, role string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"full_name":"Test Member","role":%q}`, email, password, role)
	rec := app.request("POST", "/api/v1/admin/users", body, adminToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return user["id"].(string)
}

// createProject creates a project and returns its ID.
func (app *testApp) createProject(t *testing.T, token, name string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"total_budget":100000}`, name)
	rec := app.request("POST", "/api/v1/projects", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	project := result["project"].(map[string]interface{})
	return project["id"].(string)
}
