package services

import (
	"time"

	"grantia/internal/accounting"
	"grantia/internal/finance"
	"grantia/internal/models"
	"grantia/internal/pagination"
	"grantia/internal/planning"
)

// UserServicer defines the contract for user and organization business logic.
type UserServicer interface {
	RegisterOrganization(orgName, email, password, fullName string) (*models.User, error)
	CreateUser(organizationID, email, password, fullName string, role models.UserRole, weeklyCapacity float64) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	GetOrganizationUsers(organizationID string, page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	UpdateUser(organizationID, userID string, role *models.UserRole, weeklyCapacity *float64, isActive *bool) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// ProjectServicer defines the contract for project business logic.
type ProjectServicer interface {
	CreateProject(organizationID, name, code, description string, totalBudget float64, startDate, endDate *time.Time, coordinatorID *string) (*models.Project, error)
	GetOrganizationProjects(organizationID string, page pagination.PageRequest, status *models.ProjectStatus) (*pagination.PageResponse[models.Project], error)
	GetProjectByID(organizationID, projectID string) (*models.Project, error)
	UpdateProject(organizationID, projectID string, updates ProjectUpdates) (*models.Project, error)
	DeleteProject(organizationID, projectID string) error
}

// ProjectUpdates holds optional fields for a project update; nil fields
// are left untouched.
type ProjectUpdates struct {
	Name          string
	Code          *string
	Description   *string
	Status        *models.ProjectStatus
	StartDate     *time.Time
	EndDate       *time.Time
	TotalBudget   *float64
	CoordinatorID *string
}

// BudgetServicer defines the contract for budget category and expense logic.
type BudgetServicer interface {
	CreateCategory(organizationID, projectID, name string, allocatedAmount float64) (*models.BudgetCategory, error)
	GetCategorySummaries(organizationID, projectID string) ([]finance.CategorySummary, error)
	DeleteCategory(organizationID, projectID, categoryID string) error
	LogExpense(organizationID, projectID, userID string, categoryID *string, description string, amount, vatRate float64, date time.Time) (*models.Expense, error)
	GetProjectExpenses(organizationID, projectID string, page pagination.PageRequest, status *models.ExpenseStatus) (*pagination.PageResponse[models.Expense], error)
	SetExpenseStatus(organizationID, expenseID, actorID string, status models.ExpenseStatus) (*models.Expense, error)
	SetExpensePaymentStatus(organizationID, expenseID, actorID string, status models.PaymentStatus) (*models.Expense, error)
	BuildAccountingExport(organizationID, projectID string) (accounting.Export, error)
}

// PlannerView is the aggregated board returned to the planner UI.
type PlannerView struct {
	ProjectID string             `json:"project_id"`
	Weeks     []string           `json:"weeks"`
	Users     []PlannerUserRow   `json:"users"`
	Cells     []planning.Entry   `json:"cells"`
}

// PlannerUserRow is one team member's week-by-week capacity picture.
type PlannerUserRow struct {
	UserID         string              `json:"user_id"`
	FullName       string              `json:"full_name"`
	WeeklyCapacity float64             `json:"weekly_capacity"`
	Weeks          []planning.WeekStat `json:"weeks"`
}

// PlanningServicer defines the contract for activities, teams, and
// weekly resource allocation.
type PlanningServicer interface {
	CreateActivity(organizationID, projectID, name string, startDate, endDate *time.Time, budgetAllocated float64) (*models.Activity, error)
	GetProjectActivities(organizationID, projectID string) ([]models.Activity, error)
	AddTeamMember(organizationID, projectID, userID, roleInProject string, allocationPercentage float64) (*models.TeamMember, error)
	GetProjectTeam(organizationID, projectID string) ([]models.TeamMember, error)
	SaveAllocations(organizationID, projectID string, entries []planning.Entry) (int, error)
	GetProjectAllocations(organizationID, projectID string) ([]models.Allocation, error)
	BuildPlannerView(organizationID, projectID string, from, to time.Time) (*PlannerView, error)
}

// TimesheetServicer defines the contract for timesheet entry and approval logic.
type TimesheetServicer interface {
	UpsertEntries(organizationID, userID string, entries []TimesheetEntryInput) ([]models.Timesheet, error)
	GetUserTimesheets(organizationID, userID string, from, to time.Time) ([]models.Timesheet, error)
	GetPendingApprovals(organizationID string, page pagination.PageRequest) (*pagination.PageResponse[models.Timesheet], error)
	ApproveBatch(organizationID, approverID string, ids []string) (int, error)
	RejectEntry(organizationID, approverID, id, reason string) (*models.Timesheet, error)
}

// TimesheetEntryInput is one day's hours submitted from the timesheet grid.
type TimesheetEntryInput struct {
	ProjectID   string
	ActivityID  *string
	Date        time.Time
	Hours       float64
	Description string
	Status      models.TimesheetStatus
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
