package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"grantia/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestOrganization creates an organization with a unique name.
func CreateTestOrganization(t *testing.T, db *gorm.DB) *models.Organization {
	t.Helper()

	org := &models.Organization{
		Name: fmt.Sprintf("Test Organization %d", nextID()),
	}
	if err := db.Create(org).Error; err != nil {
		t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}

// CreateTestUser creates an active member user with a hashed password and
// unique email.
func CreateTestUser(t *testing.T, db *gorm.DB, organizationID string) *models.User {
	t.Helper()
	return CreateTestUserWithRole(t, db, organizationID, models.UserRoleMember)
}

// CreateTestUserWithRole creates an active user with the given role.
func CreateTestUserWithRole(t *testing.T, db *gorm.DB, organizationID string, role models.UserRole) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		OrganizationID: organizationID,
		Email:          fmt.Sprintf("user%d@test.com", nextID()),
		Password:       string(hash),
		FullName:       fmt.Sprintf("Test User %d", nextID()),
		Role:           role,
		WeeklyCapacity: models.DefaultWeeklyCapacity,
		IsActive:       true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestProject creates an active project with a default budget.
func CreateTestProject(t *testing.T, db *gorm.DB, organizationID string) *models.Project {
	t.Helper()

	project := &models.Project{
		OrganizationID: organizationID,
		Name:           fmt.Sprintf("Test Project %d", nextID()),
		Code:           fmt.Sprintf("PRJ-%03d", nextID()),
		Status:         models.ProjectStatusActive,
		TotalBudget:    100000,
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}
	return project
}

// CreateTestCategory creates a budget category in the project.
func CreateTestCategory(t *testing.T, db *gorm.DB, projectID, name string, allocated float64) *models.BudgetCategory {
	t.Helper()

	category := &models.BudgetCategory{
		ProjectID:       projectID,
		Name:            name,
		AllocatedAmount: allocated,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestExpense creates a pending expense linked to the category.
func CreateTestExpense(t *testing.T, db *gorm.DB, projectID, userID string, categoryID *string, amount float64) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		ProjectID:     projectID,
		CategoryID:    categoryID,
		UserID:        userID,
		Description:   fmt.Sprintf("Test Expense %d", nextID()),
		Amount:        amount,
		VATRate:       22,
		Currency:      "EUR",
		Date:          time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Status:        models.ExpenseStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestActivity creates an activity in the project.
func CreateTestActivity(t *testing.T, db *gorm.DB, projectID string) *models.Activity {
	t.Helper()

	activity := &models.Activity{
		ProjectID: projectID,
		Name:      fmt.Sprintf("Test Activity %d", nextID()),
	}
	if err := db.Create(activity).Error; err != nil {
		t.Fatalf("failed to create test activity: %v", err)
	}
	return activity
}

// CreateTestTeamMember adds a user to the project team.
func CreateTestTeamMember(t *testing.T, db *gorm.DB, projectID, userID string) *models.TeamMember {
	t.Helper()

	member := &models.TeamMember{
		ProjectID:            projectID,
		UserID:               userID,
		RoleInProject:        "Member",
		AllocationPercentage: 100,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create test team member: %v", err)
	}
	return member
}

// CreateTestAllocation creates a weekly allocation cell.
func CreateTestAllocation(t *testing.T, db *gorm.DB, projectID, userID, activityID string, weekStart time.Time, hours float64) *models.Allocation {
	t.Helper()

	allocation := &models.Allocation{
		UserID:        userID,
		ActivityID:    activityID,
		ProjectID:     projectID,
		WeekStartDate: weekStart,
		Hours:         hours,
	}
	if err := db.Create(allocation).Error; err != nil {
		t.Fatalf("failed to create test allocation: %v", err)
	}
	return allocation
}

// CreateTestTimesheet creates a timesheet entry with the given status.
func CreateTestTimesheet(t *testing.T, db *gorm.DB, projectID, userID string, date time.Time, hours float64, status models.TimesheetStatus) *models.Timesheet {
	t.Helper()

	entry := &models.Timesheet{
		UserID:    userID,
		ProjectID: projectID,
		Date:      date,
		Hours:     hours,
		Status:    status,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test timesheet: %v", err)
	}
	return entry
}
