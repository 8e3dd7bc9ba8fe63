package testutil_test

import (
	"testing"
	"time"

	"grantia/internal/errors"
	"grantia/internal/models"
	"grantia/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"organizations", "users", "projects", "budget_categories", "expenses", "activities", "team_members", "allocations", "timesheets", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	org := testutil.CreateTestOrganization(t, db)
	if org.ID == "" {
		t.Fatal("organization should have a non-empty ID")
	}

	user := testutil.CreateTestUser(t, db, org.ID)
	if user.Role != models.UserRoleMember {
		t.Errorf("expected member role, got %s", user.Role)
	}

	manager := testutil.CreateTestUserWithRole(t, db, org.ID, models.UserRoleManager)
	if !manager.CanManage() {
		t.Error("manager should be able to manage")
	}

	project := testutil.CreateTestProject(t, db, org.ID)
	if project.Status != models.ProjectStatusActive {
		t.Errorf("expected active project, got %s", project.Status)
	}

	category := testutil.CreateTestCategory(t, db, project.ID, "Travel", 5000)
	if category.AllocatedAmount != 5000 {
		t.Errorf("expected allocated 5000, got %f", category.AllocatedAmount)
	}

	expense := testutil.CreateTestExpense(t, db, project.ID, user.ID, &category.ID, 122)
	if expense.Status != models.ExpenseStatusPending {
		t.Errorf("expected pending expense, got %s", expense.Status)
	}

	activity := testutil.CreateTestActivity(t, db, project.ID)
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	allocation := testutil.CreateTestAllocation(t, db, project.ID, user.ID, activity.ID, monday, 20)
	if allocation.Hours != 20 {
		t.Errorf("expected 20 hours, got %f", allocation.Hours)
	}

	entry := testutil.CreateTestTimesheet(t, db, project.ID, user.ID, monday, 8, models.TimesheetStatusPending)
	if entry.Status != models.TimesheetStatusPending {
		t.Errorf("expected pending timesheet, got %s", entry.Status)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrProjectNotFound, "custom message")
	testutil.AssertAppError(t, err, "PROJECT_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
