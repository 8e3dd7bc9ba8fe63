package services

import (
	"testing"
	"time"

	"grantia/internal/accounting"
	"grantia/internal/models"
	"grantia/internal/pagination"
	"grantia/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		org := testutil.CreateTestOrganization(t, db)
		project := testutil.CreateTestProject(t, db, org.ID)

		category, err := svc.CreateCategory(org.ID, project.ID, "Travel", 5000.006)
		testutil.AssertNoError(t, err)

		if category.ID == "" {
			t.Fatal("expected non-empty category ID")
		}
		if category.AllocatedAmount != 5000.01 {
			t.Errorf("expected allocated rounded to 5000.01, got %f", category.AllocatedAmount)
		}
	})

	t.Run("other_organization", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		org1 := testutil.CreateTestOrganization(t, db)
		org2 := testutil.CreateTestOrganization(t, db)
		project := testutil.CreateTestProject(t, db, org2.ID)

		_, err := svc.CreateCategory(org1.ID, project.ID, "Travel", 100)
		testutil.AssertAppError(t, err, "PROJECT_NOT_FOUND")
	})

	t.Run("negative_allocation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		org := testutil.CreateTestOrganization(t, db)
		project := testutil.CreateTestProject(t, db, org.ID)

		_, err := svc.CreateCategory(org.ID, project.ID, "Travel", -1)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetCategorySummaries(t *testing.T) {
	t.Run("derives_spend_from_expenses", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		org := testutil.CreateTestOrganization(t, db)
		user := testutil.CreateTestUser(t, db, org.ID)
		project := testutil.CreateTestProject(t, db, org.ID)
		travel := testutil.CreateTestCategory(t, db, project.ID, "Travel", 1000)

		testutil.CreateTestExpense(t, db, project.ID, user.ID, &travel.ID, 300)
		testutil.CreateTestExpense(t, db, project.ID, user.ID, &travel.ID, 200)
		testutil.CreateTestExpense(t, db, project.ID, user.ID, nil, 999)

		summaries, err := svc.GetCategorySummaries(org.ID, project.ID)
		testutil.AssertNoError(t, err)

		if len(summaries) != 1 {
			t.Fatalf("expected 1 summary, got %d", len(summaries))
		}
		if summaries[0].SpentAmount != 500 {
			t.Errorf("expected spent 500, got %f", summaries[0].SpentAmount)
		}
		if summaries[0].PercentSpent != 50 {
			t.Errorf("expected 50 percent, got %f", summaries[0].PercentSpent)
		}
		if summaries[0].IsOverBudget {
			t.Error("expected not over budget")
		}
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		org := testutil.CreateTestOrganization(t, db)
		project := testutil.CreateTestProject(t, db, org.ID)
		category := testutil.CreateTestCategory(t, db, project.ID, "Travel", 1000)

		testutil.AssertNoError(t, svc.DeleteCategory(org.ID, project.ID, category.ID))

		summaries, err := svc.GetCategorySummaries(org.ID, project.ID)
		testutil.AssertNoError(t, err)
		if len(summaries) != 0 {
			t.Errorf("expected no categories, got %d", len(summaries))
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		org := testutil.CreateTestOrganization(t, db)
		project := testutil.CreateTestProject(t, db, org.ID)

		err := svc.DeleteCategory(org.ID, project.ID, "00000000-0000-0000-0000-000000000000")
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestLogExpense(t *testing.T) {
	t.Run("computes_vat_breakdown", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		org := testutil.CreateTestOrganization(t, db)
		user := testutil.CreateTestUser(t, db, org.ID)
		project := testutil.CreateTestProject(t, db, org.ID)
		category := testutil.CreateTestCategory(t, db, project.ID, "Travel", 1000)

		expense, err := svc.LogExpense(org.ID, project.ID, user.ID, &category.ID, "Train tickets", 122, 22, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)

		if expense.NetAmount == nil || *expense.NetAmount != 100 {
			t.Errorf("expected net 100, got %v", expense.NetAmount)
		}
		if expense.VATAmount == nil || *expense.VATAmount != 22 {
			t.Errorf("expected VAT 22, got %v", expense.VATAmount)
		}
		if expense.Category != "Travel" {
			t.Errorf("expected category name copied, got %s", expense.Category)
		}
		if expense.Status != models.ExpenseStatusPending {
			t.Errorf("expected pending status, got %s", expense.Status)
		}
	})

	t.Run("unknown_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		org := testutil.CreateTestOrganization(t, db)
		user := testutil.CreateTestUser(t, db, org.ID)
		project := testutil.CreateTestProject(t, db, org.ID)

		bogus := "00000000-0000-0000-0000-000000000000"
		_, err := svc.LogExpense(org.ID, project.ID, user.ID, &bogus, "X", 100, 22, time.Now())
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("non_positive_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		org := testutil.CreateTestOrganization(t, db)
		user := testutil.CreateTestUser(t, db, org.ID)
		project := testutil.CreateTestProject(t, db, org.ID)

		_, err := svc.LogExpense(org.ID, project.ID, user.ID, nil, "X", 0, 22, time.Now())
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestSetExpenseStatus(t *testing.T) {
	t.Run("approve", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		org := testutil.CreateTestOrganization(t, db)
		user := testutil.CreateTestUser(t, db, org.ID)
		project := testutil.CreateTestProject(t, db, org.ID)
		expense := testutil.CreateTestExpense(t, db, project.ID, user.ID, nil, 100)

		updated, err := svc.SetExpenseStatus(org.ID, expense.ID, user.ID, models.ExpenseStatusApproved)
		testutil.AssertNoError(t, err)
		if updated.Status != models.ExpenseStatusApproved {
			t.Errorf("expected approved, got %s", updated.Status)
		}
	})

	t.Run("already_finalized", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		org := testutil.CreateTestOrganization(t, db)
		user := testutil.CreateTestUser(t, db, org.ID)
		project := testutil.CreateTestProject(t, db, org.ID)
		expense := testutil.CreateTestExpense(t, db, project.ID, user.ID, nil, 100)

		_, err := svc.SetExpenseStatus(org.ID, expense.ID, user.ID, models.ExpenseStatusApproved)
		testutil.AssertNoError(t, err)

		_, err = svc.SetExpenseStatus(org.ID, expense.ID, user.ID, models.ExpenseStatusRejected)
		testutil.AssertAppError(t, err, "EXPENSE_FINALIZED")
	})

	t.Run("other_organization", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		org1 := testutil.CreateTestOrganization(t, db)
		org2 := testutil.CreateTestOrganization(t, db)
		user := testutil.CreateTestUser(t, db, org2.ID)
		project := testutil.CreateTestProject(t, db, org2.ID)
		expense := testutil.CreateTestExpense(t, db, project.ID, user.ID, nil, 100)

		_, err := svc.SetExpenseStatus(org1.ID, expense.ID, user.ID, models.ExpenseStatusApproved)
		testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
	})
}

func TestSetExpensePaymentStatus(t *testing.T) {
	t.Run("requires_approved", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		org := testutil.CreateTestOrganization(t, db)
		user := testutil.CreateTestUser(t, db, org.ID)
		project := testutil.CreateTestProject(t, db, org.ID)
		expense := testutil.CreateTestExpense(t, db, project.ID, user.ID, nil, 100)

		_, err := svc.SetExpensePaymentStatus(org.ID, expense.ID, user.ID, models.PaymentStatusPaid)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("moves_approved_expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		org := testutil.CreateTestOrganization(t, db)
		user := testutil.CreateTestUser(t, db, org.ID)
		project := testutil.CreateTestProject(t, db, org.ID)
		expense := testutil.CreateTestExpense(t, db, project.ID, user.ID, nil, 100)

		_, err := svc.SetExpenseStatus(org.ID, expense.ID, user.ID, models.ExpenseStatusApproved)
		testutil.AssertNoError(t, err)

		updated, err := svc.SetExpensePaymentStatus(org.ID, expense.ID, user.ID, models.PaymentStatusPaid)
		testutil.AssertNoError(t, err)
		if updated.PaymentStatus != models.PaymentStatusPaid {
			t.Errorf("expected paid, got %s", updated.PaymentStatus)
		}
	})
}

func TestGetProjectExpenses(t *testing.T) {
	t.Run("filters_by_status", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		org := testutil.CreateTestOrganization(t, db)
		user := testutil.CreateTestUser(t, db, org.ID)
		project := testutil.CreateTestProject(t, db, org.ID)
		e1 := testutil.CreateTestExpense(t, db, project.ID, user.ID, nil, 100)
		testutil.CreateTestExpense(t, db, project.ID, user.ID, nil, 200)

		_, err := svc.SetExpenseStatus(org.ID, e1.ID, user.ID, models.ExpenseStatusApproved)
		testutil.AssertNoError(t, err)

		approved := models.ExpenseStatusApproved
		page, err := svc.GetProjectExpenses(org.ID, project.ID, pagination.PageRequest{}, &approved)
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Errorf("expected 1 approved expense, got %d", page.TotalItems)
		}
	})
}

func TestBuildAccountingExport(t *testing.T) {
	t.Run("only_approved_expenses", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, nil)
		org := testutil.CreateTestOrganization(t, db)
		user := testutil.CreateTestUser(t, db, org.ID)
		project := testutil.CreateTestProject(t, db, org.ID)
		travel := testutil.CreateTestCategory(t, db, project.ID, "Travel", 1000)
		e1 := testutil.CreateTestExpense(t, db, project.ID, user.ID, &travel.ID, 122)
		testutil.CreateTestExpense(t, db, project.ID, user.ID, nil, 500)

		if err := db.Model(&models.Expense{}).Where("id = ?", e1.ID).
			Updates(map[string]interface{}{"status": models.ExpenseStatusApproved, "category": "Travel"}).Error; err != nil {
			t.Fatalf("failed to approve expense: %v", err)
		}

		export, err := svc.BuildAccountingExport(org.ID, project.ID)
		testutil.AssertNoError(t, err)

		if export.ExportMeta.System != accounting.SystemName {
			t.Errorf("expected system name %q, got %q", accounting.SystemName, export.ExportMeta.System)
		}
		if len(export.Data) != 1 {
			t.Fatalf("expected 1 record, got %d", len(export.Data))
		}
		if export.Data[0].CategoryCode != "ACC-6001" {
			t.Errorf("expected Travel code ACC-6001, got %s", export.Data[0].CategoryCode)
		}
	})
}
