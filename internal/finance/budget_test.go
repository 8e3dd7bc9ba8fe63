package finance

import (
	"testing"

	"grantia/internal/models"
)

func cat(id, name string, allocated float64) models.BudgetCategory {
	c := models.BudgetCategory{Name: name, AllocatedAmount: allocated}
	c.ID = id
	return c
}

func expWithID(categoryID string, amount float64) models.Expense {
	return models.Expense{CategoryID: &categoryID, Amount: amount}
}

func expWithName(name string, amount float64) models.Expense {
	return models.Expense{Category: name, Amount: amount}
}

func TestSummarizeCategories(t *testing.T) {
	t.Run("id_and_legacy_name_matches", func(t *testing.T) {
		categories := []models.BudgetCategory{cat("cat-1", "Travel", 1000)}
		expenses := []models.Expense{
			expWithID("cat-1", 300),
			expWithName("Travel", 200),
			expWithID("cat-2", 999), // no matching category, excluded
		}

		summaries := SummarizeCategories(categories, expenses)
		if len(summaries) != 1 {
			t.Fatalf("expected 1 summary, got %d", len(summaries))
		}
		if summaries[0].SpentAmount != 500 {
			t.Errorf("expected spent 500, got %v", summaries[0].SpentAmount)
		}
		if summaries[0].PercentSpent != 50 {
			t.Errorf("expected 50%% spent, got %v", summaries[0].PercentSpent)
		}
		if summaries[0].IsOverBudget {
			t.Error("expected not over budget")
		}
	})

	t.Run("no_matching_expenses", func(t *testing.T) {
		summaries := SummarizeCategories(
			[]models.BudgetCategory{cat("cat-1", "Equipment", 500)},
			nil,
		)
		if summaries[0].SpentAmount != 0 {
			t.Errorf("expected zero spend, got %v", summaries[0].SpentAmount)
		}
		if summaries[0].PercentSpent != 0 {
			t.Errorf("expected 0%% spent, got %v", summaries[0].PercentSpent)
		}
	})

	t.Run("over_budget_caps_percent", func(t *testing.T) {
		summaries := SummarizeCategories(
			[]models.BudgetCategory{cat("cat-1", "Travel", 100)},
			[]models.Expense{expWithID("cat-1", 250)},
		)
		if !summaries[0].IsOverBudget {
			t.Error("expected over budget")
		}
		if summaries[0].PercentSpent != 100 {
			t.Errorf("expected percent capped at 100, got %v", summaries[0].PercentSpent)
		}
	})

	t.Run("zero_allocation", func(t *testing.T) {
		summaries := SummarizeCategories(
			[]models.BudgetCategory{cat("cat-1", "Other", 0)},
			[]models.Expense{expWithID("cat-1", 10)},
		)
		if summaries[0].PercentSpent != 0 {
			t.Errorf("expected 0%% for zero allocation, got %v", summaries[0].PercentSpent)
		}
		if !summaries[0].IsOverBudget {
			t.Error("expected over budget when spending against zero allocation")
		}
	})

	t.Run("empty_categories", func(t *testing.T) {
		summaries := SummarizeCategories(nil, []models.Expense{expWithName("Travel", 50)})
		if len(summaries) != 0 {
			t.Errorf("expected no summaries, got %d", len(summaries))
		}
	})
}
