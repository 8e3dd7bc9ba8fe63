// Package finance merges allocated-budget records with expense records
// into per-category spending summaries. All functions are pure: callers
// fetch the rows, finance derives the figures.
package finance

import (
	"grantia/internal/models"
)

// CategorySummary is a budget category annotated with derived spending
// figures. SpentAmount is never stored; it is recomputed from the
// project's expenses on every read.
type CategorySummary struct {
	models.BudgetCategory
	SpentAmount  float64 `json:"spent_amount"`
	PercentSpent float64 `json:"percent_spent"`
	IsOverBudget bool    `json:"is_over_budget"`
}

// SummarizeCategories annotates each category with the total of expenses
// that reference it, either by category id or, for legacy untagged
// records, by exact category name. An expense matching no category is
// silently excluded from every total; a category with no matching
// expenses reports zero spend.
func SummarizeCategories(categories []models.BudgetCategory, expenses []models.Expense) []CategorySummary {
	summaries := make([]CategorySummary, 0, len(categories))
	for _, cat := range categories {
		var spent float64
		for _, exp := range expenses {
			if matches(exp, cat) {
				spent += exp.Amount
			}
		}
		summaries = append(summaries, CategorySummary{
			BudgetCategory: cat,
			SpentAmount:    spent,
			PercentSpent:   percentSpent(spent, cat.AllocatedAmount),
			IsOverBudget:   spent > cat.AllocatedAmount,
		})
	}
	return summaries
}

// matches reports whether an expense belongs to a category, preferring
// the id link and falling back to the legacy name field.
func matches(exp models.Expense, cat models.BudgetCategory) bool {
	if exp.CategoryID != nil && *exp.CategoryID == cat.ID {
		return true
	}
	return exp.Category == cat.Name
}

// percentSpent caps at 100 for display; a zero allocation reports 0
// rather than dividing by zero.
func percentSpent(spent, allocated float64) float64 {
	if allocated <= 0 {
		return 0
	}
	pct := spent / allocated * 100
	if pct > 100 {
		return 100
	}
	return pct
}
