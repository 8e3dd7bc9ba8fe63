package models

// BudgetCategory is a named bucket of allocated funds within a project.
// Categories are inserted and deleted but never updated in place; spent
// amounts are always derived from matching expenses, never stored.
type BudgetCategory struct {
	Base
	ProjectID       string  `gorm:"type:uuid;not null;index" json:"project_id"`
	Name            string  `gorm:"not null" json:"name"`
	AllocatedAmount float64 `gorm:"type:decimal(14,2);not null" json:"allocated_amount"`

	// Relationships
	Expenses []Expense `gorm:"foreignKey:CategoryID" json:"expenses,omitempty"`
}
