package models

import "time"

// Activity is a work package within a project. A project owns an
// ordered-by-creation set of activities; weekly allocations always
// reference one of them.
type Activity struct {
	Base
	ProjectID       string     `gorm:"type:uuid;not null;index" json:"project_id"`
	Name            string     `gorm:"not null" json:"name"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	BudgetAllocated float64    `gorm:"type:decimal(14,2);default:0" json:"budget_allocated"`

	// Relationships
	Allocations []Allocation `gorm:"foreignKey:ActivityID" json:"allocations,omitempty"`
}
