package models

import "time"

// ProjectStatus represents the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusDraft     ProjectStatus = "draft"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
)

// Project represents a research-grant project within an organization
type Project struct {
	Base
	OrganizationID string        `gorm:"type:uuid;not null;index" json:"organization_id"`
	Name           string        `gorm:"not null" json:"name"`
	Code           string        `json:"code"`
	Description    string        `json:"description"`
	Status         ProjectStatus `gorm:"not null;default:'draft'" json:"status"`
	StartDate      *time.Time    `json:"start_date,omitempty"`
	EndDate        *time.Time    `json:"end_date,omitempty"`
	TotalBudget    float64       `gorm:"type:decimal(14,2);default:0" json:"total_budget"`
	CoordinatorID  *string       `gorm:"type:uuid" json:"coordinator_id,omitempty"`

	// Relationships
	Coordinator      *User            `gorm:"foreignKey:CoordinatorID" json:"coordinator,omitempty"`
	BudgetCategories []BudgetCategory `gorm:"foreignKey:ProjectID" json:"budget_categories,omitempty"`
	Activities       []Activity       `gorm:"foreignKey:ProjectID" json:"activities,omitempty"`
	Team             []TeamMember     `gorm:"foreignKey:ProjectID" json:"team,omitempty"`
}
