package models

import "time"

// TimesheetStatus represents the approval state of a timesheet entry
type TimesheetStatus string

const (
	TimesheetStatusDraft    TimesheetStatus = "draft"
	TimesheetStatusPending  TimesheetStatus = "pending"
	TimesheetStatusApproved TimesheetStatus = "approved"
	TimesheetStatusRejected TimesheetStatus = "rejected"
)

// Timesheet is a single day's worked hours for a user on a project.
// Entries are bulk-upserted on (user_id, project_id, date) so autosave
// overwrites rather than duplicates.
type Timesheet struct {
	Base
	UserID          string          `gorm:"type:uuid;not null;uniqueIndex:idx_timesheet_entry" json:"user_id"`
	ProjectID       string          `gorm:"type:uuid;not null;uniqueIndex:idx_timesheet_entry" json:"project_id"`
	ActivityID      *string         `gorm:"type:uuid" json:"activity_id,omitempty"`
	Date            time.Time       `gorm:"type:date;not null;uniqueIndex:idx_timesheet_entry" json:"date"`
	Hours           float64         `gorm:"not null;default:0" json:"hours"`
	Description     string          `json:"description"`
	Status          TimesheetStatus `gorm:"not null;default:'draft'" json:"status"`
	ApprovedBy      *string         `gorm:"type:uuid" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`

	// Relationships
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Project  *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Activity *Activity `gorm:"foreignKey:ActivityID" json:"activity,omitempty"`
}
