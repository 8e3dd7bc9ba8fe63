package models

import "time"

// Allocation is the planned hours for one user on one project activity in
// one calendar week. WeekStartDate is the Monday of that week, stored as a
// date, not a timestamp. The (user_id, activity_id, week_start_date) triple
// is the natural key: saves are upserts that overwrite hours, never
// duplicate rows.
type Allocation struct {
	Base
	UserID        string    `gorm:"type:uuid;not null;uniqueIndex:idx_allocation_cell" json:"user_id"`
	ActivityID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_allocation_cell" json:"activity_id"`
	ProjectID     string    `gorm:"type:uuid;not null;index" json:"project_id"`
	WeekStartDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_allocation_cell" json:"week_start_date"`
	Hours         float64   `gorm:"not null;default:0" json:"hours"`
}
