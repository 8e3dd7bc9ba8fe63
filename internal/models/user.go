package models

import "time"

// UserRole represents the organization-wide role of a user
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleManager UserRole = "manager"
	UserRoleMember  UserRole = "member"
)

// DefaultWeeklyCapacity is the assumed working hours per week when none is set.
const DefaultWeeklyCapacity = 40

// User represents the user model in the database
type User struct {
	Base
	OrganizationID      string     `gorm:"type:uuid;not null;index" json:"organization_id"`
	Email               string     `gorm:"uniqueIndex;not null" json:"email"`
	Password            string     `gorm:"not null" json:"-"`
	FullName            string     `json:"full_name"`
	Role                UserRole   `gorm:"not null;default:'member'" json:"role"`
	WeeklyCapacity      float64    `gorm:"not null;default:40" json:"weekly_capacity"`
	IsActive            bool       `gorm:"default:true" json:"is_active"`
	RefreshTokenHash    string     `gorm:"size:64" json:"-"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`

	// Relationships
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Expenses     []Expense     `gorm:"foreignKey:UserID" json:"expenses,omitempty"`
	Allocations  []Allocation  `gorm:"foreignKey:UserID" json:"allocations,omitempty"`
	Timesheets   []Timesheet   `gorm:"foreignKey:UserID" json:"timesheets,omitempty"`
}

// CanManage reports whether the user may perform manager-level operations
// such as creating projects or approving expenses and timesheets.
func (u *User) CanManage() bool {
	return u.Role == UserRoleAdmin || u.Role == UserRoleManager
}
