package models

// TeamMember associates a user with a project. Membership determines which
// users appear in the project's resource planner.
type TeamMember struct {
	Base
	ProjectID            string  `gorm:"type:uuid;not null;uniqueIndex:idx_project_user" json:"project_id"`
	UserID               string  `gorm:"type:uuid;not null;uniqueIndex:idx_project_user" json:"user_id"`
	RoleInProject        string  `gorm:"not null;default:'Member'" json:"role_in_project"`
	AllocationPercentage float64 `gorm:"not null;default:100" json:"allocation_percentage"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
