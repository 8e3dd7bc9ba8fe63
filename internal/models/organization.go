package models

// Organization is the tenant boundary. Every project, user, and derived
// record belongs to exactly one organization.
type Organization struct {
	Base
	Name string `gorm:"not null" json:"name"`

	// Relationships
	Users    []User    `gorm:"foreignKey:OrganizationID" json:"users,omitempty"`
	Projects []Project `gorm:"foreignKey:OrganizationID" json:"projects,omitempty"`
}
