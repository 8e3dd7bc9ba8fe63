package services

import (
	"encoding/json"

	"gorm.io/gorm"

	"grantia/internal/logger"
	"grantia/internal/models"
)

// auditService records sensitive operations for compliance reporting.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log writes an audit entry. Failures are logged and swallowed; audit
// logging must never fail the operation it records.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	entry := models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
	}

	if changes != nil {
		if data, err := json.Marshal(changes); err == nil {
			entry.Changes = string(data)
		}
	}

	if err := s.db.Create(&entry).Error; err != nil {
		logger.Get().Errorw("Failed to write audit log",
			"user_id", userID,
			"action", action,
			"resource_type", resourceType,
			"error", err,
		)
	}
}
