package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "grantia/internal/errors"
	"grantia/internal/events"
	"grantia/internal/logger"
	"grantia/internal/models"
	"grantia/internal/pagination"
)

// timesheetService handles daily timesheet entry and the approval
// workflow.
type timesheetService struct {
	db        *gorm.DB
	publisher events.Publisher
}

// NewTimesheetService creates a new TimesheetServicer.
func NewTimesheetService(db *gorm.DB, publisher events.Publisher) TimesheetServicer {
	return &timesheetService{db: db, publisher: publisher}
}

// UpsertEntries bulk-saves a user's timesheet grid. Rows are upserted on
// (user_id, project_id, date) so autosave overwrites instead of
// duplicating. Entries already approved are not overwritten.
func (s *timesheetService) UpsertEntries(organizationID, userID string, entries []TimesheetEntryInput) ([]models.Timesheet, error) {
	if len(entries) == 0 {
		return []models.Timesheet{}, nil
	}

	projectIDs := make(map[string]bool)
	for _, e := range entries {
		if e.Hours < 0 || e.Hours > 24 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "hours must be between 0 and 24")
		}
		if e.Status != models.TimesheetStatusDraft && e.Status != models.TimesheetStatusPending {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "entries can only be saved as draft or pending")
		}
		projectIDs[e.ProjectID] = true
	}

	for projectID := range projectIDs {
		var count int64
		s.db.Model(&models.Project{}).Where("id = ? AND organization_id = ?", projectID, organizationID).Count(&count)
		if count == 0 {
			return nil, apperrors.ErrProjectNotFound
		}
	}

	rows := make([]models.Timesheet, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, models.Timesheet{
			UserID:      userID,
			ProjectID:   e.ProjectID,
			ActivityID:  e.ActivityID,
			Date:        dateOnly(e.Date),
			Hours:       e.Hours,
			Description: e.Description,
			Status:      e.Status,
		})
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "project_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"activity_id", "hours", "description", "status", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Neq{Column: clause.Column{Table: "timesheets", Name: "status"}, Value: models.TimesheetStatusApproved},
		}},
	}).Create(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return rows, nil
}

// GetUserTimesheets lists a user's entries in the date window.
func (s *timesheetService) GetUserTimesheets(organizationID, userID string, from, to time.Time) ([]models.Timesheet, error) {
	var entries []models.Timesheet
	err := s.db.Preload("Project").Preload("Activity").
		Joins("JOIN projects ON projects.id = timesheets.project_id").
		Where("timesheets.user_id = ? AND projects.organization_id = ?", userID, organizationID).
		Where("timesheets.date >= ? AND timesheets.date <= ?", dateOnly(from), dateOnly(to)).
		Order("timesheets.date").
		Find(&entries).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entries, nil
}

// GetPendingApprovals returns the organization's entries awaiting
// approval.
func (s *timesheetService) GetPendingApprovals(organizationID string, page pagination.PageRequest) (*pagination.PageResponse[models.Timesheet], error) {
	page.Defaults()

	base := s.db.Model(&models.Timesheet{}).
		Joins("JOIN projects ON projects.id = timesheets.project_id").
		Where("projects.organization_id = ? AND timesheets.status = ?", organizationID, models.TimesheetStatusPending)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.Timesheet
	err := base.Preload("User").Preload("Project").
		Order("timesheets.date").
		Scopes(pagination.Paginate(page)).
		Find(&entries).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// getOrgTimesheet fetches an entry scoped to the organization via its
// project.
func (s *timesheetService) getOrgTimesheet(organizationID, id string) (*models.Timesheet, error) {
	var entry models.Timesheet
	err := s.db.
		Joins("JOIN projects ON projects.id = timesheets.project_id").
		Where("timesheets.id = ? AND projects.organization_id = ?", id, organizationID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTimesheetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &entry, nil
}

// ApproveBatch approves the given pending entries and returns how many
// were approved. Entries not found or not pending are skipped, not
// failed: approvers work from lists that may be stale.
func (s *timesheetService) ApproveBatch(organizationID, approverID string, ids []string) (int, error) {
	approved := 0
	now := time.Now()

	for _, id := range ids {
		entry, err := s.getOrgTimesheet(organizationID, id)
		if err != nil {
			continue
		}
		if entry.Status != models.TimesheetStatusPending {
			continue
		}

		updates := map[string]interface{}{
			"status":      models.TimesheetStatusApproved,
			"approved_by": approverID,
			"approved_at": now,
		}
		if err := s.db.Model(entry).Updates(updates).Error; err != nil {
			return approved, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		approved++

		s.publish(events.NewEvent(events.TypeTimesheetApproved, entry.ID, entry.ProjectID, approverID, string(models.TimesheetStatusApproved)))
	}

	return approved, nil
}

// RejectEntry rejects a pending entry with a reason.
func (s *timesheetService) RejectEntry(organizationID, approverID, id, reason string) (*models.Timesheet, error) {
	entry, err := s.getOrgTimesheet(organizationID, id)
	if err != nil {
		return nil, err
	}

	if entry.Status != models.TimesheetStatusPending {
		return nil, apperrors.ErrTimesheetFinalized
	}

	updates := map[string]interface{}{
		"status":           models.TimesheetStatusRejected,
		"rejection_reason": reason,
	}
	if err := s.db.Model(entry).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	entry.Status = models.TimesheetStatusRejected
	entry.RejectionReason = reason

	s.publish(events.NewEvent(events.TypeTimesheetRejected, entry.ID, entry.ProjectID, approverID, string(models.TimesheetStatusRejected)))

	return entry, nil
}

func (s *timesheetService) publish(event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.Background(), event); err != nil {
		logger.Get().Warnw("Failed to publish event", "type", event.Type, "resource_id", event.ResourceID, "error", err)
	}
}

// dateOnly truncates a timestamp to midnight UTC so date-keyed rows
// compare equal regardless of the submitted time component.
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
