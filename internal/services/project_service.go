package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "grantia/internal/errors"
	"grantia/internal/models"
	"grantia/internal/pagination"
)

// projectService handles project business logic.
type projectService struct {
	db *gorm.DB
}

// NewProjectService creates a new ProjectServicer.
func NewProjectService(db *gorm.DB) ProjectServicer {
	return &projectService{db: db}
}

// CreateProject creates a project in the organization. A coordinator, when
// given, must be a user of the same organization.
func (s *projectService) CreateProject(organizationID, name, code, description string, totalBudget float64, startDate, endDate *time.Time, coordinatorID *string) (*models.Project, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "project name is required")
	}
	if totalBudget < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total budget cannot be negative")
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "end date cannot precede start date")
	}

	if coordinatorID != nil {
		var count int64
		s.db.Model(&models.User{}).Where("id = ? AND organization_id = ?", *coordinatorID, organizationID).Count(&count)
		if count == 0 {
			return nil, apperrors.ErrUserNotFound
		}
	}

	project := &models.Project{
		OrganizationID: organizationID,
		Name:           name,
		Code:           code,
		Description:    description,
		Status:         models.ProjectStatusDraft,
		StartDate:      startDate,
		EndDate:        endDate,
		TotalBudget:    totalBudget,
		CoordinatorID:  coordinatorID,
	}

	if err := s.db.Create(project).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return project, nil
}

// GetOrganizationProjects returns a paginated list of the organization's
// projects, optionally filtered by status.
func (s *projectService) GetOrganizationProjects(organizationID string, page pagination.PageRequest, status *models.ProjectStatus) (*pagination.PageResponse[models.Project], error) {
	page.Defaults()

	base := s.db.Model(&models.Project{}).Where("organization_id = ?", organizationID)
	if status != nil {
		base = base.Where("status = ?", *status)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var projects []models.Project
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&projects).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(projects, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetProjectByID retrieves a project scoped to the organization.
func (s *projectService) GetProjectByID(organizationID, projectID string) (*models.Project, error) {
	var project models.Project
	err := s.db.Preload("Coordinator").
		Where("id = ? AND organization_id = ?", projectID, organizationID).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &project, nil
}

// UpdateProject applies the non-nil fields of updates to the project.
func (s *projectService) UpdateProject(organizationID, projectID string, updates ProjectUpdates) (*models.Project, error) {
	project, err := s.GetProjectByID(organizationID, projectID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if updates.Name != "" {
		fields["name"] = updates.Name
	}
	if updates.Code != nil {
		fields["code"] = *updates.Code
	}
	if updates.Description != nil {
		fields["description"] = *updates.Description
	}
	if updates.Status != nil {
		fields["status"] = *updates.Status
	}
	if updates.StartDate != nil {
		fields["start_date"] = *updates.StartDate
	}
	if updates.EndDate != nil {
		fields["end_date"] = *updates.EndDate
	}
	if updates.TotalBudget != nil {
		if *updates.TotalBudget < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total budget cannot be negative")
		}
		fields["total_budget"] = *updates.TotalBudget
	}
	if updates.CoordinatorID != nil {
		var count int64
		s.db.Model(&models.User{}).Where("id = ? AND organization_id = ?", *updates.CoordinatorID, organizationID).Count(&count)
		if count == 0 {
			return nil, apperrors.ErrUserNotFound
		}
		fields["coordinator_id"] = *updates.CoordinatorID
	}

	if len(fields) > 0 {
		if err := s.db.Model(project).Updates(fields).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return project, nil
}

// DeleteProject soft deletes a project and its dependent records.
func (s *projectService) DeleteProject(organizationID, projectID string) error {
	project, err := s.GetProjectByID(organizationID, projectID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Allocation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Timesheet{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Expense{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Activity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.BudgetCategory{}).Error; err != nil {
			return err
		}
		return tx.Delete(project).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return nil
}
