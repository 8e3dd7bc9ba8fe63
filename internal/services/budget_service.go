package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"grantia/internal/accounting"
	"grantia/internal/currency"
	apperrors "grantia/internal/errors"
	"grantia/internal/events"
	"grantia/internal/finance"
	"grantia/internal/logger"
	"grantia/internal/models"
	"grantia/internal/pagination"
)

// budgetService handles budget categories, expenses, and the accounting
// export.
type budgetService struct {
	db        *gorm.DB
	publisher events.Publisher
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, publisher events.Publisher) BudgetServicer {
	return &budgetService{db: db, publisher: publisher}
}

// requireProject verifies the project exists within the organization.
func (s *budgetService) requireProject(organizationID, projectID string) (*models.Project, error) {
	var project models.Project
	err := s.db.Where("id = ? AND organization_id = ?", projectID, organizationID).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &project, nil
}

// CreateCategory adds a budget category to the project.
func (s *budgetService) CreateCategory(organizationID, projectID, name string, allocatedAmount float64) (*models.BudgetCategory, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if allocatedAmount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "allocated amount cannot be negative")
	}

	if _, err := s.requireProject(organizationID, projectID); err != nil {
		return nil, err
	}

	category := &models.BudgetCategory{
		ProjectID:       projectID,
		Name:            name,
		AllocatedAmount: currency.Round2(allocatedAmount),
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetCategorySummaries returns the project's categories annotated with
// spending derived from the current expense rows.
func (s *budgetService) GetCategorySummaries(organizationID, projectID string) ([]finance.CategorySummary, error) {
	if _, err := s.requireProject(organizationID, projectID); err != nil {
		return nil, err
	}

	var categories []models.BudgetCategory
	if err := s.db.Where("project_id = ?", projectID).Order("created_at").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := s.db.Where("project_id = ?", projectID).Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return finance.SummarizeCategories(categories, expenses), nil
}

// DeleteCategory removes a category. Expenses referencing it keep their
// legacy name field and simply stop matching any category.
func (s *budgetService) DeleteCategory(organizationID, projectID, categoryID string) error {
	if _, err := s.requireProject(organizationID, projectID); err != nil {
		return err
	}

	result := s.db.Where("id = ? AND project_id = ?", categoryID, projectID).Delete(&models.BudgetCategory{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrCategoryNotFound
	}

	return nil
}

// LogExpense records a cost against the project. The gross amount and its
// net/VAT breakdown are fixed at creation time.
func (s *budgetService) LogExpense(organizationID, projectID, userID string, categoryID *string, description string, amount, vatRate float64, date time.Time) (*models.Expense, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	if vatRate < 0 || vatRate > 100 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "vat rate must be between 0 and 100")
	}

	if _, err := s.requireProject(organizationID, projectID); err != nil {
		return nil, err
	}

	var categoryName string
	if categoryID != nil {
		var category models.BudgetCategory
		err := s.db.Where("id = ? AND project_id = ?", *categoryID, projectID).First(&category).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		categoryName = category.Name
	}

	gross := currency.Round2(amount)
	net := currency.Round2(gross / (1 + vatRate/100))
	vat := currency.Round2(gross - net)

	expense := &models.Expense{
		ProjectID:     projectID,
		CategoryID:    categoryID,
		UserID:        userID,
		Category:      categoryName,
		Description:   description,
		Amount:        gross,
		VATRate:       vatRate,
		NetAmount:     &net,
		VATAmount:     &vat,
		Currency:      "EUR",
		Date:          date,
		Status:        models.ExpenseStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}

	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return expense, nil
}

// GetProjectExpenses returns a paginated list of the project's expenses,
// optionally filtered by approval status.
func (s *budgetService) GetProjectExpenses(organizationID, projectID string, page pagination.PageRequest, status *models.ExpenseStatus) (*pagination.PageResponse[models.Expense], error) {
	if _, err := s.requireProject(organizationID, projectID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Expense{}).Where("project_id = ?", projectID)
	if status != nil {
		base = base.Where("status = ?", *status)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Preload("User").Order("date DESC, created_at DESC").Scopes(pagination.Paginate(page)).Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// getOrgExpense fetches an expense scoped to the organization via its
// project.
func (s *budgetService) getOrgExpense(organizationID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	err := s.db.
		Joins("JOIN projects ON projects.id = expenses.project_id").
		Where("expenses.id = ? AND projects.organization_id = ?", expenseID, organizationID).
		First(&expense).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// SetExpenseStatus moves an expense through the approval workflow.
// Approved and rejected are terminal states.
func (s *budgetService) SetExpenseStatus(organizationID, expenseID, actorID string, status models.ExpenseStatus) (*models.Expense, error) {
	expense, err := s.getOrgExpense(organizationID, expenseID)
	if err != nil {
		return nil, err
	}

	if expense.Status != models.ExpenseStatusPending {
		return nil, apperrors.ErrExpenseFinalized
	}

	if err := s.db.Model(expense).Update("status", status).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	expense.Status = status

	s.publish(events.NewEvent(events.TypeExpenseStatusChanged, expense.ID, expense.ProjectID, actorID, string(status)))

	return expense, nil
}

// SetExpensePaymentStatus moves an approved expense through the payment
// pipeline.
func (s *budgetService) SetExpensePaymentStatus(organizationID, expenseID, actorID string, status models.PaymentStatus) (*models.Expense, error) {
	expense, err := s.getOrgExpense(organizationID, expenseID)
	if err != nil {
		return nil, err
	}

	if expense.Status != models.ExpenseStatusApproved {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "only approved expenses move through payment")
	}

	if err := s.db.Model(expense).Update("payment_status", status).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	expense.PaymentStatus = status

	s.publish(events.NewEvent(events.TypeExpensePaymentMoved, expense.ID, expense.ProjectID, actorID, string(status)))

	return expense, nil
}

// BuildAccountingExport normalizes the project's approved expenses into
// the accounting export envelope.
func (s *budgetService) BuildAccountingExport(organizationID, projectID string) (accounting.Export, error) {
	if _, err := s.requireProject(organizationID, projectID); err != nil {
		return accounting.Export{}, err
	}

	var expenses []models.Expense
	err := s.db.
		Where("project_id = ? AND status = ?", projectID, models.ExpenseStatusApproved).
		Order("date, created_at").
		Find(&expenses).Error
	if err != nil {
		return accounting.Export{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return accounting.BuildExport(expenses, time.Now()), nil
}

// publish emits an event without letting broker failures surface.
func (s *budgetService) publish(event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.Background(), event); err != nil {
		logger.Get().Warnw("Failed to publish event", "type", event.Type, "resource_id", event.ResourceID, "error", err)
	}
}
