package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"grantia/internal/accounting"
	apperrors "grantia/internal/errors"
	"grantia/internal/models"
	"grantia/internal/pagination"
	"grantia/internal/services"
)

// BudgetHandler handles budget category, expense, and export requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// CreateCategoryRequest represents the payload for creating a budget category.
type CreateCategoryRequest struct {
	Name            string  `json:"name" binding:"required,min=1,max=100"`
	AllocatedAmount float64 `json:"allocated_amount" binding:"required,gt=0"`
}

// LogExpenseRequest represents the payload for logging an expense.
type LogExpenseRequest struct {
	CategoryID  *string   `json:"category_id" binding:"omitempty,uuid"`
	Description string    `json:"description" binding:"required,min=1,max=500"`
	Amount      float64   `json:"amount" binding:"required,gt=0"`
	VATRate     float64   `json:"vat_rate" binding:"omitempty,gte=0,lte=100"`
	Date        time.Time `json:"date" binding:"required"`
}

// ExpenseStatusRequest represents the payload for an approval decision.
type ExpenseStatusRequest struct {
	Status models.ExpenseStatus `json:"status" binding:"required,expense_status"`
}

// PaymentStatusRequest represents the payload for a payment transition.
type PaymentStatusRequest struct {
	PaymentStatus models.PaymentStatus `json:"payment_status" binding:"required,payment_status"`
}

// CreateCategory handles adding a budget category to a project.
// @Summary     Create a budget category
// @Description Add a named budget bucket to a project
// @Tags        budget
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Project ID"
// @Param       request body CreateCategoryRequest true "Category details"
// @Success     201 {object} models.BudgetCategory "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Manager only"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects/{id}/categories [post]
func (h *BudgetHandler) CreateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	projectID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.budgetService.CreateCategory(orgID, projectID, req.Name, req.AllocatedAmount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_CATEGORY", "budget_category", category.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "allocated_amount": req.AllocatedAmount})

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// GetCategories handles listing a project's categories with derived spend.
// @Summary     List budget categories
// @Description Get a project's categories annotated with derived spending
// @Tags        budget
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Project ID"
// @Success     200 {array} finance.CategorySummary "Category summaries"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects/{id}/categories [get]
func (h *BudgetHandler) GetCategories(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	projectID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summaries, err := h.budgetService.GetCategorySummaries(orgID, projectID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": summaries})
}

// DeleteCategory handles removing a budget category.
// @Summary     Delete a budget category
// @Description Remove a category; its expenses keep their legacy name
// @Tags        budget
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id          path string true "Project ID"
// @Param       category_id path string true "Category ID"
// @Success     204 "Category deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Manager only"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects/{id}/categories/{category_id} [delete]
func (h *BudgetHandler) DeleteCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	projectID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	categoryID, err := parsePathUUID(c, "category_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteCategory(orgID, projectID, categoryID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_CATEGORY", "budget_category", categoryID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// LogExpense handles recording an expense against a project.
// @Summary     Log an expense
// @Description Record a cost against a project, computing the VAT breakdown
// @Tags        budget
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Project ID"
// @Param       request body LogExpenseRequest true "Expense details"
// @Success     201 {object} models.Expense "Expense logged"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Project or category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects/{id}/expenses [post]
func (h *BudgetHandler) LogExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	projectID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req LogExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expense, err := h.budgetService.LogExpense(orgID, projectID, userID, req.CategoryID, req.Description, req.Amount, req.VATRate, req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "LOG_EXPENSE", "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount, "vat_rate": req.VATRate})

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// GetExpenses handles listing a project's expenses.
// @Summary     List expenses
// @Description Get a paginated list of a project's expenses
// @Tags        budget
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Project ID"
// @Param       status    query string false "Filter by status (pending/approved/rejected)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Paginated expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects/{id}/expenses [get]
func (h *BudgetHandler) GetExpenses(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	projectID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var status *models.ExpenseStatus
	if v := c.Query("status"); v != "" {
		s := models.ExpenseStatus(v)
		if s != models.ExpenseStatusPending && s != models.ExpenseStatusApproved && s != models.ExpenseStatusRejected {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be 'pending', 'approved', or 'rejected'"))
			return
		}
		status = &s
	}

	result, err := h.budgetService.GetProjectExpenses(orgID, projectID, page, status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SetExpenseStatus handles the approval decision on an expense.
// @Summary     Approve or reject an expense
// @Description Move a pending expense to approved or rejected
// @Tags        budget
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Expense ID"
// @Param       request body ExpenseStatusRequest true "New status"
// @Success     200 {object} models.Expense "Expense updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Manager only"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     409 {object} ErrorResponse "Expense already finalized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id}/status [patch]
func (h *BudgetHandler) SetExpenseStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if req.Status == models.ExpenseStatusPending {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be 'approved' or 'rejected'"))
		return
	}

	expense, err := h.budgetService.SetExpenseStatus(orgID, expenseID, userID, req.Status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SET_EXPENSE_STATUS", "expense", expenseID, c.ClientIP(),
		map[string]interface{}{"status": req.Status})

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// SetExpensePaymentStatus handles payment pipeline transitions.
// @Summary     Update expense payment status
// @Description Move an approved expense through the payment pipeline
// @Tags        budget
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Expense ID"
// @Param       request body PaymentStatusRequest true "New payment status"
// @Success     200 {object} models.Expense "Expense updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Manager only"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id}/payment-status [patch]
func (h *BudgetHandler) SetExpensePaymentStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expense, err := h.budgetService.SetExpensePaymentStatus(orgID, expenseID, userID, req.PaymentStatus)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SET_PAYMENT_STATUS", "expense", expenseID, c.ClientIP(),
		map[string]interface{}{"payment_status": req.PaymentStatus})

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// ExportAccounting handles the accounting export in JSON or XLSX.
// @Summary     Export approved expenses
// @Description Export a project's approved expenses for external accounting software
// @Tags        budget
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id     path  string true  "Project ID"
// @Param       format query string false "Export format: json (default) or xlsx"
// @Success     200 {object} accounting.Export "Export envelope"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Manager only"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects/{id}/export [get]
func (h *BudgetHandler) ExportAccounting(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	projectID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	export, err := h.budgetService.BuildAccountingExport(orgID, projectID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "EXPORT_ACCOUNTING", "project", projectID, c.ClientIP(),
		map[string]interface{}{"records": len(export.Data)})

	switch c.DefaultQuery("format", "json") {
	case "json":
		c.JSON(http.StatusOK, export)
	case "xlsx":
		var buf bytes.Buffer
		if err := accounting.WriteXLSX(export, &buf); err != nil {
			respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
			return
		}
		filename := fmt.Sprintf("accounting-export-%s.xlsx", export.ExportMeta.GeneratedAt.Format("2006-01-02"))
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	default:
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "format must be 'json' or 'xlsx'"))
	}
}
