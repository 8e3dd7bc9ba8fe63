package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "grantia/internal/errors"
	"grantia/internal/models"
	"grantia/internal/pagination"
	"grantia/internal/planning"
	"grantia/internal/services"
)

// TimesheetHandler handles timesheet entry and approval requests.
type TimesheetHandler struct {
	timesheetService services.TimesheetServicer
	auditService     services.AuditServicer
}

// NewTimesheetHandler creates a new TimesheetHandler.
func NewTimesheetHandler(timesheetService services.TimesheetServicer, auditService services.AuditServicer) *TimesheetHandler {
	return &TimesheetHandler{timesheetService: timesheetService, auditService: auditService}
}

// TimesheetEntryRequest is one day's hours in a bulk save.
type TimesheetEntryRequest struct {
	ProjectID   string                 `json:"project_id" binding:"required,uuid"`
	ActivityID  *string                `json:"activity_id" binding:"omitempty,uuid"`
	Date        string                 `json:"date" binding:"required"`
	Hours       float64                `json:"hours" binding:"gte=0,lte=24"`
	Description string                 `json:"description" binding:"max=500"`
	Status      models.TimesheetStatus `json:"status" binding:"omitempty,timesheet_status"`
}

// SaveTimesheetsRequest represents a bulk timesheet save.
type SaveTimesheetsRequest struct {
	Entries []TimesheetEntryRequest `json:"entries" binding:"required,dive"`
}

// ApproveTimesheetsRequest represents a batch approval.
type ApproveTimesheetsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,dive,uuid"`
}

// RejectTimesheetRequest represents a rejection with reason.
type RejectTimesheetRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// SaveTimesheets handles a bulk timesheet save.
// @Summary     Save timesheet entries
// @Description Bulk-upsert the caller's timesheet grid; rows overwrite on (project, date)
// @Tags        timesheets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SaveTimesheetsRequest true "Timesheet entries"
// @Success     200 {array} models.Timesheet "Saved entries"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /timesheets [put]
func (h *TimesheetHandler) SaveTimesheets(c *gin.Context) {
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

	var req SaveTimesheetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	inputs := make([]services.TimesheetEntryInput, 0, len(req.Entries))
	for _, e := range req.Entries {
		date, err := planning.ParseWeekKey(e.Date)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be YYYY-MM-DD"))
			return
		}
		status := e.Status
		if status == "" {
			status = models.TimesheetStatusDraft
		}
		inputs = append(inputs, services.TimesheetEntryInput{
			ProjectID:   e.ProjectID,
			ActivityID:  e.ActivityID,
			Date:        date,
			Hours:       e.Hours,
			Description: e.Description,
			Status:      status,
		})
	}

	entries, err := h.timesheetService.UpsertEntries(orgID, userID, inputs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// GetTimesheets handles listing the caller's entries in a date window.
// @Summary     Get timesheet entries
// @Description Get the caller's entries between from and to (default: current month)
// @Tags        timesheets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       from query string false "Window start (YYYY-MM-DD)"
// @Param       to   query string false "Window end (YYYY-MM-DD)"
// @Success     200 {array} models.Timesheet "Entries"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /timesheets [get]
func (h *TimesheetHandler) GetTimesheets(c *gin.Context) {
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

	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	if v := c.Query("from"); v != "" {
		from, err = planning.ParseWeekKey(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "from must be YYYY-MM-DD"))
			return
		}
	}
	if v := c.Query("to"); v != "" {
		to, err = planning.ParseWeekKey(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "to must be YYYY-MM-DD"))
			return
		}
	}

	entries, err := h.timesheetService.GetUserTimesheets(orgID, userID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// GetPendingApprovals handles listing pending entries for managers.
// @Summary     List pending approvals
// @Description Get the organization's timesheet entries awaiting approval
// @Tags        timesheets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Timesheet] "Paginated pending entries"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Manager only"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /timesheets/approvals [get]
func (h *TimesheetHandler) GetPendingApprovals(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.timesheetService.GetPendingApprovals(orgID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ApproveTimesheets handles a batch approval.
// @Summary     Approve timesheet entries
// @Description Approve a batch of pending entries; entries no longer pending are skipped
// @Tags        timesheets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ApproveTimesheetsRequest true "Entry IDs"
// @Success     200 {object} map[string]int "Number of approved entries"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Manager only"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /timesheets/approve [post]
func (h *TimesheetHandler) ApproveTimesheets(c *gin.Context) {
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

	var req ApproveTimesheetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	approved, err := h.timesheetService.ApproveBatch(orgID, userID, req.IDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "APPROVE_TIMESHEETS", "timesheet", "", c.ClientIP(),
		map[string]interface{}{"requested": len(req.IDs), "approved": approved})

	c.JSON(http.StatusOK, gin.H{"approved": approved})
}

// RejectTimesheet handles rejecting a pending entry.
// @Summary     Reject a timesheet entry
// @Description Reject a pending entry with a reason
// @Tags        timesheets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                 true "Entry ID"
// @Param       request body RejectTimesheetRequest true "Rejection reason"
// @Success     200 {object} models.Timesheet "Entry rejected"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Manager only"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Failure     409 {object} ErrorResponse "Entry already finalized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /timesheets/{id}/reject [post]
func (h *TimesheetHandler) RejectTimesheet(c *gin.Context) {
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

	entryID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RejectTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entry, err := h.timesheetService.RejectEntry(orgID, userID, entryID, req.Reason)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REJECT_TIMESHEET", "timesheet", entryID, c.ClientIP(),
		map[string]interface{}{"reason": req.Reason})

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}
