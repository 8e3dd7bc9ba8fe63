package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "grantia/internal/errors"
	"grantia/internal/planning"
	"grantia/internal/services"
)

// Default planner window when from/to are not given.
const (
	plannerDefaultPast   = -1 // months
	plannerDefaultFuture = 6  // months
)

// PlanningHandler handles activity, team, and allocation requests.
type PlanningHandler struct {
	planningService services.PlanningServicer
	auditService    services.AuditServicer
}

// NewPlanningHandler creates a new PlanningHandler.
func NewPlanningHandler(planningService services.PlanningServicer, auditService services.AuditServicer) *PlanningHandler {
	return &PlanningHandler{planningService: planningService, auditService: auditService}
}

// CreateActivityRequest represents the payload for creating an activity.
type CreateActivityRequest struct {
	Name            string     `json:"name" binding:"required,min=1,max=255"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	BudgetAllocated float64    `json:"budget_allocated" binding:"omitempty,gte=0"`
}

// AddTeamMemberRequest represents the payload for adding a team member.
type AddTeamMemberRequest struct {
	UserID               string  `json:"user_id" binding:"required,uuid"`
	RoleInProject        string  `json:"role_in_project" binding:"max=100"`
	AllocationPercentage float64 `json:"allocation_percentage" binding:"omitempty,gt=0,lte=100"`
}

// AllocationEntryRequest is one planner cell in a bulk save.
type AllocationEntryRequest struct {
	UserID        string  `json:"user_id" binding:"required,uuid"`
	ActivityID    string  `json:"activity_id" binding:"required,uuid"`
	WeekStartDate string  `json:"week_start_date" binding:"required,week_start"`
	Hours         float64 `json:"hours" binding:"gte=0"`
}

// SaveAllocationsRequest represents a bulk planner save.
type SaveAllocationsRequest struct {
	Entries []AllocationEntryRequest `json:"entries" binding:"required,dive"`
}

// CreateActivity handles adding a work package to a project.
// @Summary     Create an activity
// @Description Add a work package to a project
// @Tags        planning
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Project ID"
// @Param       request body CreateActivityRequest true "Activity details"
// @Success     201 {object} models.Activity "Activity created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Manager only"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects/{id}/activities [post]
func (h *PlanningHandler) CreateActivity(c *gin.Context) {
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

	var req CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	activity, err := h.planningService.CreateActivity(orgID, projectID, req.Name, req.StartDate, req.EndDate, req.BudgetAllocated)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_ACTIVITY", "activity", activity.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name})

	c.JSON(http.StatusCreated, gin.H{"activity": activity})
}

// GetActivities handles listing a project's activities.
// @Summary     List activities
// @Description Get a project's activities in creation order
// @Tags        planning
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Project ID"
// @Success     200 {array} models.Activity "Activities"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects/{id}/activities [get]
func (h *PlanningHandler) GetActivities(c *gin.Context) {
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

	activities, err := h.planningService.GetProjectActivities(orgID, projectID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

// AddTeamMember handles adding a user to a project team.
// @Summary     Add a team member
// @Description Add an organization user to the project team
// @Tags        planning
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Project ID"
// @Param       request body AddTeamMemberRequest true "Member details"
// @Success     201 {object} models.TeamMember "Member added"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Manager only"
// @Failure     404 {object} ErrorResponse "Project or user not found"
// @Failure     409 {object} ErrorResponse "Already a team member"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects/{id}/team [post]
func (h *PlanningHandler) AddTeamMember(c *gin.Context) {
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

	var req AddTeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	member, err := h.planningService.AddTeamMember(orgID, projectID, req.UserID, req.RoleInProject, req.AllocationPercentage)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "ADD_TEAM_MEMBER", "team_member", member.ID, c.ClientIP(),
		map[string]interface{}{"user_id": req.UserID, "role_in_project": member.RoleInProject})

	c.JSON(http.StatusCreated, gin.H{"member": member})
}

// GetTeam handles listing a project's team.
// @Summary     List team members
// @Description Get the project team with user details
// @Tags        planning
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Project ID"
// @Success     200 {array} models.TeamMember "Team members"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects/{id}/team [get]
func (h *PlanningHandler) GetTeam(c *gin.Context) {
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

	team, err := h.planningService.GetProjectTeam(orgID, projectID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"team": team})
}

// SaveAllocations handles a bulk planner save.
// @Summary     Save allocations
// @Description Bulk-upsert planner cells; each cell overwrites on its natural key
// @Tags        planning
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                 true "Project ID"
// @Param       request body SaveAllocationsRequest true "Planner cells"
// @Success     200 {object} map[string]int "Number of saved cells"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Manager only"
// @Failure     404 {object} ErrorResponse "Project or activity not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects/{id}/allocations [put]
func (h *PlanningHandler) SaveAllocations(c *gin.Context) {
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

	var req SaveAllocationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entries := make([]planning.Entry, 0, len(req.Entries))
	for _, e := range req.Entries {
		week, err := planning.ParseWeekKey(e.WeekStartDate)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "week_start_date must be YYYY-MM-DD"))
			return
		}
		entries = append(entries, planning.Entry{
			UserID:        e.UserID,
			ActivityID:    e.ActivityID,
			WeekStartDate: week,
			Hours:         e.Hours,
		})
	}

	saved, err := h.planningService.SaveAllocations(orgID, projectID, entries)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SAVE_ALLOCATIONS", "project", projectID, c.ClientIP(),
		map[string]interface{}{"saved": saved})

	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

// GetAllocations handles listing a project's raw allocation rows.
// @Summary     List allocations
// @Description Get every allocation row of the project
// @Tags        planning
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Project ID"
// @Success     200 {array} models.Allocation "Allocations"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects/{id}/allocations [get]
func (h *PlanningHandler) GetAllocations(c *gin.Context) {
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

	allocations, err := h.planningService.GetProjectAllocations(orgID, projectID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"allocations": allocations})
}

// GetPlanner handles the aggregated planner board.
// @Summary     Get planner board
// @Description Get the capacity-aware planner board for the project team
// @Tags        planning
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string true  "Project ID"
// @Param       from query string false "Window start (YYYY-MM-DD, default one month back)"
// @Param       to   query string false "Window end (YYYY-MM-DD, default six months ahead)"
// @Success     200 {object} services.PlannerView "Planner board"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects/{id}/planner [get]
func (h *PlanningHandler) GetPlanner(c *gin.Context) {
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

	now := time.Now().UTC()
	from := now.AddDate(0, plannerDefaultPast, 0)
	to := now.AddDate(0, plannerDefaultFuture, 0)

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

	view, err := h.planningService.BuildPlannerView(orgID, projectID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
