package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "grantia/internal/errors"
	"grantia/internal/models"
	"grantia/internal/pagination"
	"grantia/internal/services"
)

// ProjectHandler handles project-related requests.
type ProjectHandler struct {
	projectService services.ProjectServicer
	auditService   services.AuditServicer
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService services.ProjectServicer, auditService services.AuditServicer) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, auditService: auditService}
}

// CreateProjectRequest represents the request payload for creating a project.
type CreateProjectRequest struct {
	Name          string     `json:"name" binding:"required,min=1,max=255"`
	Code          string     `json:"code" binding:"max=50"`
	Description   string     `json:"description" binding:"max=2000"`
	TotalBudget   float64    `json:"total_budget" binding:"omitempty,gte=0"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	CoordinatorID *string    `json:"coordinator_id" binding:"omitempty,uuid"`
}

// UpdateProjectRequest represents the request payload for updating a project.
type UpdateProjectRequest struct {
	Name          string                `json:"name" binding:"omitempty,min=1,max=255"`
	Code          *string               `json:"code" binding:"omitempty,max=50"`
	Description   *string               `json:"description" binding:"omitempty,max=2000"`
	Status        *models.ProjectStatus `json:"status" binding:"omitempty,project_status"`
	StartDate     *time.Time            `json:"start_date"`
	EndDate       *time.Time            `json:"end_date"`
	TotalBudget   *float64              `json:"total_budget" binding:"omitempty,gte=0"`
	CoordinatorID *string               `json:"coordinator_id" binding:"omitempty,uuid"`
}

// CreateProject handles the creation of a new project.
// @Summary     Create a project
// @Description Create a new project in the organization
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateProjectRequest true "Project details"
// @Success     201 {object} models.Project "Project created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Manager only"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
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

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	project, err := h.projectService.CreateProject(
		orgID, req.Name, req.Code, req.Description, req.TotalBudget, req.StartDate, req.EndDate, req.CoordinatorID,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_PROJECT", "project", project.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "total_budget": req.TotalBudget})

	c.JSON(http.StatusCreated, gin.H{"project": project})
}

// GetProjects handles listing the organization's projects.
// @Summary     List projects
// @Description Get a paginated list of the organization's projects
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       status    query string false "Filter by status (draft/active/completed)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Project] "Paginated projects"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects [get]
func (h *ProjectHandler) GetProjects(c *gin.Context) {
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

	var status *models.ProjectStatus
	if v := c.Query("status"); v != "" {
		s := models.ProjectStatus(v)
		if s != models.ProjectStatusDraft && s != models.ProjectStatusActive && s != models.ProjectStatusCompleted {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be 'draft', 'active', or 'completed'"))
			return
		}
		status = &s
	}

	result, err := h.projectService.GetOrganizationProjects(orgID, page, status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProject handles retrieving a specific project.
// @Summary     Get project by ID
// @Description Get a specific project by ID
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Project ID"
// @Success     200 {object} models.Project "Project details"
// @Failure     400 {object} ErrorResponse "Invalid project ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects/{id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
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

	project, err := h.projectService.GetProjectByID(orgID, projectID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

// UpdateProject handles updating a project.
// @Summary     Update a project
// @Description Update a project's details or status
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Project ID"
// @Param       request body UpdateProjectRequest true "Fields to update"
// @Success     200 {object} models.Project "Project updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Manager only"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects/{id} [patch]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
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

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	project, err := h.projectService.UpdateProject(orgID, projectID, services.ProjectUpdates{
		Name:          req.Name,
		Code:          req.Code,
		Description:   req.Description,
		Status:        req.Status,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		TotalBudget:   req.TotalBudget,
		CoordinatorID: req.CoordinatorID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_PROJECT", "project", projectID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "status": req.Status})

	c.JSON(http.StatusOK, gin.H{"project": project})
}

// DeleteProject handles deleting a project.
// @Summary     Delete a project
// @Description Delete a project and its dependent records
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Project ID"
// @Success     204 "Project deleted"
// @Failure     400 {object} ErrorResponse "Invalid project ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Manager only"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
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

	if err := h.projectService.DeleteProject(orgID, projectID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_PROJECT", "project", projectID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
