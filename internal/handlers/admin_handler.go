package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "grantia/internal/errors"
	"grantia/internal/models"
	"grantia/internal/pagination"
	"grantia/internal/services"
)

// AdminHandler handles organization user management. All routes are
// admin-only.
type AdminHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(userService services.UserServicer, auditService services.AuditServicer) *AdminHandler {
	return &AdminHandler{userService: userService, auditService: auditService}
}

// CreateUserRequest represents the admin user-creation payload.
type CreateUserRequest struct {
	Email          string          `json:"email" binding:"required,email,max=255"`
	Password       string          `json:"password" binding:"required,min=8,max=128"`
	FullName       string          `json:"full_name" binding:"max=255"`
	Role           models.UserRole `json:"role" binding:"required,user_role"`
	WeeklyCapacity float64         `json:"weekly_capacity" binding:"omitempty,gt=0,lte=80"`
}

// UpdateUserRequest represents the admin user-update payload.
type UpdateUserRequest struct {
	Role           *models.UserRole `json:"role" binding:"omitempty,user_role"`
	WeeklyCapacity *float64         `json:"weekly_capacity" binding:"omitempty,gt=0,lte=80"`
	IsActive       *bool            `json:"is_active"`
}

// CreateUser handles admin creation of an organization user.
// @Summary     Create a user
// @Description Create a new user within the admin's organization
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateUserRequest true "User details"
// @Success     201 {object} models.User "User created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin only"
// @Failure     409 {object} ErrorResponse "Email already registered"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/users [post]
func (h *AdminHandler) CreateUser(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.CreateUser(orgID, req.Email, req.Password, req.FullName, req.Role, req.WeeklyCapacity)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(adminID, "CREATE_USER", "user", user.ID, c.ClientIP(),
		map[string]interface{}{"email": user.Email, "role": user.Role})

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// GetUsers handles listing the organization's users.
// @Summary     List users
// @Description Get a paginated list of the organization's users
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.User] "Paginated users"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin only"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/users [get]
func (h *AdminHandler) GetUsers(c *gin.Context) {
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

	result, err := h.userService.GetOrganizationUsers(orgID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateUser handles admin updates to a user's role, capacity, or active flag.
// @Summary     Update a user
// @Description Update a user's role, weekly capacity, or active status
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "User ID"
// @Param       request body UpdateUserRequest true "Fields to update"
// @Success     200 {object} models.User "User updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin only"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/users/{id} [patch]
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	orgID, err := getOrganizationID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	userID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.UpdateUser(orgID, userID, req.Role, req.WeeklyCapacity, req.IsActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(adminID, "UPDATE_USER", "user", userID, c.ClientIP(),
		map[string]interface{}{"role": req.Role, "weekly_capacity": req.WeeklyCapacity, "is_active": req.IsActive})

	c.JSON(http.StatusOK, gin.H{"user": user})
}
