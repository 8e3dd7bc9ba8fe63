// Package errors provides custom error types for the Grantia API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User & organization errors.
var (
	ErrUserNotFound         = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail       = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
	ErrOrganizationNotFound = &AppError{Code: "ORGANIZATION_NOT_FOUND", Message: "Organization not found", StatusCode: http.StatusNotFound}
)

// Project errors.
var (
	ErrProjectNotFound = &AppError{Code: "PROJECT_NOT_FOUND", Message: "Project not found", StatusCode: http.StatusNotFound}
)

// Budget & expense errors.
var (
	ErrCategoryNotFound = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Budget category not found", StatusCode: http.StatusNotFound}
	ErrExpenseNotFound  = &AppError{Code: "EXPENSE_NOT_FOUND", Message: "Expense not found", StatusCode: http.StatusNotFound}
	ErrExpenseFinalized = &AppError{Code: "EXPENSE_FINALIZED", Message: "Expense has already been approved or rejected", StatusCode: http.StatusConflict}
)

// Planning errors.
var (
	ErrActivityNotFound  = &AppError{Code: "ACTIVITY_NOT_FOUND", Message: "Activity not found", StatusCode: http.StatusNotFound}
	ErrNotWeekStart      = &AppError{Code: "NOT_WEEK_START", Message: "week_start_date must be a Monday", StatusCode: http.StatusBadRequest}
	ErrAlreadyTeamMember = &AppError{Code: "ALREADY_TEAM_MEMBER", Message: "User already in team", StatusCode: http.StatusConflict}
	ErrNotTeamMember     = &AppError{Code: "NOT_TEAM_MEMBER", Message: "User is not a member of this project", StatusCode: http.StatusNotFound}
)

// Timesheet errors.
var (
	ErrTimesheetNotFound  = &AppError{Code: "TIMESHEET_NOT_FOUND", Message: "Timesheet entry not found", StatusCode: http.StatusNotFound}
	ErrTimesheetFinalized = &AppError{Code: "TIMESHEET_FINALIZED", Message: "Timesheet entry has already been approved or rejected", StatusCode: http.StatusConflict}
)
