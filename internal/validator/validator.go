// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("user_role", validateUserRole)
		_ = v.RegisterValidation("project_status", validateProjectStatus)
		_ = v.RegisterValidation("expense_status", validateExpenseStatus)
		_ = v.RegisterValidation("payment_status", validatePaymentStatus)
		_ = v.RegisterValidation("timesheet_status", validateTimesheetStatus)
		_ = v.RegisterValidation("week_start", validateWeekStart)
	}
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "admin", "manager", "member":
		return true
	}
	return false
}

func validateProjectStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "draft", "active", "completed":
		return true
	}
	return false
}

func validateExpenseStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "pending", "approved", "rejected":
		return true
	}
	return false
}

func validatePaymentStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "pending_payment", "paid", "reconciled":
		return true
	}
	return false
}

func validateTimesheetStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "draft", "pending", "approved", "rejected":
		return true
	}
	return false
}

// validateWeekStart accepts "2006-01-02" dates that fall on a Monday,
// the canonical start of an allocation week.
func validateWeekStart(fl validator.FieldLevel) bool {
	t, err := time.ParseInLocation("2006-01-02", fl.Field().String(), time.UTC)
	if err != nil {
		return false
	}
	return t.Weekday() == time.Monday
}
