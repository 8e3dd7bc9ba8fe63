package models

import "time"

// ExpenseStatus represents the approval state of an expense
type ExpenseStatus string

const (
	ExpenseStatusPending  ExpenseStatus = "pending"
	ExpenseStatusApproved ExpenseStatus = "approved"
	ExpenseStatusRejected ExpenseStatus = "rejected"
)

// PaymentStatus represents how far an expense has moved through payment
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending_payment"
	PaymentStatusPaid       PaymentStatus = "paid"
	PaymentStatusReconciled PaymentStatus = "reconciled"
)

// Expense represents a cost logged against a project. The amount is
// immutable after creation; only status and payment_status change through
// the approval workflow. CategoryID is nullable because legacy records
// carry only the free-text Category name.
type Expense struct {
	Base
	ProjectID     string        `gorm:"type:uuid;not null;index" json:"project_id"`
	CategoryID    *string       `gorm:"type:uuid;index" json:"category_id,omitempty"`
	UserID        string        `gorm:"type:uuid;not null" json:"user_id"`
	Category      string        `json:"category"`
	Description   string        `json:"description"`
	Amount        float64       `gorm:"type:decimal(14,2);not null" json:"amount"`
	VATRate       float64       `gorm:"type:decimal(5,2);default:0" json:"vat_rate"`
	NetAmount     *float64      `gorm:"type:decimal(14,2)" json:"net_amount,omitempty"`
	VATAmount     *float64      `gorm:"type:decimal(14,2)" json:"vat_amount,omitempty"`
	Currency      string        `gorm:"not null;default:'EUR'" json:"currency"`
	Date          time.Time     `gorm:"not null" json:"date"`
	Status        ExpenseStatus `gorm:"not null;default:'pending'" json:"status"`
	PaymentStatus PaymentStatus `gorm:"not null;default:'pending_payment'" json:"payment_status"`

	// Relationships
	BudgetCategory *BudgetCategory `gorm:"foreignKey:CategoryID" json:"budget_category,omitempty"`
	User           *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
