// Package accounting transforms expense records into the normalized
// envelope consumed by external accounting software. The transform is
// deterministic and total: unknown categories fall back to a default
// code and missing breakdowns are recomputed, never rejected.
package accounting

import (
	"time"

	"grantia/internal/currency"
	"grantia/internal/models"
)

const (
	// SystemName identifies the producing system in the export envelope.
	SystemName = "Grantia Project Management"
	// SchemaVersion is the export envelope schema version.
	SchemaVersion = "1.0"

	// DefaultVATRate applies when an expense carries no VAT rate.
	DefaultVATRate = 22
	// DefaultCategoryCode is used for any unrecognized category label.
	DefaultCategoryCode = "ACC-0000"
)

// categoryCodes maps human category labels to external accounting codes.
var categoryCodes = map[string]string{
	"Travel":         "ACC-6001",
	"Equipment":      "ACC-2005",
	"Personnel":      "ACC-1001",
	"Subcontracting": "ACC-3001",
	"Other":          "ACC-9999",
}

// Amounts is the gross/net/VAT breakdown of one record.
type Amounts struct {
	Gross    float64 `json:"gross"`
	Net      float64 `json:"net"`
	VAT      float64 `json:"vat"`
	VATRate  float64 `json:"vat_rate"`
	Currency string  `json:"currency"`
}

// Payment carries the payment state of one record.
type Payment struct {
	Status     string `json:"status"`
	Reconciled bool   `json:"reconciled"`
}

// Record is one normalized expense in the export.
type Record struct {
	RecordID        string  `json:"record_id"`
	TransactionDate string  `json:"transaction_date"`
	Description     string  `json:"description"`
	CategoryCode    string  `json:"category_code"`
	Amounts         Amounts `json:"amounts"`
	Payment         Payment `json:"payment"`
}

// Meta describes the export itself.
type Meta struct {
	GeneratedAt time.Time `json:"generated_at"`
	System      string    `json:"system"`
	Version     string    `json:"version"`
}

// Export is the self-describing envelope handed to external systems.
type Export struct {
	ExportMeta Meta     `json:"export_meta"`
	Data       []Record `json:"data"`
}

// CategoryCode maps a category label to its accounting code, degrading to
// the default code for anything unrecognized.
func CategoryCode(category string) string {
	if code, ok := categoryCodes[category]; ok {
		return code
	}
	return DefaultCategoryCode
}

// BuildExport normalizes a list of expenses into the export envelope.
// Stored net/VAT breakdowns are trusted when present; otherwise they are
// derived from the gross amount and VAT rate.
func BuildExport(expenses []models.Expense, now time.Time) Export {
	records := make([]Record, 0, len(expenses))
	for _, exp := range expenses {
		records = append(records, normalize(exp))
	}
	return Export{
		ExportMeta: Meta{
			GeneratedAt: now.UTC(),
			System:      SystemName,
			Version:     SchemaVersion,
		},
		Data: records,
	}
}

func normalize(exp models.Expense) Record {
	gross := exp.Amount
	rate := exp.VATRate
	if rate == 0 {
		rate = DefaultVATRate
	}

	var net float64
	if exp.NetAmount != nil {
		net = *exp.NetAmount
	} else {
		net = gross / (1 + rate/100)
	}

	var vat float64
	if exp.VATAmount != nil {
		vat = *exp.VATAmount
	} else {
		vat = gross - net
	}

	cur := exp.Currency
	if cur == "" {
		cur = "EUR"
	}

	status := string(exp.PaymentStatus)
	if status == "" {
		status = string(models.PaymentStatusPending)
	}

	return Record{
		RecordID:        exp.ID,
		TransactionDate: exp.Date.UTC().Format("2006-01-02"),
		Description:     exp.Description,
		CategoryCode:    CategoryCode(exp.Category),
		Amounts: Amounts{
			Gross:    currency.Round2(gross),
			Net:      currency.Round2(net),
			VAT:      currency.Round2(vat),
			VATRate:  rate,
			Currency: cur,
		},
		Payment: Payment{
			Status:     status,
			Reconciled: exp.PaymentStatus == models.PaymentStatusReconciled,
		},
	}
}
