package accounting

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Expenses"

var xlsxHeader = []string{
	"Record ID", "Date", "Description", "Category Code",
	"Gross", "Net", "VAT", "VAT Rate", "Currency",
	"Payment Status", "Reconciled",
}

// WriteXLSX renders an export as an XLSX workbook for accounting staff.
func WriteXLSX(export Export, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("remove default sheet: %w", err)
	}

	for col, title := range xlsxHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, rec := range export.Data {
		row := []interface{}{
			rec.RecordID,
			rec.TransactionDate,
			rec.Description,
			rec.CategoryCode,
			rec.Amounts.Gross,
			rec.Amounts.Net,
			rec.Amounts.VAT,
			rec.Amounts.VATRate,
			rec.Amounts.Currency,
			rec.Payment.Status,
			rec.Payment.Reconciled,
		}
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("write row %d: %w", i+2, err)
			}
		}
	}

	metaCell := fmt.Sprintf("A%d", len(export.Data)+3)
	meta := fmt.Sprintf("Generated %s by %s (schema %s)",
		export.ExportMeta.GeneratedAt.Format("2006-01-02 15:04:05 UTC"),
		export.ExportMeta.System,
		export.ExportMeta.Version,
	)
	if err := f.SetCellValue(sheetName, metaCell, meta); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
