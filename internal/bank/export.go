package bank

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// PoolSheet is the worksheet name used by ExportXLSX.
const PoolSheet = "Pool"

var poolHeader = []any{"id", "section", "answer", "question", "explanation"}

// ExportXLSX writes the pool as a single-sheet workbook, one question per
// row in pool order.
func ExportXLSX(w io.Writer, pool []Question) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PoolSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetSheetRow(PoolSheet, "A1", &poolHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetRowStyle(PoolSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, q := range pool {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{q.ID, q.Section, answerMark(q.Answer), q.Text, q.Explanation}
		if err := f.SetSheetRow(PoolSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(PoolSheet, "D", "D", 80); err != nil {
		return fmt.Errorf("column width: %w", err)
	}
	if err := f.SetColWidth(PoolSheet, "E", "E", 60); err != nil {
		return fmt.Errorf("column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func answerMark(v bool) string {
	if v {
		return "○"
	}
	return "×"
}
