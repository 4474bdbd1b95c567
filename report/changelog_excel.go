package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const TallySheet = "Cambios por Columna"

// ExcelChangeLogWriter writes the correction list, the error list and the
// per-column tally into a new workbook.
type ExcelChangeLogWriter struct{}

func (w *ExcelChangeLogWriter) Write(out io.Writer, summary *Summary) error {
	file := excelize.NewFile()
	defer file.Close()

	first := file.GetSheetName(0)
	if err := file.SetSheetName(first, ChangeSheet); err != nil {
		return fmt.Errorf("rename sheet %s: %w", first, err)
	}

	sheets := []struct {
		name string
		rows [][]any
	}{
		{name: ChangeSheet, rows: correctionRows(summary)},
		{name: ErrorSheet, rows: errorRows(summary)},
		{name: TallySheet, rows: tallyRows(summary)},
	}
	for i, sheet := range sheets {
		if i > 0 {
			if _, err := file.NewSheet(sheet.name); err != nil {
				return fmt.Errorf("create sheet %s: %w", sheet.name, err)
			}
		}
		for r, row := range sheet.rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			values := row
			if err := file.SetSheetRow(sheet.name, cell, &values); err != nil {
				return fmt.Errorf("set excel row %s!%s: %w", sheet.name, cell, err)
			}
		}
	}

	if _, err := file.WriteTo(out); err != nil {
		return fmt.Errorf("write excel change log: %w", err)
	}
	return nil
}

func tallyRows(summary *Summary) [][]any {
	rows := [][]any{{"Column", "Corrections"}}
	for _, tally := range summary.tallies {
		rows = append(rows, []any{tally.Label, tally.Count})
	}
	return rows
}
