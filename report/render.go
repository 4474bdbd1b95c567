package report

import (
	"fleetcheck/outcome"
	"fleetcheck/workbook"
	"fmt"
	"strconv"
)

const (
	ErrorSheet  = "Log de Errores"
	ChangeSheet = "Resumen de Cambios"
)

var (
	errorLogHeader  = []any{"Row", "Column", "Original Value", "Reason"}
	changeLogHeader = []any{"Row", "Column", "Original Value", "Corrected Value"}
)

type RenderOptions struct {
	ErrorLog  bool
	ChangeLog bool
}

// Render writes corrected values back, highlights errored cells and appends
// the requested log sheets. Rendering the same summary again yields the same
// workbook contents.
func Render(sheet workbook.Sheet, summary *Summary, opts RenderOptions) error {
	for _, cell := range summary.outcomes {
		switch cell.Status {
		case outcome.Corrected:
			if err := sheet.SetValue(cell.Row, cell.Column, CellValue(cell)); err != nil {
				return fmt.Errorf("write correction at row %d column %q: %w", cell.Row, cell.Label, err)
			}
		case outcome.Errored:
			if err := sheet.Highlight(cell.Row, cell.Column); err != nil {
				return fmt.Errorf("highlight error at row %d column %q: %w", cell.Row, cell.Label, err)
			}
		}
	}

	if opts.ErrorLog {
		if err := sheet.AppendSheet(ErrorSheet, errorRows(summary)); err != nil {
			return fmt.Errorf("append error log: %w", err)
		}
	}
	if opts.ChangeLog {
		if err := sheet.AppendSheet(ChangeSheet, correctionRows(summary)); err != nil {
			return fmt.Errorf("append change log: %w", err)
		}
	}
	return nil
}

// CellValue is the value written back for a corrected cell: numeric columns
// are written as numbers, everything else as text.
func CellValue(cell outcome.Cell) any {
	if !cell.Numeric {
		return cell.New
	}
	if whole, err := strconv.ParseInt(cell.New, 10, 64); err == nil {
		return whole
	}
	if number, err := strconv.ParseFloat(cell.New, 64); err == nil {
		return number
	}
	return cell.New
}

func errorRows(summary *Summary) [][]any {
	rows := make([][]any, 0, len(summary.errors)+1)
	rows = append(rows, errorLogHeader)
	for _, cell := range summary.errors {
		rows = append(rows, []any{cell.Row, cell.Label, cell.Original, cell.Reason})
	}
	return rows
}

func correctionRows(summary *Summary) [][]any {
	rows := make([][]any, 0, len(summary.corrections)+1)
	rows = append(rows, changeLogHeader)
	for _, cell := range summary.corrections {
		rows = append(rows, []any{cell.Row, cell.Label, cell.Original, CellValue(cell)})
	}
	return rows
}
