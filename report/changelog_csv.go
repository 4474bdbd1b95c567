package report

import (
	"encoding/csv"
	"fleetcheck/outcome"
	"fmt"
	"io"
	"strconv"
)

// CSVChangeLogWriter writes corrections and errors as one table, in
// traversal order.
type CSVChangeLogWriter struct{}

func (w *CSVChangeLogWriter) Write(out io.Writer, summary *Summary) error {
	writer := csv.NewWriter(out)

	headers := []string{"Row", "Column", "Status", "Original Value", "Corrected Value", "Reason"}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, cell := range summary.outcomes {
		if cell.Status == outcome.Unchanged {
			continue
		}
		corrected := ""
		if cell.Status == outcome.Corrected {
			corrected = cell.New
		}
		row := []string{
			strconv.Itoa(cell.Row),
			cell.Label,
			cell.Status.String(),
			cell.Original,
			corrected,
			cell.Reason,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}
