package web

import (
	"fleetcheck/outcome"
	"fleetcheck/report"
	"fleetcheck/storage"
	"time"
)

type CellRow struct {
	Row       int    `json:"row"`
	Column    string `json:"column"`
	Original  string `json:"original"`
	Corrected string `json:"corrected,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type ColumnRow struct {
	Column      string `json:"column"`
	Corrections int    `json:"corrections"`
}

type RunRow struct {
	ID              string
	Source          string
	StartedAt       time.Time
	Duration        time.Duration
	HeaderRow       int
	ErrorCount      int
	CorrectionCount int
}

// BuildCellRows converts outcomes into table rows, keeping their order.
func BuildCellRows(cells []outcome.Cell) []CellRow {
	out := make([]CellRow, 0, len(cells))
	for _, cell := range cells {
		row := CellRow{
			Row:      cell.Row,
			Column:   cell.Label,
			Original: cell.Original,
		}
		switch cell.Status {
		case outcome.Corrected:
			row.Corrected = cell.New
		case outcome.Errored:
			row.Reason = cell.Reason
		}
		out = append(out, row)
	}
	return out
}

func BuildColumnRows(tallies []report.ColumnTally) []ColumnRow {
	out := make([]ColumnRow, 0, len(tallies))
	for _, tally := range tallies {
		out = append(out, ColumnRow{Column: tally.Label, Corrections: tally.Count})
	}
	return out
}

func BuildRunRows(records []storage.RunRecord) []RunRow {
	out := make([]RunRow, 0, len(records))
	for _, record := range records {
		duration := record.FinishedAt.Sub(record.StartedAt)
		if duration < 0 {
			duration = 0
		}
		out = append(out, RunRow{
			ID:              record.ID,
			Source:          record.Source,
			StartedAt:       record.StartedAt,
			Duration:        duration,
			HeaderRow:       record.HeaderRow,
			ErrorCount:      record.ErrorCount,
			CorrectionCount: record.CorrectionCount,
		})
	}
	return out
}

// SplitOutcomes separates stored outcomes into the error and correction
// tables shown for a run.
func SplitOutcomes(cells []outcome.Cell) (errorRows []CellRow, correctionRows []CellRow) {
	errorCells := make([]outcome.Cell, 0, len(cells))
	correctionCells := make([]outcome.Cell, 0, len(cells))
	for _, cell := range cells {
		switch cell.Status {
		case outcome.Errored:
			errorCells = append(errorCells, cell)
		case outcome.Corrected:
			correctionCells = append(correctionCells, cell)
		}
	}
	return BuildCellRows(errorCells), BuildCellRows(correctionCells)
}
