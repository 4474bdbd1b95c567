// Package report aggregates cell outcomes into a run summary and renders it
// back into the workbook and into standalone change logs.
package report

import (
	"fleetcheck/outcome"
	"fmt"
	"slices"
	"time"
)

type ColumnTally struct {
	Label string
	Count int
}

// Summary is the finalized, read-only result of one run. Outcomes keep the
// row-then-column traversal order.
type Summary struct {
	RunID       string
	Source      string
	Fingerprint string
	HeaderRow   int
	StartedAt   time.Time
	FinishedAt  time.Time

	outcomes    []outcome.Cell
	errors      []outcome.Cell
	corrections []outcome.Cell
	tallies     []ColumnTally
}

func Finalize(outcomes []outcome.Cell) *Summary {
	summary := &Summary{
		outcomes:    slices.Clone(outcomes),
		errors:      make([]outcome.Cell, 0),
		corrections: make([]outcome.Cell, 0),
		tallies:     make([]ColumnTally, 0),
	}

	tallyIndex := make(map[string]int)
	for _, cell := range summary.outcomes {
		switch cell.Status {
		case outcome.Errored:
			summary.errors = append(summary.errors, cell)
		case outcome.Corrected:
			summary.corrections = append(summary.corrections, cell)
			index, ok := tallyIndex[cell.Label]
			if !ok {
				index = len(summary.tallies)
				tallyIndex[cell.Label] = index
				summary.tallies = append(summary.tallies, ColumnTally{Label: cell.Label})
			}
			summary.tallies[index].Count++
		}
	}
	return summary
}

func (s *Summary) Outcomes() []outcome.Cell { return slices.Clone(s.outcomes) }

func (s *Summary) Errors() []outcome.Cell { return slices.Clone(s.errors) }

func (s *Summary) Corrections() []outcome.Cell { return slices.Clone(s.corrections) }

func (s *Summary) ErrorCount() int { return len(s.errors) }

func (s *Summary) CorrectionCount() int { return len(s.corrections) }

// CorrectionsByColumn lists per-column correction counts in the order the
// columns first received a correction.
func (s *Summary) CorrectionsByColumn() []ColumnTally {
	return slices.Clone(s.tallies)
}

func (s *Summary) Headline() string {
	return fmt.Sprintf("%d errors detected, %d values auto-corrected", s.ErrorCount(), s.CorrectionCount())
}

func (s *Summary) Duration() time.Duration {
	if s.FinishedAt.Before(s.StartedAt) {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
