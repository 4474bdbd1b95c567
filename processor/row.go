package processor

import (
	"fleetcheck/outcome"
	"fleetcheck/rules"
	"fleetcheck/workbook"
)

// ProcessRow validates the cells of one data row. Blank cells and cells
// beyond the header width produce no outcome.
func ProcessRow(rowNumber int, cells []workbook.Cell, bindings []Binding, state *rules.State) []outcome.Cell {
	outcomes := make([]outcome.Cell, 0, len(bindings))
	for _, binding := range bindings {
		index := binding.Column.Index - 1
		if index >= len(cells) {
			break
		}
		value := rules.Value{Text: cells[index].Text, Raw: cells[index].Raw}
		if value.IsBlank() {
			continue
		}

		cell := outcome.Cell{
			Row:      rowNumber,
			Column:   binding.Column.Index,
			Label:    binding.Column.Label,
			Original: value.Text,
			New:      value.Text,
			Status:   outcome.Unchanged,
		}
		if binding.Rule == nil {
			outcomes = append(outcomes, cell)
			continue
		}

		kind := binding.Rule.Kind()
		result := binding.Rule.Apply(value, state)
		switch {
		case !result.OK:
			cell.Status = outcome.Errored
			cell.Reason = result.Reason
		case result.Value != value.Basis(kind):
			cell.Status = outcome.Corrected
			cell.New = result.Value
			cell.Numeric = kind.Numeric()
		}
		outcomes = append(outcomes, cell)
	}
	return outcomes
}
