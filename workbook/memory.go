package workbook

import (
	"fmt"
	"slices"
)

// Memory is an in-memory Sheet. It records highlights and appended sheets so
// callers can inspect what a run did.
type Memory struct {
	cells       [][]Cell
	highlighted map[[2]int]bool
	sheets      map[string][][]any
	order       []string
}

// NewMemory builds a sheet from text rows; Raw equals Text for every cell.
func NewMemory(rows [][]string) *Memory {
	cells := make([][]Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]Cell, len(row))
		for j, value := range row {
			cells[i][j] = Cell{Text: value, Raw: value}
		}
	}
	return NewMemoryCells(cells)
}

func NewMemoryCells(cells [][]Cell) *Memory {
	return &Memory{
		cells:       cells,
		highlighted: make(map[[2]int]bool),
		sheets:      make(map[string][][]any),
	}
}

func (m *Memory) Rows() ([][]Cell, error) {
	out := make([][]Cell, len(m.cells))
	for i, row := range m.cells {
		out[i] = slices.Clone(row)
	}
	return out, nil
}

func (m *Memory) SetValue(row, col int, value any) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("invalid cell (%d,%d)", row, col)
	}
	for len(m.cells) < row {
		m.cells = append(m.cells, nil)
	}
	for len(m.cells[row-1]) < col {
		m.cells[row-1] = append(m.cells[row-1], Cell{})
	}
	text := fmt.Sprint(value)
	m.cells[row-1][col-1] = Cell{Text: text, Raw: text}
	return nil
}

func (m *Memory) Highlight(row, col int) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("invalid cell (%d,%d)", row, col)
	}
	m.highlighted[[2]int{row, col}] = true
	return nil
}

func (m *Memory) AppendSheet(name string, rows [][]any) error {
	if _, exists := m.sheets[name]; !exists {
		m.order = append(m.order, name)
	}
	copied := make([][]any, len(rows))
	for i, row := range rows {
		copied[i] = slices.Clone(row)
	}
	m.sheets[name] = copied
	return nil
}

// Value returns the displayed text at (row, col) or "" when out of range.
func (m *Memory) Value(row, col int) string {
	if row < 1 || row > len(m.cells) || col < 1 || col > len(m.cells[row-1]) {
		return ""
	}
	return m.cells[row-1][col-1].Text
}

func (m *Memory) Highlighted(row, col int) bool {
	return m.highlighted[[2]int{row, col}]
}

func (m *Memory) HighlightCount() int {
	return len(m.highlighted)
}

func (m *Memory) Sheet(name string) ([][]any, bool) {
	rows, ok := m.sheets[name]
	return rows, ok
}

func (m *Memory) SheetNames() []string {
	return slices.Clone(m.order)
}
