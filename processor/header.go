package processor

import (
	"errors"
	"fleetcheck/internal/textnorm"
	"fleetcheck/rules"
	"fleetcheck/workbook"
	"fmt"
	"strings"
)

var (
	ErrHeaderNotFound  = errors.New("header row not found")
	ErrDuplicateColumn = errors.New("duplicate column")
)

const (
	HeaderModeScan  = "scan"
	HeaderModeFixed = "fixed"
)

// HeaderPolicy decides where the header row is. Row is 1-based and only used
// in fixed mode; scan mode looks for Marker in the first ScanRows rows.
type HeaderPolicy struct {
	Mode     string
	Row      int
	Marker   string
	ScanRows int
}

func DefaultHeaderPolicy() HeaderPolicy {
	return HeaderPolicy{Mode: HeaderModeScan, Row: 1, Marker: "dominio", ScanRows: 15}
}

type Column struct {
	Index int
	Label string
	Key   string
}

// Header is the resolved header row. Columns stop at the last non-blank
// header cell.
type Header struct {
	Row     int
	Columns []Column
}

func (h Header) Width() int {
	return len(h.Columns)
}

func LocateHeader(rows [][]workbook.Cell, policy HeaderPolicy) (Header, error) {
	switch strings.ToLower(strings.TrimSpace(policy.Mode)) {
	case HeaderModeFixed:
		if policy.Row < 1 || policy.Row > len(rows) {
			return Header{}, fmt.Errorf("%w: row %d is outside the sheet (%d rows)", ErrHeaderNotFound, policy.Row, len(rows))
		}
		header := buildHeader(policy.Row, rows[policy.Row-1])
		if header.Width() == 0 {
			return Header{}, fmt.Errorf("%w: row %d is empty", ErrHeaderNotFound, policy.Row)
		}
		return header, nil
	case "", HeaderModeScan:
		marker := textnorm.Key(policy.Marker)
		if marker == "" {
			return Header{}, fmt.Errorf("header marker is empty")
		}
		limit := min(policy.ScanRows, len(rows))
		for i := 0; i < limit; i++ {
			for _, cell := range rows[i] {
				if textnorm.Key(cell.Text) == marker {
					return buildHeader(i+1, rows[i]), nil
				}
			}
		}
		return Header{}, fmt.Errorf("%w: no %q column in the first %d rows", ErrHeaderNotFound, policy.Marker, policy.ScanRows)
	default:
		return Header{}, fmt.Errorf("unsupported header mode %q (supported: scan|fixed)", policy.Mode)
	}
}

func buildHeader(rowNumber int, cells []workbook.Cell) Header {
	width := 0
	for i, cell := range cells {
		if strings.TrimSpace(cell.Text) != "" {
			width = i + 1
		}
	}

	columns := make([]Column, width)
	for i := range columns {
		label := strings.TrimSpace(cells[i].Text)
		columns[i] = Column{Index: i + 1, Label: label, Key: textnorm.Key(label)}
	}
	return Header{Row: rowNumber, Columns: columns}
}

// Binding pairs a header column with its rule; Rule is nil for columns that
// pass through unchecked.
type Binding struct {
	Column Column
	Rule   rules.Rule
}

// Bind resolves every header column against the rule table. Two columns
// whose labels normalize to the same ruled key are rejected.
func Bind(header Header, table *rules.Table) ([]Binding, error) {
	bindings := make([]Binding, 0, header.Width())
	claimed := make(map[string]Column)
	for _, column := range header.Columns {
		rule, ok := table.Lookup(column.Key)
		if !ok {
			bindings = append(bindings, Binding{Column: column})
			continue
		}
		if previous, exists := claimed[column.Key]; exists {
			return nil, fmt.Errorf(
				"%w: %q (column %d) and %q (column %d) both resolve to %q",
				ErrDuplicateColumn,
				previous.Label,
				previous.Index,
				column.Label,
				column.Index,
				column.Key,
			)
		}
		claimed[column.Key] = column
		bindings = append(bindings, Binding{Column: column, Rule: rule})
	}
	return bindings, nil
}
