package workbook

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/zeebo/xxh3"
)

// Excel is a Sheet backed by an excelize workbook. Only the first sheet is
// read and annotated; log sheets are appended after it.
type Excel struct {
	file        *excelize.File
	sheet       string
	name        string
	fingerprint uint64
	style       Style
	styles      map[int]int
}

// Open reads an .xlsx/.xlsm workbook or a .csv file from disk.
func Open(path string, style Style) (*Excel, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workbook %s: %w", path, err)
	}
	return OpenReader(bytes.NewReader(content), path, style)
}

// OpenReader reads a workbook from r; name is only used to pick the format.
func OpenReader(r io.Reader, name string, style Style) (*Excel, error) {
	format, err := Format(name)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", name, err)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook %s: %w", name, err)
	}

	var file *excelize.File
	switch format {
	case "csv":
		file, err = fromCSV(bytes.NewReader(content))
	default:
		file, err = excelize.OpenReader(bytes.NewReader(content))
	}
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", name, err)
	}

	sheet := file.GetSheetName(0)
	if sheet == "" {
		_ = file.Close()
		return nil, fmt.Errorf("workbook %s has no sheets", name)
	}

	return &Excel{
		file:        file,
		sheet:       sheet,
		name:        name,
		fingerprint: xxh3.Hash(content),
		style:       style,
		styles:      make(map[int]int),
	}, nil
}

func (e *Excel) Name() string { return e.name }

func (e *Excel) SheetName() string { return e.sheet }

// Fingerprint is the xxh3 hash of the input bytes in hex.
func (e *Excel) Fingerprint() string {
	return fmt.Sprintf("%016x", e.fingerprint)
}

func (e *Excel) Rows() ([][]Cell, error) {
	formatted, err := e.file.GetRows(e.sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %s: %w", e.sheet, err)
	}
	raw, err := e.file.GetRows(e.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read raw rows from sheet %s: %w", e.sheet, err)
	}

	count := max(len(formatted), len(raw))
	rows := make([][]Cell, count)
	for i := range rows {
		var textRow, rawRow []string
		if i < len(formatted) {
			textRow = formatted[i]
		}
		if i < len(raw) {
			rawRow = raw[i]
		}
		cells := make([]Cell, max(len(textRow), len(rawRow)))
		for j := range cells {
			if j < len(textRow) {
				cells[j].Text = textRow[j]
			}
			if j < len(rawRow) {
				cells[j].Raw = rawRow[j]
			}
		}
		rows[i] = cells
	}
	return rows, nil
}

func (e *Excel) SetValue(row, col int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("resolve cell (%d,%d): %w", row, col, err)
	}
	if err := e.file.SetCellValue(e.sheet, cell, value); err != nil {
		return fmt.Errorf("set excel value %s: %w", cell, err)
	}
	return nil
}

// Highlight layers the error fill and bold font over the cell's existing
// style, so number formats and borders survive.
func (e *Excel) Highlight(row, col int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("resolve cell (%d,%d): %w", row, col, err)
	}
	current, err := e.file.GetCellStyle(e.sheet, cell)
	if err != nil {
		return fmt.Errorf("read style of %s: %w", cell, err)
	}

	styleID, ok := e.styles[current]
	if !ok {
		styleID, err = e.highlightStyle(current)
		if err != nil {
			return fmt.Errorf("create highlight style for %s: %w", cell, err)
		}
		e.styles[current] = styleID
	}

	if err := e.file.SetCellStyle(e.sheet, cell, cell, styleID); err != nil {
		return fmt.Errorf("set style of %s: %w", cell, err)
	}
	return nil
}

func (e *Excel) highlightStyle(base int) (int, error) {
	style := &excelize.Style{}
	if base != 0 {
		existing, err := e.file.GetStyle(base)
		if err != nil {
			return 0, err
		}
		if existing != nil {
			style = existing
		}
	}

	style.Fill = excelize.Fill{
		Type:    "pattern",
		Pattern: 1,
		Color:   []string{hexColor(e.style.Fill)},
	}
	font := excelize.Font{}
	if style.Font != nil {
		font = *style.Font
	}
	font.Bold = true
	font.Color = hexColor(e.style.Font)
	style.Font = &font

	return e.file.NewStyle(style)
}

// AppendSheet writes rows into a sheet named name, replacing any previous
// sheet with that name.
func (e *Excel) AppendSheet(name string, rows [][]any) error {
	if name == e.sheet {
		return fmt.Errorf("log sheet %q would replace the validated sheet", name)
	}
	index, err := e.file.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("look up sheet %s: %w", name, err)
	}
	if index >= 0 {
		if err := e.file.DeleteSheet(name); err != nil {
			return fmt.Errorf("delete sheet %s: %w", name, err)
		}
	}
	if _, err := e.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		values := row
		if err := e.file.SetSheetRow(name, cell, &values); err != nil {
			return fmt.Errorf("write row %d of sheet %s: %w", i+1, name, err)
		}
	}
	return nil
}

// SheetRows returns the formatted rows of any sheet in the workbook.
func (e *Excel) SheetRows(name string) ([][]string, error) {
	rows, err := e.file.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %s: %w", name, err)
	}
	return rows, nil
}

func (e *Excel) WriteTo(w io.Writer) (int64, error) {
	n, err := e.file.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("write workbook %s: %w", e.name, err)
	}
	return n, nil
}

func (e *Excel) SaveAs(path string) error {
	if err := e.file.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func (e *Excel) Close() error {
	return e.file.Close()
}

func hexColor(value string) string {
	return "#" + strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(value), "#"))
}
