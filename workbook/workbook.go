// Package workbook reads and annotates the spreadsheet being validated.
package workbook

import (
	"errors"
	"path/filepath"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported workbook format")

// Cell carries the displayed text of a cell and its stored value. The two
// differ for dates (serial numbers) and numbers shown with a format.
type Cell struct {
	Text string
	Raw  string
}

// Sheet is the single active sheet of a workbook. Rows and columns are 1-based.
type Sheet interface {
	Rows() ([][]Cell, error)
	SetValue(row, col int, value any) error
	Highlight(row, col int) error
	AppendSheet(name string, rows [][]any) error
}

// Style is the highlight applied to cells that failed validation. Colors are
// RGB hex without the leading '#'.
type Style struct {
	Fill string
	Font string
}

func DefaultStyle() Style {
	return Style{Fill: "FF0000", Font: "FFFFFF"}
}

// Format returns the normalized input format for a file name: "xlsx" or "csv".
func Format(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return "xlsx", nil
	case ".csv":
		return "csv", nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// OutputName returns the path of the annotated copy of path: same directory,
// stem plus suffix, always .xlsx.
func OutputName(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ".xlsx"
}
