package timeutil

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const DayFirstLayout = "02/01/2006"

func FormatDayFirst(value time.Time) string {
	return value.Format(DayFirstLayout)
}

// CalendarDate builds a date and reports false when the components overflow
// (31/02, month 13, ...).
func CalendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	value := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if value.Year() != year || int(value.Month()) != month || value.Day() != day {
		return time.Time{}, false
	}
	return value, true
}

// ExpandYear maps two-digit years onto 1970..2069.
func ExpandYear(year int) int {
	switch {
	case year >= 100:
		return year
	case year >= 70:
		return 1900 + year
	default:
		return 2000 + year
	}
}

// FromExcelSerial converts a 1900-system workbook serial number into a date.
func FromExcelSerial(serial float64) (time.Time, error) {
	if serial <= 0 {
		return time.Time{}, fmt.Errorf("serial %v is not a date", serial)
	}
	value, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, fmt.Errorf("convert serial %v: %w", serial, err)
	}
	return value, nil
}
