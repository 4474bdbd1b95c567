package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"fleetcheck/internal/timeutil"
)

const reasonInvalidDate = "Invalid date"

// Date normalizes expiry dates to DD/MM/YYYY. Workbook dates stored as
// serial numbers are converted directly; text goes through ParseDate.
type Date struct{}

func (Date) Kind() Kind { return KindDate }

func (Date) Apply(value Value, _ *State) Result {
	if value.IsBlank() {
		return valid(value.Text)
	}
	if when, ok := nativeDate(value); ok {
		return valid(timeutil.FormatDayFirst(when))
	}

	when, err := ParseDate(value.Text)
	if err != nil {
		return invalid(value.Text, fmt.Sprintf("%s: %v", reasonInvalidDate, err))
	}
	return valid(timeutil.FormatDayFirst(when))
}

// nativeDate reports cells whose stored value is a serial number displayed
// through a date format.
func nativeDate(value Value) (time.Time, bool) {
	raw := strings.TrimSpace(value.Raw)
	text := strings.TrimSpace(value.Text)
	if raw == "" || raw == text {
		return time.Time{}, false
	}
	// a number shown with a numeric format is not a date
	if _, err := ParseNumber(text); err == nil {
		return time.Time{}, false
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return time.Time{}, false
	}
	when, err := timeutil.FromExcelSerial(serial)
	if err != nil {
		return time.Time{}, false
	}
	return when, true
}

type monthName struct {
	name   string
	number string
}

// monthNames is ordered longest first so "agosto" is replaced before "ago".
var monthNames = buildMonthNames(map[string]string{
	"enero": "01", "ene": "01", "january": "01", "jan": "01",
	"febrero": "02", "feb": "02", "february": "02",
	"marzo": "03", "mar": "03", "march": "03",
	"abril": "04", "abr": "04", "april": "04", "apr": "04",
	"mayo": "05", "may": "05",
	"junio": "06", "jun": "06", "june": "06",
	"julio": "07", "jul": "07", "july": "07",
	"agosto": "08", "ago": "08", "august": "08", "aug": "08",
	"septiembre": "09", "setiembre": "09", "sep": "09", "set": "09", "september": "09", "sept": "09",
	"octubre": "10", "oct": "10", "october": "10",
	"noviembre": "11", "nov": "11", "november": "11",
	"diciembre": "12", "dic": "12", "december": "12", "dec": "12",
})

func buildMonthNames(byName map[string]string) []monthName {
	out := make([]monthName, 0, len(byName))
	for name, number := range byName {
		out = append(out, monthName{name: name, number: number})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].name) != len(out[j].name) {
			return len(out[i].name) > len(out[j].name)
		}
		return out[i].name < out[j].name
	})
	return out
}

var (
	connectivePattern = regexp.MustCompile(`\b(del|de)\b`)
	timeSuffixPattern = regexp.MustCompile(`[\st]\d{1,2}:\d{2}(:\d{2}(\.\d+)?)?\s*$`)
	separatorPattern  = regexp.MustCompile(`[\s\-.,/]+`)
	digitsPattern     = regexp.MustCompile(`^\d+$`)
)

// ParseDate reads day-first dates written with numbers or Spanish/English
// month names. Month+year values are completed with day 01.
func ParseDate(input string) (time.Time, error) {
	cleaned := strings.ToLower(strings.TrimSpace(input))
	if cleaned == "" {
		return time.Time{}, fmt.Errorf("empty value")
	}
	cleaned = timeSuffixPattern.ReplaceAllString(cleaned, "")
	cleaned = connectivePattern.ReplaceAllString(cleaned, " ")
	for _, month := range monthNames {
		cleaned = strings.ReplaceAll(cleaned, month.name, " "+month.number+" ")
	}
	cleaned = strings.Trim(separatorPattern.ReplaceAllString(cleaned, "/"), "/")

	parts := strings.Split(cleaned, "/")
	for _, part := range parts {
		if !digitsPattern.MatchString(part) {
			return time.Time{}, fmt.Errorf("unrecognized format %q", input)
		}
	}

	switch len(parts) {
	case 3:
		return parseFullDate(parts, input)
	case 2:
		return parseMonthYear(parts, input)
	default:
		return time.Time{}, fmt.Errorf("unrecognized format %q", input)
	}
}

func parseFullDate(parts []string, input string) (time.Time, error) {
	numbers := atoiAll(parts)
	if len(parts[0]) == 4 {
		year, ok := yearToken(parts[0], numbers[0])
		if !ok {
			return time.Time{}, fmt.Errorf("year %q is out of range", parts[0])
		}
		if when, ok := timeutil.CalendarDate(year, numbers[1], numbers[2]); ok {
			return when, nil
		}
		return time.Time{}, fmt.Errorf("no such calendar date %q", input)
	}

	year, ok := yearToken(parts[2], numbers[2])
	if !ok {
		return time.Time{}, fmt.Errorf("year %q must have 2 or 4 digits", parts[2])
	}
	if when, ok := timeutil.CalendarDate(year, numbers[1], numbers[0]); ok {
		return when, nil
	}
	// month-first fallback, e.g. "jan 15 2023"
	if when, ok := timeutil.CalendarDate(year, numbers[0], numbers[1]); ok {
		return when, nil
	}
	return time.Time{}, fmt.Errorf("no such calendar date %q", input)
}

func parseMonthYear(parts []string, input string) (time.Time, error) {
	numbers := atoiAll(parts)
	month, yearIndex := numbers[0], 1
	if len(parts[0]) == 4 {
		month, yearIndex = numbers[1], 0
	}
	year, ok := yearToken(parts[yearIndex], numbers[yearIndex])
	if !ok {
		return time.Time{}, fmt.Errorf("year %q must have 2 or 4 digits", parts[yearIndex])
	}

	if when, ok := timeutil.CalendarDate(year, month, 1); ok {
		return when, nil
	}
	suggestion := fmt.Sprintf("01/%02d/%04d", month, year)
	return time.Time{}, fmt.Errorf("month/year value %q is not a date (suggestion: %s)", input, suggestion)
}

// yearToken accepts two-digit years, expanded, and four-digit years from 1000.
func yearToken(part string, value int) (int, bool) {
	switch len(part) {
	case 2:
		return timeutil.ExpandYear(value), true
	case 4:
		return value, value >= 1000
	default:
		return 0, false
	}
}

func atoiAll(parts []string) []int {
	out := make([]int, len(parts))
	for i, part := range parts {
		// parts are validated as digits; overflow maps to an invalid date
		value, err := strconv.Atoi(part)
		if err != nil {
			value = -1
		}
		out[i] = value
	}
	return out
}
