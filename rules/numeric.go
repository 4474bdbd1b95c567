package rules

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"fleetcheck/internal/timeutil"
)

const (
	ReasonInvalidInteger = "Invalid integer"
	ReasonInvalidDecimal = "Invalid decimal"
	ReasonInvalidYear    = "Invalid year"
)

// Integer parses through a float and truncates, so "3.0" is accepted.
type Integer struct{}

func (Integer) Kind() Kind { return KindInteger }

func (Integer) Apply(value Value, _ *State) Result {
	if value.IsBlank() {
		return valid(value.Text)
	}
	number, err := ParseNumber(value.Basis(KindInteger))
	if err != nil || math.Abs(number) >= 1<<63 {
		return invalid(value.Text, ReasonInvalidInteger)
	}
	return valid(strconv.FormatInt(int64(number), 10))
}

// Decimal rounds to Precision fractional digits.
type Decimal struct {
	Precision int
}

func (Decimal) Kind() Kind { return KindDecimal }

func (d Decimal) Apply(value Value, _ *State) Result {
	if value.IsBlank() {
		return valid(value.Text)
	}
	number, err := ParseNumber(value.Basis(KindDecimal))
	if err != nil {
		return invalid(value.Text, ReasonInvalidDecimal)
	}
	scale := math.Pow10(d.Precision)
	rounded := math.Round(number*scale) / scale
	return valid(strconv.FormatFloat(rounded, 'f', -1, 64))
}

const (
	minYear = 1900
	maxYear = 2999
)

var (
	yearPattern     = regexp.MustCompile(`\b(1[89]\d{2}|2\d{3})\b`)
	twoDigitPattern = regexp.MustCompile(`^\d{2}$`)
)

// Year accepts a bare number or extracts the year from a date-like value.
type Year struct{}

func (Year) Kind() Kind { return KindYear }

func (Year) Apply(value Value, _ *State) Result {
	if value.IsBlank() {
		return valid(value.Text)
	}

	basis := value.Basis(KindYear)
	if number, err := ParseNumber(basis); err == nil {
		if year, ok := numericYear(basis, number); ok {
			return valid(strconv.Itoa(year))
		}
		if when, ok := nativeDate(value); ok {
			return valid(strconv.Itoa(when.Year()))
		}
		return invalid(value.Text, ReasonInvalidYear)
	}
	if when, err := ParseDate(value.Text); err == nil {
		return valid(strconv.Itoa(when.Year()))
	}
	if match := yearPattern.FindString(value.Text); match != "" {
		return valid(match)
	}
	return invalid(value.Text, ReasonInvalidYear)
}

// numericYear reads a bare number as a year. Only a two-digit token is
// expanded, so "19" is 2019 while "0" stays out of range.
func numericYear(token string, number float64) (int, bool) {
	if math.Abs(number) > maxYear {
		return 0, false
	}
	year := int(number)
	if twoDigitPattern.MatchString(strings.TrimSpace(token)) {
		year = timeutil.ExpandYear(year)
	}
	return year, year >= minYear && year <= maxYear
}

// ParseNumber accepts "1234", "1234.5" and decimal-comma input such as
// "1.234,5".
func ParseNumber(raw string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if cleaned == "" {
		return 0, fmt.Errorf("empty number")
	}
	if strings.Contains(cleaned, ",") {
		if strings.Contains(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	number, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", raw, err)
	}
	if math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, fmt.Errorf("number %q is not finite", raw)
	}
	return number, nil
}
