// Package textnorm folds case, accents and whitespace for header names and
// categorical values, and provides the presentation transforms applied to
// free-text columns.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Text trims, lower-cases, strips diacritics and collapses inner whitespace.
func Text(input string) string {
	folded := collapseSpaces(strings.ToLower(input))
	if folded == "" {
		return ""
	}
	result, _, err := transform.String(stripMarks, folded)
	if err != nil {
		return folded
	}
	return result
}

// Key turns a header label into a stable lookup key: "Nro. Chasis" and
// "nro chasis" both become "nro-chasis".
func Key(input string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range Text(input) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

func Title(input string) string {
	return cases.Title(language.Spanish).String(collapseSpaces(input))
}

func Upper(input string) string {
	return strings.ToUpper(collapseSpaces(input))
}

// CapitalizeFirst upper-cases the leading character and leaves the rest untouched.
func CapitalizeFirst(input string) string {
	trimmed := strings.TrimSpace(input)
	for i, r := range trimmed {
		return string(unicode.ToUpper(r)) + trimmed[i+len(string(r)):]
	}
	return trimmed
}

func collapseSpaces(input string) string {
	return strings.Join(strings.Fields(input), " ")
}
