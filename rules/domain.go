package rules

import (
	"strings"
	"unicode"
)

const (
	ReasonDuplicate     = "Duplicate"
	ReasonInvalidDomain = "Invalid domain code"
)

// DomainCode cleans a plate number down to upper-case alphanumerics and
// rejects codes already seen earlier in the same run.
type DomainCode struct{}

func (DomainCode) Kind() Kind { return KindDomain }

func (DomainCode) Apply(value Value, state *State) Result {
	if value.IsBlank() {
		return valid(value.Text)
	}

	code := CleanDomainCode(value.Text)
	if code == "" {
		return invalid(value.Text, ReasonInvalidDomain)
	}
	if state != nil && !state.ClaimDomain(code) {
		return invalid(value.Text, ReasonDuplicate)
	}
	return valid(code)
}

func CleanDomainCode(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}
