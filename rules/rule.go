// Package rules holds the per-column validation and normalization rules.
//
// A Rule maps one raw cell Value to a Result. Rules never panic and never
// return Go errors: every failure is reported as Result.OK == false with a
// human-readable Reason.
package rules

import (
	"fmt"
	"strings"
)

type Kind string

const (
	KindPassthrough Kind = "passthrough"
	KindUpper       Kind = "upper"
	KindTitle       Kind = "title"
	KindCapitalize  Kind = "capitalize"
	KindDomain      Kind = "domain"
	KindCategorical Kind = "categorical"
	KindInteger     Kind = "integer"
	KindDecimal     Kind = "decimal"
	KindDate        Kind = "date"
	KindYear        Kind = "year"
)

var kinds = []Kind{
	KindPassthrough,
	KindUpper,
	KindTitle,
	KindCapitalize,
	KindDomain,
	KindCategorical,
	KindInteger,
	KindDecimal,
	KindDate,
	KindYear,
}

// Kinds returns every supported rule kind in a stable order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

func ParseKind(name string) (Kind, error) {
	normalized := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, kind := range kinds {
		if kind == normalized {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unsupported rule %q", name)
}

// UsesRaw reports whether the rule reads the unformatted cell content
// (serial numbers, full precision) instead of the displayed text.
func (k Kind) UsesRaw() bool {
	switch k {
	case KindInteger, KindDecimal, KindDate, KindYear:
		return true
	default:
		return false
	}
}

// Numeric reports whether corrected values are written back as numbers.
func (k Kind) Numeric() bool {
	switch k {
	case KindInteger, KindDecimal, KindYear:
		return true
	default:
		return false
	}
}

// Value is one cell as read from the workbook. Text is the displayed value,
// Raw the stored one; they differ for formatted numbers and dates.
type Value struct {
	Text string
	Raw  string
}

func TextValue(text string) Value {
	return Value{Text: text, Raw: text}
}

// IsBlank reports empty, whitespace-only and NaN-sentinel cells.
func (v Value) IsBlank() bool {
	text := strings.TrimSpace(v.Text)
	raw := strings.TrimSpace(v.Raw)
	if text == "" && raw == "" {
		return true
	}
	return strings.EqualFold(text, "nan") && (raw == "" || strings.EqualFold(raw, "nan"))
}

// Basis is the representation a rule of the given kind compares its output
// against to decide whether the cell changed.
func (v Value) Basis(kind Kind) string {
	if kind.UsesRaw() && v.Raw != "" {
		return v.Raw
	}
	return v.Text
}

type Result struct {
	Value  string
	OK     bool
	Reason string
}

func valid(value string) Result {
	return Result{Value: value, OK: true}
}

func invalid(original, reason string) Result {
	return Result{Value: original, OK: false, Reason: reason}
}

type Rule interface {
	Kind() Kind
	Apply(value Value, state *State) Result
}

// New builds a rule of the given kind. Options are only used by categorical
// rules; cutoff is the minimum similarity for an approximate match.
func New(kind Kind, options []string, cutoff float64) (Rule, error) {
	switch kind {
	case KindPassthrough:
		return Passthrough{}, nil
	case KindUpper:
		return Upper{}, nil
	case KindTitle:
		return Title{}, nil
	case KindCapitalize:
		return Capitalize{}, nil
	case KindDomain:
		return DomainCode{}, nil
	case KindCategorical:
		return NewCategorical(options, cutoff)
	case KindInteger:
		return Integer{}, nil
	case KindDecimal:
		return Decimal{Precision: 1}, nil
	case KindDate:
		return Date{}, nil
	case KindYear:
		return Year{}, nil
	default:
		return nil, fmt.Errorf("unsupported rule %q", kind)
	}
}
