package rules

import (
	"strings"
	"testing"
)

func allRules(t *testing.T) []Rule {
	t.Helper()
	out := make([]Rule, 0, len(kinds))
	for _, kind := range Kinds() {
		rule, err := New(kind, FuelOptions, DefaultCutoff)
		if err != nil {
			t.Fatalf("build %s rule: %v", kind, err)
		}
		out = append(out, rule)
	}
	return out
}

func TestRules_BlankValuesAreValidAndUnchanged(t *testing.T) {
	t.Parallel()

	blanks := []Value{
		{},
		TextValue("   "),
		TextValue("\t"),
		TextValue("NaN"),
		{Text: "nan", Raw: "nan"},
	}
	for _, rule := range allRules(t) {
		for _, blank := range blanks {
			got := rule.Apply(blank, NewState())
			if !got.OK {
				t.Fatalf("%s: blank %q flagged as error: %s", rule.Kind(), blank.Text, got.Reason)
			}
			if got.Value != blank.Text {
				t.Fatalf("%s: blank %q changed to %q", rule.Kind(), blank.Text, got.Value)
			}
		}
	}
}

func TestDomainCode_CleansAndIsIdempotent(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"AB-123":     "AB123",
		"ab 123 cd":  "AB123CD",
		" aa.000.bb": "AA000BB",
		"ABC123":     "ABC123",
	}
	for input, want := range tests {
		got := CleanDomainCode(input)
		if got != want {
			t.Fatalf("CleanDomainCode(%q): want %q, got %q", input, want, got)
		}
		if again := CleanDomainCode(got); again != got {
			t.Fatalf("CleanDomainCode not idempotent for %q: %q then %q", input, got, again)
		}
	}
}

func TestDomainCode_FlagsDuplicatesWithinRun(t *testing.T) {
	t.Parallel()

	state := NewState()
	rule := DomainCode{}

	first := rule.Apply(TextValue("AB-123"), state)
	if !first.OK || first.Value != "AB123" {
		t.Fatalf("unexpected first result: %+v", first)
	}

	second := rule.Apply(TextValue("AB 123"), state)
	if second.OK {
		t.Fatalf("expected duplicate to fail")
	}
	if second.Reason != ReasonDuplicate {
		t.Fatalf("expected reason %q, got %q", ReasonDuplicate, second.Reason)
	}
	if second.Value != "AB 123" {
		t.Fatalf("expected original value preserved, got %q", second.Value)
	}

	fresh := rule.Apply(TextValue("AB 123"), NewState())
	if !fresh.OK {
		t.Fatalf("expected new run state to accept the code, got %+v", fresh)
	}
}

func TestDomainCode_RejectsCodeWithoutAlphanumerics(t *testing.T) {
	t.Parallel()

	got := DomainCode{}.Apply(TextValue("--"), NewState())
	if got.OK || got.Reason != ReasonInvalidDomain {
		t.Fatalf("expected invalid domain code, got %+v", got)
	}
}

func TestCategorical_Matching(t *testing.T) {
	t.Parallel()

	rule, err := NewCategorical([]string{"Nafta", "Diesel", "Gas", "Electrico"}, DefaultCutoff)
	if err != nil {
		t.Fatalf("build categorical: %v", err)
	}

	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "exact folded", input: "nafta", want: "Nafta", wantOK: true},
		{name: "accents and case", input: "  ELÉCTRICO ", want: "Electrico", wantOK: true},
		{name: "near miss", input: "diesl", want: "Diesel", wantOK: true},
		{name: "unrelated", input: "xyz-unrelated", want: "xyz-unrelated"},
		{name: "too far", input: "gasoil premium", want: "gasoil premium"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := rule.Apply(TextValue(tc.input), nil)
			if got.OK != tc.wantOK {
				t.Fatalf("input %q: want ok=%v, got %+v", tc.input, tc.wantOK, got)
			}
			if got.Value != tc.want {
				t.Fatalf("input %q: want %q, got %q", tc.input, tc.want, got.Value)
			}
			if !tc.wantOK && got.Reason != ReasonInvalidOption {
				t.Fatalf("input %q: want reason %q, got %q", tc.input, ReasonInvalidOption, got.Reason)
			}
			if tc.wantOK && got.Reason != "" {
				t.Fatalf("input %q: expected empty reason, got %q", tc.input, got.Reason)
			}
		})
	}
}

func TestCategorical_TieBreaksOnListOrder(t *testing.T) {
	t.Parallel()

	rule, err := NewCategorical([]string{"Casa", "Cosa"}, 0.7)
	if err != nil {
		t.Fatalf("build categorical: %v", err)
	}
	for i := 0; i < 10; i++ {
		match, ok := rule.Match("cxsa")
		if !ok || match != "Casa" {
			t.Fatalf("expected first option to win the tie, got %q (ok=%v)", match, ok)
		}
	}
}

func TestNewCategorical_RejectsBadInput(t *testing.T) {
	t.Parallel()

	if _, err := NewCategorical(nil, DefaultCutoff); err == nil {
		t.Fatalf("expected error for empty option list")
	}
	if _, err := NewCategorical([]string{"A", " "}, DefaultCutoff); err == nil {
		t.Fatalf("expected error for blank option")
	}
	if _, err := NewCategorical([]string{"A"}, 1.5); err == nil {
		t.Fatalf("expected error for cutoff above 1")
	}
}

func TestInteger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  Value
		want   string
		wantOK bool
	}{
		{input: TextValue("100.0"), want: "100", wantOK: true},
		{input: TextValue("100"), want: "100", wantOK: true},
		{input: TextValue("12,9"), want: "12", wantOK: true},
		{input: Value{Text: "12.345", Raw: "12345"}, want: "12345", wantOK: true},
		{input: TextValue("abc"), want: "abc"},
		{input: TextValue("-12.7"), want: "-12", wantOK: true},
		{input: TextValue("1e30"), want: "1e30"},
		{input: TextValue("99999999999999999999"), want: "99999999999999999999"},
		{input: TextValue("-1e25"), want: "-1e25"},
	}

	for _, tc := range tests {
		got := Integer{}.Apply(tc.input, nil)
		if got.OK != tc.wantOK || got.Value != tc.want {
			t.Fatalf("Integer(%+v): want (%q, %v), got %+v", tc.input, tc.want, tc.wantOK, got)
		}
		if !tc.wantOK && got.Reason != ReasonInvalidInteger {
			t.Fatalf("Integer(%+v): unexpected reason %q", tc.input, got.Reason)
		}
	}
}

func TestDecimal(t *testing.T) {
	t.Parallel()

	rule := Decimal{Precision: 1}
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{input: "7.25", want: "7.3", wantOK: true},
		{input: "7,25", want: "7.3", wantOK: true},
		{input: "8", want: "8", wantOK: true},
		{input: "10.04", want: "10", wantOK: true},
		{input: "diez", want: "diez"},
	}

	for _, tc := range tests {
		got := rule.Apply(TextValue(tc.input), nil)
		if got.OK != tc.wantOK || got.Value != tc.want {
			t.Fatalf("Decimal(%q): want (%q, %v), got %+v", tc.input, tc.want, tc.wantOK, got)
		}
		if !tc.wantOK && got.Reason != ReasonInvalidDecimal {
			t.Fatalf("Decimal(%q): unexpected reason %q", tc.input, got.Reason)
		}
	}
}

func TestYear(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  Value
		want   string
		wantOK bool
	}{
		{name: "bare year", input: TextValue("2019"), want: "2019", wantOK: true},
		{name: "float year", input: TextValue("2019.0"), want: "2019", wantOK: true},
		{name: "two digit", input: TextValue("19"), want: "2019", wantOK: true},
		{name: "date string", input: TextValue("15/03/2019"), want: "2019", wantOK: true},
		{name: "serial date", input: Value{Text: "03-15-19", Raw: "43539"}, want: "2019", wantOK: true},
		{name: "embedded year", input: TextValue("modelo 2018 full"), want: "2018", wantOK: true},
		{name: "two digit with zero", input: TextValue("05"), want: "2005", wantOK: true},
		{name: "out of range", input: TextValue("45306"), want: "45306"},
		{name: "zero is not a short year", input: TextValue("0"), want: "0"},
		{name: "single digit", input: TextValue("7"), want: "7"},
		{name: "huge number", input: TextValue("1e30"), want: "1e30"},
		{name: "garbage", input: TextValue("nuevo"), want: "nuevo"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Year{}.Apply(tc.input, nil)
			if got.OK != tc.wantOK || got.Value != tc.want {
				t.Fatalf("Year(%+v): want (%q, %v), got %+v", tc.input, tc.want, tc.wantOK, got)
			}
		})
	}
}

func TestDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  Value
		want   string
		wantOK bool
	}{
		{name: "spanish long form", input: TextValue("15 de enero de 2023"), want: "15/01/2023", wantOK: true},
		{name: "iso timestamp", input: TextValue("2023-01-15 00:00:00"), want: "15/01/2023", wantOK: true},
		{name: "iso date", input: TextValue("2023-01-15"), want: "15/01/2023", wantOK: true},
		{name: "day first short", input: TextValue("5/1/23"), want: "05/01/2023", wantOK: true},
		{name: "dotted", input: TextValue("05.01.2023"), want: "05/01/2023", wantOK: true},
		{name: "english abbreviation", input: TextValue("15-Jan-2023"), want: "15/01/2023", wantOK: true},
		{name: "spanish abbreviation", input: TextValue("3 ago 2024"), want: "03/08/2024", wantOK: true},
		{name: "full english with del", input: TextValue("1 del September 2024"), want: "01/09/2024", wantOK: true},
		{name: "month first fallback", input: TextValue("jan 15 2023"), want: "15/01/2023", wantOK: true},
		{name: "month and year", input: TextValue("enero 2023"), want: "01/01/2023", wantOK: true},
		{name: "numeric month and year", input: TextValue("03/2024"), want: "01/03/2024", wantOK: true},
		{name: "serial date", input: Value{Text: "01-15-23", Raw: "44941"}, want: "15/01/2023", wantOK: true},
		{name: "already normalized", input: TextValue("15/01/2023"), want: "15/01/2023", wantOK: true},
		{name: "impossible date", input: TextValue("31/02/2023"), want: "31/02/2023"},
		{name: "garbage", input: TextValue("pronto"), want: "pronto"},
		{name: "bad month year", input: TextValue("13/2023"), want: "13/2023"},
		{name: "five digit year", input: TextValue("15/01/20230"), want: "15/01/20230"},
		{name: "three digit year", input: TextValue("15/01/123"), want: "15/01/123"},
		{name: "three digit month year", input: TextValue("03/123"), want: "03/123"},
		{name: "iso year below 1000", input: TextValue("0999-01-15"), want: "0999-01-15"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Date{}.Apply(tc.input, nil)
			if got.OK != tc.wantOK || got.Value != tc.want {
				t.Fatalf("Date(%+v): want (%q, %v), got %+v", tc.input, tc.want, tc.wantOK, got)
			}
			if !tc.wantOK && !strings.HasPrefix(got.Reason, "Invalid date: ") {
				t.Fatalf("Date(%+v): unexpected reason %q", tc.input, got.Reason)
			}
		})
	}
}

func TestDate_MonthYearFailureCarriesSuggestion(t *testing.T) {
	t.Parallel()

	got := Date{}.Apply(TextValue("13/2023"), nil)
	if got.OK {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(got.Reason, "suggestion: 01/13/2023") {
		t.Fatalf("expected suggestion in reason, got %q", got.Reason)
	}
}

func TestTextRules(t *testing.T) {
	t.Parallel()

	if got := (Title{}).Apply(TextValue("toyota HILUX"), nil); got.Value != "Toyota Hilux" {
		t.Fatalf("unexpected title: %+v", got)
	}
	if got := (Upper{}).Apply(TextValue(" 9bwzzz377vt004251 "), nil); got.Value != "9BWZZZ377VT004251" {
		t.Fatalf("unexpected upper: %+v", got)
	}
	if got := (Capitalize{}).Apply(TextValue("revisar frenos"), nil); got.Value != "Revisar frenos" {
		t.Fatalf("unexpected capitalize: %+v", got)
	}
	if got := (Passthrough{}).Apply(TextValue(" keep "), nil); got.Value != " keep " {
		t.Fatalf("unexpected passthrough: %+v", got)
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	kind, err := ParseKind(" Categorical ")
	if err != nil || kind != KindCategorical {
		t.Fatalf("expected categorical, got %q (%v)", kind, err)
	}
	if _, err := ParseKind("fuzzy"); err == nil {
		t.Fatalf("expected error for unknown rule")
	}
}
