package rules

import "fleetcheck/internal/textnorm"

type Passthrough struct{}

func (Passthrough) Kind() Kind { return KindPassthrough }

func (Passthrough) Apply(value Value, _ *State) Result {
	return valid(value.Text)
}

type Upper struct{}

func (Upper) Kind() Kind { return KindUpper }

func (Upper) Apply(value Value, _ *State) Result {
	if value.IsBlank() {
		return valid(value.Text)
	}
	return valid(textnorm.Upper(value.Text))
}

type Title struct{}

func (Title) Kind() Kind { return KindTitle }

func (Title) Apply(value Value, _ *State) Result {
	if value.IsBlank() {
		return valid(value.Text)
	}
	return valid(textnorm.Title(value.Text))
}

type Capitalize struct{}

func (Capitalize) Kind() Kind { return KindCapitalize }

func (Capitalize) Apply(value Value, _ *State) Result {
	if value.IsBlank() {
		return valid(value.Text)
	}
	return valid(textnorm.CapitalizeFirst(value.Text))
}
