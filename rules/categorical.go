package rules

import (
	"fmt"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"fleetcheck/internal/textnorm"
)

const (
	DefaultCutoff       = 0.8
	ReasonInvalidOption = "Invalid value"
)

// Categorical accepts one of a fixed list of labels. An exact match after
// folding wins; otherwise the most similar option at or above the cutoff is
// chosen, earlier options winning ties.
type Categorical struct {
	options    []string
	normalized []string
	cutoff     float64
}

func NewCategorical(options []string, cutoff float64) (*Categorical, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("categorical rule requires at least one option")
	}
	if cutoff <= 0 || cutoff > 1 {
		return nil, fmt.Errorf("categorical cutoff must be in (0, 1], got %v", cutoff)
	}

	c := &Categorical{
		options:    make([]string, 0, len(options)),
		normalized: make([]string, 0, len(options)),
		cutoff:     cutoff,
	}
	for _, option := range options {
		trimmed := strings.TrimSpace(option)
		if trimmed == "" {
			return nil, fmt.Errorf("categorical rule has an empty option")
		}
		c.options = append(c.options, trimmed)
		c.normalized = append(c.normalized, textnorm.Text(trimmed))
	}
	return c, nil
}

func (c *Categorical) Kind() Kind { return KindCategorical }

func (c *Categorical) Options() []string {
	out := make([]string, len(c.options))
	copy(out, c.options)
	return out
}

func (c *Categorical) Apply(value Value, _ *State) Result {
	if value.IsBlank() {
		return valid(value.Text)
	}
	if match, ok := c.Match(value.Text); ok {
		return valid(match)
	}
	return invalid(value.Text, ReasonInvalidOption)
}

// Match returns the canonical option for input.
func (c *Categorical) Match(input string) (string, bool) {
	needle := textnorm.Text(input)
	if needle == "" {
		return "", false
	}
	for i, candidate := range c.normalized {
		if candidate == needle {
			return c.options[i], true
		}
	}

	metric := metrics.NewLevenshtein()
	bestIndex := -1
	bestScore := 0.0
	for i, candidate := range c.normalized {
		score := strutil.Similarity(needle, candidate, metric)
		if score >= c.cutoff && score > bestScore {
			bestIndex = i
			bestScore = score
		}
	}
	if bestIndex < 0 {
		return "", false
	}
	return c.options[bestIndex], true
}
