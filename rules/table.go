package rules

import (
	"fmt"
	"sort"
	"strings"

	"fleetcheck/internal/textnorm"
)

// Entry binds a column key to a rule. A key ending in "*" matches every
// column key with that prefix.
type Entry struct {
	Key  string
	Rule Rule
}

// Table is the column-key to rule dispatch table. Exact keys win over
// prefixes; among prefixes the longest wins.
type Table struct {
	exact    map[string]Rule
	prefixes []Entry
}

// NewTable builds a table; later entries replace earlier ones with the same key.
func NewTable(entries []Entry) (*Table, error) {
	t := &Table{exact: make(map[string]Rule, len(entries))}
	prefixIndex := make(map[string]int)

	for i, entry := range entries {
		if entry.Rule == nil {
			return nil, fmt.Errorf("rule table entry %d (%q) has no rule", i, entry.Key)
		}
		key, prefix := SplitKey(entry.Key)
		if key == "" {
			return nil, fmt.Errorf("rule table entry %d has an empty key", i)
		}
		if !prefix {
			t.exact[key] = entry.Rule
			continue
		}
		if existing, ok := prefixIndex[key]; ok {
			t.prefixes[existing].Rule = entry.Rule
			continue
		}
		prefixIndex[key] = len(t.prefixes)
		t.prefixes = append(t.prefixes, Entry{Key: key, Rule: entry.Rule})
	}

	sort.SliceStable(t.prefixes, func(i, j int) bool {
		return len(t.prefixes[i].Key) > len(t.prefixes[j].Key)
	})
	return t, nil
}

// Lookup resolves a normalized column key (see textnorm.Key).
func (t *Table) Lookup(key string) (Rule, bool) {
	if key == "" {
		return nil, false
	}
	if rule, ok := t.exact[key]; ok {
		return rule, true
	}
	for _, entry := range t.prefixes {
		if strings.HasPrefix(key, entry.Key) {
			return entry.Rule, true
		}
	}
	return nil, false
}

// Entries lists the table sorted by key, prefixes rendered with a trailing "*".
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.exact)+len(t.prefixes))
	for key, rule := range t.exact {
		out = append(out, Entry{Key: key, Rule: rule})
	}
	for _, entry := range t.prefixes {
		out = append(out, Entry{Key: entry.Key + "*", Rule: entry.Rule})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

// SplitKey normalizes a configured column key and reports whether it is a
// prefix key (trailing "*"). A prefix keeps its trailing separator.
func SplitKey(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasSuffix(trimmed, "*") {
		base := textnorm.Key(strings.TrimSuffix(trimmed, "*"))
		if base == "" {
			return "", true
		}
		// keep the separator so "vto-*" does not match "vtotal"
		if strings.HasSuffix(strings.TrimSuffix(trimmed, "*"), "-") {
			base += "-"
		}
		return base, true
	}
	return textnorm.Key(trimmed), false
}
