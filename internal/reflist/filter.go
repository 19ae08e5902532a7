// Package reflist rejects values that fuzzily match a reference blacklist.
package reflist

import (
	"github.com/pnt-cleaner/app/models"
	"github.com/pnt-cleaner/internal/fuzzy"
	"github.com/pnt-cleaner/internal/normalizer"
)

// List a named reference list, one term per line, in source order
type List struct {
	Name  string   `json:"name"`
	Lines []string `json:"lines"`
}

// Match a blacklist hit
type Match struct {
	Line  string  // normalized list line
	Score float64 // similarity of the normalized value against Line
}

// Filter holds the matching parameters shared by all compiled blacklists
type Filter struct {
	scorer        *fuzzy.Scorer
	threshold     float64
	minLineLength int
}

// NewFilter creates a Filter. Lines whose normalized form is shorter than
// minLineLength are ignored.
func NewFilter(scorer *fuzzy.Scorer, threshold float64, minLineLength int) *Filter {
	if scorer == nil {
		scorer = fuzzy.Default()
	}
	return &Filter{scorer: scorer, threshold: threshold, minLineLength: minLineLength}
}

// Threshold returns the rejection threshold
func (f *Filter) Threshold() float64 { return f.threshold }

// Compile normalizes the list once so it can be checked many times
func (f *Filter) Compile(list List) *Blacklist {
	lines := make([]string, 0, len(list.Lines))
	for _, line := range list.Lines {
		norm := normalizer.Normalize(line)
		if norm == "" || len(norm) < f.minLineLength {
			continue
		}
		lines = append(lines, norm)
	}
	return &Blacklist{name: list.Name, filter: f, lines: lines}
}

// Blacklist a compiled reference list. Read-only after Compile.
type Blacklist struct {
	name   string
	filter *Filter
	lines  []string
}

// Name returns the source list name
func (b *Blacklist) Name() string { return b.name }

// Len returns the number of usable lines
func (b *Blacklist) Len() int { return len(b.lines) }

// Check cleans a raw value against the blacklist:
//   - absent passes through
//   - numbers are a type mismatch
//   - a hit (exact or ratio >= threshold) is rejected
//   - otherwise the normalized value is returned
func (b *Blacklist) Check(v models.RawValue, ref models.FieldRef) (models.Value, error) {
	switch v.Kind() {
	case models.RawAbsent:
		return models.AbsentValue, nil
	case models.RawNumber:
		return models.Rejected, models.NewTypeMismatch(ref, v, "text")
	}
	s, _ := v.AsText()
	return b.CheckText(s), nil
}

// CheckText is Check for a plain string. A value that normalizes to the
// empty string is returned as such.
func (b *Blacklist) CheckText(s string) models.Value {
	norm := normalizer.Normalize(s)
	if _, hit := b.Match(norm); hit {
		return models.Rejected
	}
	return models.TextValue(norm)
}

// Match returns the first line the normalized value hits
func (b *Blacklist) Match(norm string) (Match, bool) {
	for _, line := range b.lines {
		if line == norm {
			return Match{Line: line, Score: 100}, true
		}
		if score := b.filter.scorer.Ratio(norm, line); score >= b.filter.threshold {
			return Match{Line: line, Score: score}, true
		}
	}
	return Match{}, false
}
