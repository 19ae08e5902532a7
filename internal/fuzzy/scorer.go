// Package fuzzy scores string similarity on a 0-100 scale.
package fuzzy

import (
	"fmt"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
)

// Method base metric used for full-string similarity
type Method string

const (
	MethodIndel       Method = "indel"        // insertions/deletions only, substitution costs 2
	MethodLevenshtein Method = "levenshtein"  // unit-cost edit distance over the longer length
	MethodJaroWinkler Method = "jaro_winkler" // prefix-weighted Jaro similarity
)

// Mode full-string or best-window comparison
type Mode int

const (
	ModeFull Mode = iota
	ModePartial
)

// Scorer computes similarity scores. It is stateless and safe for concurrent use.
type Scorer struct {
	method Method
}

// NewScorer creates a scorer for the given base metric; empty means indel.
func NewScorer(method Method) (*Scorer, error) {
	switch method {
	case "":
		method = MethodIndel
	case MethodIndel, MethodLevenshtein, MethodJaroWinkler:
	default:
		return nil, fmt.Errorf("unknown similarity method %q", method)
	}
	return &Scorer{method: method}, nil
}

// Default returns the indel scorer
func Default() *Scorer {
	return &Scorer{method: MethodIndel}
}

// Method returns the configured base metric
func (s *Scorer) Method() Method { return s.method }

// Similarity dispatches on mode
func (s *Scorer) Similarity(a, b string, mode Mode) float64 {
	if mode == ModePartial {
		return s.PartialRatio(a, b)
	}
	return s.Ratio(a, b)
}

// Ratio scores the whole of a against the whole of b. Two empty strings score 100.
func (s *Scorer) Ratio(a, b string) float64 {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	switch s.method {
	case MethodLevenshtein:
		la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
		longest := la
		if lb > longest {
			longest = lb
		}
		d := levenshtein.ComputeDistance(a, b)
		return 100 * (1 - float64(d)/float64(longest))
	case MethodJaroWinkler:
		return 100 * smetrics.JaroWinkler(a, b, 0.7, 4)
	default:
		d := smetrics.WagnerFischer(a, b, 1, 1, 2)
		return 100 * (1 - float64(d)/float64(len(a)+len(b)))
	}
}

// PartialRatio aligns the shorter string against every window of the longer
// one, including windows cut by either edge, and returns the best Ratio.
// An empty operand scores 0 unless both are empty.
func (s *Scorer) PartialRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}

	best := s.bestWindow(short, long)
	if best < 100 && len(short) == len(long) {
		if reversed := s.bestWindow(long, short); reversed > best {
			best = reversed
		}
	}
	return best
}

// bestWindow slides needle over haystack (len(needle) <= len(haystack))
func (s *Scorer) bestWindow(needle, haystack string) float64 {
	n, h := len(needle), len(haystack)
	best := 0.0

	consider := func(window string) bool {
		if score := s.Ratio(needle, window); score > best {
			best = score
		}
		return best >= 100
	}

	// 1. Prefix windows shorter than the needle
	for i := 1; i < n; i++ {
		if consider(haystack[:i]) {
			return best
		}
	}

	// 2. Full-length windows
	for i := 0; i+n <= h; i++ {
		if consider(haystack[i : i+n]) {
			return best
		}
	}

	// 3. Suffix windows shorter than the needle
	for i := h - n + 1; i < h; i++ {
		if i <= 0 {
			continue
		}
		if consider(haystack[i:]) {
			return best
		}
	}

	return best
}
