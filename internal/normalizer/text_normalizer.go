package normalizer

import (
	"strings"
	"unicode"
)

// Options tunes Normalize
type Options struct {
	AllowedChars     string // extra characters kept besides A-Z, 0-9 and whitespace
	ReplaceWithSpace string // characters turned into a space before filtering
}

// Normalize canonicalizes free text for comparison:
//  1. uppercase
//  2. strip diacritics
//  3. filter to A-Z, 0-9 and whitespace
//  4. collapse whitespace and trim
func Normalize(value string) string {
	return NormalizeWith(value, Options{})
}

// NormalizeWith is Normalize with extra allowed and replace-with-space characters.
// The result is idempotent under the same options.
func NormalizeWith(value string, opts Options) string {
	// 1. Uppercase then strip diacritics (É -> E, Ñ -> N)
	s := StripDiacritics(strings.ToUpper(value))

	// 2-3. Replace separators, drop disallowed characters
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if opts.ReplaceWithSpace != "" && strings.ContainsRune(opts.ReplaceWithSpace, r) {
			b.WriteByte(' ')
			continue
		}
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(r)
		case opts.AllowedChars != "" && strings.ContainsRune(opts.AllowedChars, r):
			b.WriteRune(r)
		}
	}

	// 4. Collapse whitespace
	return CollapseSpaces(b.String())
}

// NormalizeAll normalizes every element, dropping nothing
func NormalizeAll(values []string, opts Options) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = NormalizeWith(v, opts)
	}
	return out
}

// CollapseSpaces trims s and collapses whitespace runs into one space
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// HasDigit reports whether s contains an ASCII or Unicode digit
func HasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
