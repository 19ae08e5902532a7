package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// placeholder rune used to protect letters from diacritic stripping
const placeholder = '\uE000'

// StripDiacritics removes combining marks (Unicode Mn) after NFD decomposition
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	out, _, _ := transform.String(t, s)
	return out
}

// StripDiacriticsExcept strips diacritics but keeps each rune in keep
// intact (e.g. Ñ in Spanish street names). Input is composed first so a
// decomposed N + tilde is treated as Ñ.
func StripDiacriticsExcept(s string, keep ...rune) string {
	if len(keep) == 0 {
		return StripDiacritics(s)
	}
	s = norm.NFC.String(s)

	// 1. Protect kept runes with private-use placeholders
	protected := make(map[rune]rune, len(keep))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if idx := indexRune(keep, r); idx >= 0 {
			ph := placeholder + rune(idx)
			protected[ph] = r
			b.WriteRune(ph)
			continue
		}
		b.WriteRune(r)
	}

	// 2. Strip everything else
	stripped := StripDiacritics(b.String())

	// 3. Restore
	return strings.Map(func(r rune) rune {
		if orig, ok := protected[r]; ok {
			return orig
		}
		return r
	}, stripped)
}

// RemovePunctuation drops every rune of the Unicode P categories
func RemovePunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return r
	}, s)
}

// isMn reports whether r is a nonspacing mark
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

func indexRune(rs []rune, r rune) int {
	for i, x := range rs {
		if x == r {
			return i
		}
	}
	return -1
}
