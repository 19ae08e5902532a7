package validators

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pnt-cleaner/app/models"
	"github.com/pnt-cleaner/internal/catalog"
	"github.com/pnt-cleaner/internal/normalizer"
	"github.com/pnt-cleaner/internal/reflist"
)

var (
	singleAlnum   = regexp.MustCompile(`^[A-Z0-9]$`)
	decimalLike   = regexp.MustCompile(`^\d+\.\d+$`)
	numericString = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// numberOpts keeps hyphens in house numbers such as 12-B
var numberOpts = normalizer.Options{AllowedChars: "-"}

// Enumeration accepts a value whose normalized form equals a normalized term
// and returns that normalized form.
func Enumeration(terms []string) Func {
	set := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		set[normalizer.Normalize(term)] = struct{}{}
	}

	return textOnly(func(s string) models.Value {
		norm := normalizer.Normalize(s)
		if _, ok := set[norm]; ok && norm != "" {
			return models.TextValue(norm)
		}
		return models.Rejected
	})
}

// StreetName uppercases, strips diacritics except Ñ, drops Unicode
// punctuation and collapses whitespace. A single character must be
// alphanumeric. Numbers pass through as text.
func StreetName() Func {
	return func(v models.RawValue, _ models.FieldRef) (models.Value, error) {
		switch v.Kind() {
		case models.RawAbsent:
			return models.AbsentValue, nil
		case models.RawNumber:
			return models.TextValue(v.String()), nil
		}

		s, _ := v.AsText()
		upper := strings.ToUpper(strings.TrimSpace(s))
		switch utf8.RuneCountInString(upper) {
		case 0:
			return models.Rejected, nil
		case 1:
			if !singleAlnum.MatchString(upper) {
				return models.Rejected, nil
			}
			return models.TextValue(upper), nil
		}

		cleaned := normalizer.StripDiacriticsExcept(upper, 'Ñ')
		cleaned = normalizer.CollapseSpaces(normalizer.RemovePunctuation(cleaned))
		return textValueOrReject(cleaned), nil
	}
}

// ExteriorNumber accepts a house number containing at least one digit
func ExteriorNumber() Func {
	return textOrNumber(func(s string) models.Value {
		norm := normalizer.NormalizeWith(s, numberOpts)
		if normalizer.HasDigit(norm) {
			return models.TextValue(norm)
		}
		return models.Rejected
	})
}

// InteriorNumber is ExteriorNumber that also keeps short letters-only tokens
// (e.g. "B") unless they are a known "no number" marker.
func InteriorNumber(rejections []string) Func {
	rejected := make(map[string]struct{}, len(rejections))
	for _, r := range rejections {
		rejected[normalizer.Normalize(r)] = struct{}{}
	}

	return textOrNumber(func(s string) models.Value {
		norm := normalizer.NormalizeWith(s, numberOpts)
		if normalizer.HasDigit(norm) {
			return models.TextValue(norm)
		}
		if norm != "" && len(norm) < 3 && isLetters(norm) {
			if _, bad := rejected[norm]; !bad {
				return models.TextValue(norm)
			}
		}
		return models.Rejected
	})
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// PostalCode accepts five-digit codes. A decimal-looking value such as
// "230.00" has its separator removed first.
func PostalCode() Func {
	return textOrNumber(func(s string) models.Value {
		if decimalLike.MatchString(s) {
			digits := strings.Replace(s, ".", "", 1)
			if len(digits) == 5 {
				return models.TextValue(digits)
			}
			return models.Rejected
		}
		if _, err := strconv.Atoi(s); err == nil && len(s) == 5 {
			return models.TextValue(s)
		}
		return models.Rejected
	})
}

// KeyLookup resolves a municipality or state to its catalog key:
//  1. numeric values are reduced to their integer part
//  2. the value goes through the blacklist
//  3. a catalog name equal to the filtered value yields its key
//  4. otherwise the filtered value is returned unchanged
func KeyLookup(blacklist *reflist.Blacklist, idx *catalog.Index) Func {
	return textOrNumber(func(s string) models.Value {
		filtered := blacklist.CheckText(extractInteger(s))
		if filtered.IsRejected() {
			return models.Rejected
		}
		if key, ok := idx.KeyFor(filtered.Text); ok {
			return models.TextValue(key)
		}
		return filtered
	})
}

// extractInteger returns the integer part of a numeric string without
// leading zeros; other strings are returned unchanged
func extractInteger(s string) string {
	trimmed := strings.TrimSpace(s)
	if !numericString.MatchString(trimmed) {
		return s
	}
	intPart, _, _ := strings.Cut(trimmed, ".")
	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		return "0"
	}
	return intPart
}
