package validators

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/pnt-cleaner/app/models"
)

// rfcPattern Mexican taxpayer id: 3-4 letters, YYMMDD, 3-char homoclave
const rfcPattern = `[A-ZÑ&]{3,4}\d{2}(?:0[1-9]|1[0-2])(?:0[1-9]|[12]\d|3[01])[A-Z0-9]{2}[0-9A-Z]`

var (
	rfcFull     = regexp.MustCompile(`^` + rfcPattern + `$`)
	rfcEmbedded = regexp.MustCompile(rfcPattern)
)

// RFC validates a taxpayer id.
//  1. strip whitespace and uppercase
//  2. reject when the first 3 or 4 characters are an invalid prefix
//  3. accept a full-string match as is
//  4. otherwise join every distinct embedded id with ", " in first-seen order
//  5. reject when nothing matches
func RFC(invalidPrefixes []string) Func {
	invalid := make(map[string]struct{}, len(invalidPrefixes))
	for _, p := range invalidPrefixes {
		invalid[strings.ToUpper(p)] = struct{}{}
	}

	return textOnly(func(s string) models.Value {
		value := strings.ToUpper(strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, s))
		if value == "" {
			return models.Rejected
		}

		runes := []rune(value)
		for _, n := range []int{4, 3} {
			if len(runes) >= n {
				if _, bad := invalid[string(runes[:n])]; bad {
					return models.Rejected
				}
			}
		}

		if rfcFull.MatchString(value) {
			return models.TextValue(value)
		}

		matches := rfcEmbedded.FindAllString(value, -1)
		if len(matches) == 0 {
			return models.Rejected
		}
		return models.TextValue(strings.Join(dedupe(matches), ", "))
	})
}

// dedupe removes repeats keeping first occurrence order
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
