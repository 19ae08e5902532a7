package validators

import (
	"github.com/pnt-cleaner/app/models"
	"github.com/pnt-cleaner/internal/catalog"
	"github.com/pnt-cleaner/internal/fuzzy"
	"github.com/pnt-cleaner/internal/normalizer"
	"github.com/pnt-cleaner/internal/reflist"
)

// CurrencyList spellings that map to one currency code
type CurrencyList struct {
	Code  string
	Lines []string
}

// Currency maps a value to the code of the first list holding its exact
// normalized spelling. Lists are checked in the given order.
func Currency(lists []CurrencyList) Func {
	type compiled struct {
		code  string
		terms map[string]struct{}
	}
	groups := make([]compiled, 0, len(lists))
	for _, l := range lists {
		c := compiled{code: l.Code, terms: make(map[string]struct{}, len(l.Lines))}
		for _, line := range l.Lines {
			if norm := normalizer.Normalize(line); norm != "" {
				c.terms[norm] = struct{}{}
			}
		}
		groups = append(groups, c)
	}

	return textOnly(func(s string) models.Value {
		norm := normalizer.Normalize(s)
		for _, g := range groups {
			if _, ok := g.terms[norm]; ok {
				return models.TextValue(g.code)
			}
		}
		return models.Rejected
	})
}

// KeywordGroup a canonical label and the keywords that select it
type KeywordGroup struct {
	Label    string
	Keywords []string
}

// PaymentMethod returns the label of the first group with a keyword whose
// partial ratio against the normalized value reaches threshold.
func PaymentMethod(groups []KeywordGroup, scorer *fuzzy.Scorer, threshold float64) Func {
	if scorer == nil {
		scorer = fuzzy.Default()
	}
	normalized := make([]KeywordGroup, len(groups))
	for i, g := range groups {
		normalized[i] = KeywordGroup{Label: g.Label, Keywords: normalizer.NormalizeAll(g.Keywords, normalizer.Options{})}
	}

	return textOnly(func(s string) models.Value {
		norm := normalizer.Normalize(s)
		if norm == "" {
			return models.Rejected
		}
		for _, g := range normalized {
			for _, kw := range g.Keywords {
				if scorer.PartialRatio(kw, norm) >= threshold {
					return models.TextValue(g.Label)
				}
			}
		}
		return models.Rejected
	})
}

// Country filters the value through the blacklist, maps aliases such as
// MX, then resolves it against the country catalog.
func Country(blacklist *reflist.Blacklist, aliases map[string]string, matcher catalog.Matcher, idx *catalog.Index) Func {
	normAliases := make(map[string]string, len(aliases))
	for k, v := range aliases {
		normAliases[normalizer.Normalize(k)] = normalizer.Normalize(v)
	}

	return textOnly(func(s string) models.Value {
		filtered := blacklist.CheckText(s)
		if filtered.IsRejected() {
			return models.Rejected
		}
		if canonical, ok := normAliases[filtered.Text]; ok {
			return models.TextValue(canonical)
		}
		return matcher.Resolve(filtered.Text, idx)
	})
}

// CatalogMatch resolves free text against a catalog
func CatalogMatch(matcher catalog.Matcher, idx *catalog.Index) Func {
	return textOnly(func(s string) models.Value {
		return matcher.Resolve(s, idx)
	})
}

// Blacklist rejects values hitting the list and normalizes the rest
func Blacklist(bl *reflist.Blacklist) Func {
	return bl.Check
}
