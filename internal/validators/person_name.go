package validators

import (
	"strconv"
	"strings"

	"github.com/pnt-cleaner/app/models"
	"github.com/pnt-cleaner/internal/fuzzy"
	"github.com/pnt-cleaner/internal/normalizer"
	"github.com/pnt-cleaner/internal/reflist"
)

// dotSpace turns abbreviation dots into token separators (S.A. -> S A)
var dotSpace = normalizer.Options{ReplaceWithSpace: "."}

// PersonNameConfig parameters of the person-name cleaner
type PersonNameConfig struct {
	Blacklists       []*reflist.Blacklist // every list must pass
	CompanySuffixes  []string
	Titles           []string
	SuffixThreshold  float64
	TitleThreshold   float64
	ReviewTokenLimit int    // more tokens than this flags the value for review
	ReviewPrefix     string // prepended to flagged values
	RejectAnyDigit   bool
	Scorer           *fuzzy.Scorer
}

type personName struct {
	cfg      PersonNameConfig
	suffixes []string // company suffixes in suffix form
	titles   []string // normalized titles, dots as spaces
}

// PersonName cleans contractor first names and surnames:
//  1. numeric values are rejected
//  2. every blacklist must pass
//  3. values partially matching or ending in a legal-entity suffix are rejected
//  4. leading tokens matching a professional title are popped one by one
//  5. values with too many tokens get the review prefix
func PersonName(cfg PersonNameConfig) Func {
	if cfg.Scorer == nil {
		cfg.Scorer = fuzzy.Default()
	}
	p := &personName{cfg: cfg}
	for _, s := range cfg.CompanySuffixes {
		if form := suffixForm(s); form != "" {
			p.suffixes = append(p.suffixes, form)
		}
	}
	for _, t := range cfg.Titles {
		if norm := normalizer.NormalizeWith(t, dotSpace); norm != "" {
			p.titles = append(p.titles, norm)
		}
	}

	return func(v models.RawValue, _ models.FieldRef) (models.Value, error) {
		switch v.Kind() {
		case models.RawAbsent:
			return models.AbsentValue, nil
		case models.RawNumber:
			return models.Rejected, nil
		}
		s, _ := v.AsText()
		return p.clean(s), nil
	}
}

func (p *personName) clean(s string) models.Value {
	trimmed := strings.TrimSpace(s)
	if isNumeric(trimmed) {
		return models.Rejected
	}
	if p.cfg.RejectAnyDigit && normalizer.HasDigit(trimmed) {
		return models.Rejected
	}

	plain := normalizer.Normalize(s)
	for _, bl := range p.cfg.Blacklists {
		if bl == nil {
			continue
		}
		if _, hit := bl.Match(plain); hit {
			return models.Rejected
		}
	}

	if p.isCompany(suffixForm(s)) {
		return models.Rejected
	}

	tokens := p.stripTitles(strings.Fields(normalizer.NormalizeWith(s, dotSpace)))
	if len(tokens) == 0 {
		return models.Rejected
	}

	name := strings.Join(tokens, " ")
	if p.cfg.ReviewTokenLimit > 0 && len(tokens) > p.cfg.ReviewTokenLimit {
		return models.TextValue(p.cfg.ReviewPrefix + name)
	}
	return models.TextValue(name)
}

// suffixForm uppercases, turns dots into spaces and collapses whitespace.
// Diacritics are kept.
func suffixForm(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(strings.ReplaceAll(s, ".", " "))), " ")
}

// isCompany reports whether a suffix partially matches the value or ends it
func (p *personName) isCompany(form string) bool {
	if form == "" {
		return false
	}
	for _, suffix := range p.suffixes {
		if strings.HasSuffix(form, suffix) || p.cfg.Scorer.PartialRatio(form, suffix) >= p.cfg.SuffixThreshold {
			return true
		}
	}
	return false
}

// stripTitles pops the first token while it matches a title
func (p *personName) stripTitles(tokens []string) []string {
	for len(tokens) > 0 && p.isTitle(tokens[0]) {
		tokens = tokens[1:]
	}
	return tokens
}

func (p *personName) isTitle(token string) bool {
	for _, title := range p.titles {
		if p.cfg.Scorer.Ratio(token, title) >= p.cfg.TitleThreshold {
			return true
		}
	}
	return false
}

// isNumeric reports whether s is an integer or float literal
func isNumeric(s string) bool {
	if !normalizer.HasDigit(s) {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
