package validators

import (
	"strings"

	"github.com/araddon/dateparse"
	"github.com/pnt-cleaner/app/models"
)

// DateLayout output layout of cleaned dates
const DateLayout = "2006-01-02"

// Date parses day-first dates in any common layout and renders them as
// YYYY-MM-DD. Ambiguous day/month pairs that fail day-first are retried
// month-first. Unparseable values and numbers are rejected.
func Date() Func {
	return func(v models.RawValue, _ models.FieldRef) (models.Value, error) {
		switch v.Kind() {
		case models.RawAbsent:
			return models.AbsentValue, nil
		case models.RawNumber:
			return models.Rejected, nil
		}

		s, _ := v.AsText()
		s = strings.TrimSpace(s)
		if s == "" || looksLikeTimestamp(s) {
			return models.Rejected, nil
		}

		t, err := dateparse.ParseAny(s,
			dateparse.PreferMonthFirst(false),
			dateparse.RetryAmbiguousDateWithSwap(true),
		)
		if err != nil {
			return models.Rejected, nil
		}
		return models.TextValue(t.Format(DateLayout)), nil
	}
}

// looksLikeTimestamp reports digit-only strings longer than YYYYMMDD,
// which the parser would read as epoch seconds
func looksLikeTimestamp(s string) bool {
	if len(s) <= 8 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
