package validators

import (
	"math"
	"strconv"
	"strings"

	"github.com/pnt-cleaner/app/models"
)

// FiscalYear accepts integers within [min, max]. Numbers are truncated;
// text must be an integer literal. Anything else is rejected.
func FiscalYear(min, max int) Func {
	return func(v models.RawValue, _ models.FieldRef) (models.Value, error) {
		var year int64

		switch v.Kind() {
		case models.RawAbsent:
			return models.AbsentValue, nil
		case models.RawNumber:
			f, _ := v.AsNumber()
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return models.Rejected, nil
			}
			year = int64(math.Trunc(f))
		default:
			s, _ := v.AsText()
			parsed, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			if err != nil {
				return models.Rejected, nil
			}
			year = parsed
		}

		if year < int64(min) || year > int64(max) {
			return models.Rejected, nil
		}
		return models.IntegerValue(year), nil
	}
}
