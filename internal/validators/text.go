package validators

import (
	"math"
	"strings"

	"github.com/pnt-cleaner/app/models"
	"github.com/pnt-cleaner/internal/normalizer"
	"github.com/pnt-cleaner/internal/reflist"
	"github.com/shopspring/decimal"
)

// FreeText cleans descriptive columns (requesting area, funding source):
// purely numeric text is rejected, then the blacklist applies. When
// allowedChars is set the accepted value is re-normalized keeping them.
func FreeText(bl *reflist.Blacklist, allowedChars string) Func {
	return textOnly(func(s string) models.Value {
		if isNumeric(strings.TrimSpace(s)) {
			return models.Rejected
		}
		filtered := bl.CheckText(s)
		if filtered.IsRejected() || allowedChars == "" {
			return filtered
		}
		return textValueOrReject(normalizer.NormalizeWith(s, normalizer.Options{AllowedChars: allowedChars}))
	})
}

// amountReplacer drops currency symbols and thousands separators
var amountReplacer = strings.NewReplacer("$", "", ",", "", " ", "")

// Amount accepts any non-zero decimal amount
func Amount() Func {
	return func(v models.RawValue, _ models.FieldRef) (models.Value, error) {
		var d decimal.Decimal

		switch v.Kind() {
		case models.RawAbsent:
			return models.AbsentValue, nil
		case models.RawNumber:
			f, _ := v.AsNumber()
			if !isFinite(f) {
				return models.Rejected, nil
			}
			d = decimal.NewFromFloat(f)
		default:
			s, _ := v.AsText()
			parsed, err := decimal.NewFromString(amountReplacer.Replace(strings.TrimSpace(s)))
			if err != nil {
				return models.Rejected, nil
			}
			d = parsed
		}

		if d.IsZero() {
			return models.Rejected, nil
		}
		return models.DecimalValue(d), nil
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
