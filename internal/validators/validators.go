// Package validators holds one cleaning function per semantic field kind.
// Every validator is pure: same input, same output, no shared state
// mutated. Absent input always yields an absent value.
package validators

import (
	"github.com/pnt-cleaner/app/models"
)

// Func cleans one raw value. A returned error is field-local; the value
// is then meaningless.
type Func func(v models.RawValue, ref models.FieldRef) (models.Value, error)

// textOnly adapts a string cleaner into a Func that rejects numbers as a type mismatch
func textOnly(fn func(s string) models.Value) Func {
	return func(v models.RawValue, ref models.FieldRef) (models.Value, error) {
		switch v.Kind() {
		case models.RawAbsent:
			return models.AbsentValue, nil
		case models.RawNumber:
			return models.Rejected, models.NewTypeMismatch(ref, v, "text")
		}
		s, _ := v.AsText()
		return fn(s), nil
	}
}

// textOrNumber adapts a string cleaner into a Func that renders numbers as text first
func textOrNumber(fn func(s string) models.Value) Func {
	return func(v models.RawValue, _ models.FieldRef) (models.Value, error) {
		if v.IsAbsent() {
			return models.AbsentValue, nil
		}
		return fn(v.String()), nil
	}
}

// textValueOrReject wraps s, rejecting the empty string
func textValueOrReject(s string) models.Value {
	if s == "" {
		return models.Rejected
	}
	return models.TextValue(s)
}
