package models

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// NullLiteral is how rejected and absent values are rendered in output
const NullLiteral = "NULL"

// ValueKind kind of a cleaned value
type ValueKind uint8

const (
	ValueAbsent   ValueKind = iota // source had no value
	ValueRejected                  // value failed validation
	ValueText
	ValueInteger
	ValueDecimal
)

// String returns the kind name
func (k ValueKind) String() string {
	switch k {
	case ValueRejected:
		return "rejected"
	case ValueText:
		return "text"
	case ValueInteger:
		return "integer"
	case ValueDecimal:
		return "decimal"
	default:
		return "absent"
	}
}

// Value is the output of a field validator.
type Value struct {
	Kind    ValueKind
	Text    string
	Integer int64
	Decimal decimal.Decimal
}

// Rejected is the rejection sentinel returned by validators
var Rejected = Value{Kind: ValueRejected}

// AbsentValue is returned when the source had no value
var AbsentValue = Value{Kind: ValueAbsent}

// TextValue wraps a cleaned string
func TextValue(s string) Value { return Value{Kind: ValueText, Text: s} }

// IntegerValue wraps a cleaned integer
func IntegerValue(i int64) Value { return Value{Kind: ValueInteger, Integer: i} }

// DecimalValue wraps a cleaned decimal amount
func DecimalValue(d decimal.Decimal) Value { return Value{Kind: ValueDecimal, Decimal: d} }

// IsRejected reports whether the value is the rejection sentinel
func (v Value) IsRejected() bool { return v.Kind == ValueRejected }

// IsAbsent reports whether the source had no value
func (v Value) IsAbsent() bool { return v.Kind == ValueAbsent }

// IsNull reports whether the value is written as SQL NULL
func (v Value) IsNull() bool { return v.Kind == ValueAbsent || v.Kind == ValueRejected }

// String renders the value; rejected and absent values render as NULL.
func (v Value) String() string {
	switch v.Kind {
	case ValueText:
		return v.Text
	case ValueInteger:
		return strconv.FormatInt(v.Integer, 10)
	case ValueDecimal:
		return v.Decimal.String()
	default:
		return NullLiteral
	}
}

// SQLArg returns the value as a driver argument (nil for NULL)
func (v Value) SQLArg() any {
	switch v.Kind {
	case ValueText:
		return v.Text
	case ValueInteger:
		return v.Integer
	case ValueDecimal:
		return v.Decimal.String()
	default:
		return nil
	}
}

// Interface returns the value as a plain Go value (nil for NULL)
func (v Value) Interface() any {
	switch v.Kind {
	case ValueText:
		return v.Text
	case ValueInteger:
		return v.Integer
	case ValueDecimal:
		return v.Decimal.InexactFloat64()
	default:
		return nil
	}
}

// Equal compares two cleaned values
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueText:
		return v.Text == o.Text
	case ValueInteger:
		return v.Integer == o.Integer
	case ValueDecimal:
		return v.Decimal.Equal(o.Decimal)
	default:
		return true
	}
}

// MarshalJSON encodes NULL values as null and decimals as JSON numbers
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueText:
		return json.Marshal(v.Text)
	case ValueInteger:
		return json.Marshal(v.Integer)
	case ValueDecimal:
		return []byte(v.Decimal.String()), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes null as absent, strings as text and numbers as
// integer or decimal. CleanedField restores rejection and the decimal kind of amounts.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw RawValue
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch raw.Kind() {
	case RawText:
		*v = TextValue(raw.text)
	case RawNumber:
		d, err := decimal.NewFromString(string(data))
		if err != nil {
			return err
		}
		if d.IsInteger() {
			*v = IntegerValue(d.IntPart())
		} else {
			*v = DecimalValue(d)
		}
	default:
		*v = AbsentValue
	}
	return nil
}
