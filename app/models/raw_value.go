package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// RawKind kind of a value read from a source table
type RawKind uint8

const (
	RawAbsent RawKind = iota // no value in the source (SQL NULL, empty CSV cell)
	RawText                  // textual value
	RawNumber                // numeric value
)

// String returns the kind name used in logs and errors
func (k RawKind) String() string {
	switch k {
	case RawText:
		return "text"
	case RawNumber:
		return "number"
	default:
		return "absent"
	}
}

// RawValue is a source value: absent, text or number.
type RawValue struct {
	kind   RawKind
	text   string
	number float64
}

// Absent returns the absent raw value
func Absent() RawValue { return RawValue{} }

// Text wraps a textual raw value
func Text(s string) RawValue { return RawValue{kind: RawText, text: s} }

// Number wraps a numeric raw value
func Number(f float64) RawValue { return RawValue{kind: RawNumber, number: f} }

// FromAny converts a driver or decoder value into a RawValue.
func FromAny(x any) RawValue {
	switch v := x.(type) {
	case nil:
		return Absent()
	case RawValue:
		return v
	case string:
		return Text(v)
	case []byte:
		return Text(string(v))
	case int:
		return Number(float64(v))
	case int8:
		return Number(float64(v))
	case int16:
		return Number(float64(v))
	case int32:
		return Number(float64(v))
	case int64:
		return Number(float64(v))
	case uint8:
		return Number(float64(v))
	case uint16:
		return Number(float64(v))
	case uint32:
		return Number(float64(v))
	case uint64:
		return Number(float64(v))
	case float32:
		return Number(float64(v))
	case float64:
		return Number(v)
	case decimal.Decimal:
		return Number(v.InexactFloat64())
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return Number(f)
		}
		return Text(v.String())
	case time.Time:
		return Text(v.Format("2006-01-02"))
	case bool:
		return Text(strconv.FormatBool(v))
	case driver.Valuer:
		dv, err := v.Value()
		if err != nil {
			return Text(fmt.Sprint(v))
		}
		if _, again := dv.(driver.Valuer); again {
			return Text(fmt.Sprint(dv))
		}
		return FromAny(dv)
	case fmt.Stringer:
		return Text(v.String())
	default:
		return Text(fmt.Sprint(v))
	}
}

// Kind returns the value kind
func (v RawValue) Kind() RawKind { return v.kind }

// IsAbsent reports whether the source had no value
func (v RawValue) IsAbsent() bool { return v.kind == RawAbsent }

// AsText returns the text and true for text values
func (v RawValue) AsText() (string, bool) {
	return v.text, v.kind == RawText
}

// AsNumber returns the number and true for numeric values
func (v RawValue) AsNumber() (float64, bool) {
	return v.number, v.kind == RawNumber
}

// String renders the value the way it appears in source data. Integral
// numbers render without a fractional part.
func (v RawValue) String() string {
	switch v.kind {
	case RawText:
		return v.text
	case RawNumber:
		return FormatNumber(v.number)
	default:
		return ""
	}
}

// FormatNumber formats f without exponent and without trailing zeros
func FormatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// MarshalJSON encodes absent as null, text as string, number as number
func (v RawValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case RawText:
		return json.Marshal(v.text)
	case RawNumber:
		return json.Marshal(v.number)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, strings and numbers only
func (v *RawValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Absent()
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*v = Number(f)
		return nil
	}

	return fmt.Errorf("unsupported raw value %s: expected null, string or number", string(data))
}
