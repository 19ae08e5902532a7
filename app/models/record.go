package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Record a source row with ordered columns
type Record struct {
	Columns []string            `json:"columns"` // column order as read from the source
	Values  map[string]RawValue `json:"values"`  // column -> raw value
}

// NewRecord creates an empty record
func NewRecord() Record {
	return Record{Values: make(map[string]RawValue)}
}

// Set appends or replaces a column value, keeping first-seen order
func (r *Record) Set(column string, value RawValue) {
	if r.Values == nil {
		r.Values = make(map[string]RawValue)
	}
	if _, exists := r.Values[column]; !exists {
		r.Columns = append(r.Columns, column)
	}
	r.Values[column] = value
}

// Get returns the raw value of a column; missing columns are absent
func (r Record) Get(column string) (RawValue, bool) {
	v, ok := r.Values[column]
	return v, ok
}

// FieldStatus outcome of cleaning one field
type FieldStatus string

const (
	StatusCleaned   FieldStatus = "cleaned"   // a validator produced a value
	StatusRejected  FieldStatus = "rejected"  // a validator rejected the value
	StatusAbsent    FieldStatus = "absent"    // source had no value
	StatusUntouched FieldStatus = "untouched" // no rule for the column
	StatusFailed    FieldStatus = "failed"    // validator could not interpret the value
)

// CleanedField result for one column
type CleanedField struct {
	Column string      `json:"column"`
	Raw    RawValue    `json:"raw"`
	Value  Value       `json:"value"`
	Status FieldStatus `json:"status"`
	Rule   string      `json:"rule,omitempty"`  // rule kind applied
	Error  string      `json:"error,omitempty"` // set when Status is failed
}

// Writable reports whether a sink should persist this field
func (f CleanedField) Writable() bool {
	return f.Status == StatusCleaned || f.Status == StatusRejected
}

// CleanedRecord output of the record processor
type CleanedRecord struct {
	RecordID string         `json:"record_id"`
	Fields   []CleanedField `json:"fields"`
}

// Field returns the cleaned field for a column
func (r CleanedRecord) Field(column string) (CleanedField, bool) {
	for _, f := range r.Fields {
		if f.Column == column {
			return f, true
		}
	}
	return CleanedField{}, false
}

// WritableFields returns fields a sink should persist, in record order
func (r CleanedRecord) WritableFields() []CleanedField {
	out := make([]CleanedField, 0, len(r.Fields))
	for _, f := range r.Fields {
		if f.Writable() {
			out = append(out, f)
		}
	}
	return out
}

// Failed reports whether any field failed
func (r CleanedRecord) Failed() bool {
	for _, f := range r.Fields {
		if f.Status == StatusFailed {
			return true
		}
	}
	return false
}

// RuleAmount rule kind whose values are always decimals
const RuleAmount = "amount"

// UnmarshalJSON restores the rejection sentinel from the status and the
// decimal kind of amounts, which JSON cannot tell apart from integers.
func (f *CleanedField) UnmarshalJSON(data []byte) error {
	type alias CleanedField
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*f = CleanedField(a)
	switch {
	case f.Status == StatusRejected:
		f.Value = Rejected
	case f.Rule == RuleAmount && f.Value.Kind == ValueInteger:
		f.Value = DecimalValue(decimal.NewFromInt(f.Value.Integer))
	}
	return nil
}
