package models

import (
	"errors"
	"fmt"
)

// ErrTypeMismatch a validator received a value kind it cannot interpret
var ErrTypeMismatch = errors.New("type mismatch")

// FieldRef identifies the field being cleaned, for error reporting
type FieldRef struct {
	RecordID string `json:"record_id"`
	Column   string `json:"column"`
}

// TypeMismatchError carries the offending record, column and value kind.
type TypeMismatchError struct {
	FieldRef
	Kind     RawKind
	Value    string
	Expected string
}

// NewTypeMismatch builds a TypeMismatchError for v
func NewTypeMismatch(ref FieldRef, v RawValue, expected string) *TypeMismatchError {
	return &TypeMismatchError{FieldRef: ref, Kind: v.Kind(), Value: v.String(), Expected: expected}
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("column %s of record %s: value %q of kind %s cannot be processed as %s",
		e.Column, e.RecordID, e.Value, e.Kind, e.Expected)
}

// Is makes errors.Is(err, ErrTypeMismatch) succeed
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}
