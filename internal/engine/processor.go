package engine

import (
	"errors"
	"fmt"

	"github.com/pnt-cleaner/app/models"
	"go.uber.org/zap"
)

// Processor cleans one record at a time. Safe for concurrent use.
type Processor struct {
	dispatcher *Dispatcher
	idColumn   string
	logger     *zap.Logger
}

// NewProcessor creates a Processor; an empty idColumn means IdentifierColumn
func NewProcessor(d *Dispatcher, idColumn string, logger *zap.Logger) *Processor {
	if idColumn == "" {
		idColumn = IdentifierColumn
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{dispatcher: d, idColumn: idColumn, logger: logger}
}

// Dispatcher the rule table in use
func (p *Processor) Dispatcher() *Dispatcher { return p.dispatcher }

// RecordID reads the identifier column of a record
func (p *Processor) RecordID(rec models.Record) string {
	v, ok := rec.Get(p.idColumn)
	if !ok || v.IsAbsent() {
		return ""
	}
	return v.String()
}

// Process cleans every column of the record in column order. A type
// mismatch marks only its own field as failed.
func (p *Processor) Process(rec models.Record) models.CleanedRecord {
	out, _ := p.process(rec, false)
	return out
}

// ProcessStrict is Process that stops at the first failing field
func (p *Processor) ProcessStrict(rec models.Record) (models.CleanedRecord, error) {
	return p.process(rec, true)
}

func (p *Processor) process(rec models.Record, strict bool) (models.CleanedRecord, error) {
	// 1. identifier first, so every field error can name its record
	id := p.RecordID(rec)
	out := models.CleanedRecord{RecordID: id, Fields: make([]models.CleanedField, 0, len(rec.Columns))}

	// 2. each column through its rule
	for _, col := range rec.Columns {
		raw := rec.Values[col]
		field, err := p.CleanField(id, col, raw)
		if err != nil && strict {
			return out, err
		}
		out.Fields = append(out.Fields, field)
	}
	return out, nil
}

// CleanField runs the rule of one column. The returned error is the field
// failure, also recorded in the field itself.
func (p *Processor) CleanField(recordID, column string, raw models.RawValue) (models.CleanedField, error) {
	field := models.CleanedField{Column: column, Raw: raw}

	rule, ok := p.dispatcher.Rule(Column(column))
	if !ok {
		field.Status = models.StatusUntouched
		return field, nil
	}
	field.Rule = string(rule.Kind)

	ref := models.FieldRef{RecordID: recordID, Column: column}
	value, err := rule.Apply(raw, ref)
	if err != nil {
		var mismatch *models.TypeMismatchError
		if !errors.As(err, &mismatch) {
			err = fmt.Errorf("column %s of record %s: %w", column, recordID, err)
		}
		field.Status = models.StatusFailed
		field.Value = models.AbsentValue
		field.Error = err.Error()
		p.logger.Warn("Field could not be cleaned",
			zap.String("record_id", recordID),
			zap.String("column", column),
			zap.String("rule", field.Rule),
			zap.Error(err))
		return field, err
	}

	field.Value = value
	switch {
	case value.IsAbsent():
		field.Status = models.StatusAbsent
	case value.IsRejected():
		field.Status = models.StatusRejected
		p.logger.Debug("Value rejected",
			zap.String("record_id", recordID),
			zap.String("column", column),
			zap.String("input", raw.String()))
	default:
		field.Status = models.StatusCleaned
	}
	return field, nil
}
