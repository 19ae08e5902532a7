package requests

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pnt-cleaner/app/models"
)

// RecordPayload a record sent as a JSON object. Member order becomes the
// column order of the record.
type RecordPayload struct {
	models.Record
}

// UnmarshalJSON reads the object member by member to keep column order
func (p *RecordPayload) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record must be a JSON object")
	}

	rec := models.NewRecord()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		column := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("column %s: %w", column, err)
		}
		var value models.RawValue
		if err := json.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("column %s: %w", column, err)
		}
		rec.Set(column, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	p.Record = rec
	return nil
}

// MarshalJSON writes the record back as an ordered JSON object
func (p RecordPayload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range p.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(p.Values[col])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// CleanRecordRequest clean one record
type CleanRecordRequest struct {
	Record   RecordPayload `json:"record"`
	UseCache *bool         `json:"use_cache,omitempty"` // defaults to true
}

// CacheRequested whether the caller allows cached results
func (r CleanRecordRequest) CacheRequested() bool {
	return r.UseCache == nil || *r.UseCache
}

// CleanValueRequest clean a single value with the rule of a column
type CleanValueRequest struct {
	Column string          `json:"column" binding:"required"`
	Value  models.RawValue `json:"value"`
}

// BatchCleanRequest start a background job over many records
type BatchCleanRequest struct {
	Records []RecordPayload `json:"records" binding:"required,min=1,max=20000"`
}

// RecordList the payloads as engine records
func (r BatchCleanRequest) RecordList() []models.Record {
	out := make([]models.Record, len(r.Records))
	for i, p := range r.Records {
		out[i] = p.Record
	}
	return out
}

// InvalidateCacheRequest drop cached results
type InvalidateCacheRequest struct {
	All bool `json:"all,omitempty"` // every entry, not only other rules versions
}
