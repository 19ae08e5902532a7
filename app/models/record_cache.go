package models

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecordCache persisted cleaning result of one record
type RecordCache struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Fingerprint  string             `bson:"fingerprint" json:"fingerprint"` // sha256 of rules version + raw record
	RecordID     string             `bson:"record_id" json:"record_id"`
	RulesVersion string             `bson:"rules_version" json:"rules_version"`
	Result       string             `bson:"result" json:"result"` // CleanedRecord as JSON
	Failed       bool               `bson:"failed" json:"failed"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	LastAccessed time.Time          `bson:"last_accessed" json:"last_accessed"`
	AccessCount  int                `bson:"access_count" json:"access_count"`
}

// NewRecordCache creates a RecordCache entry for result
func NewRecordCache(fingerprint, rulesVersion string, result *CleanedRecord) (*RecordCache, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode cleaned record %s: %w", result.RecordID, err)
	}
	now := time.Now()
	return &RecordCache{
		Fingerprint:  fingerprint,
		RecordID:     result.RecordID,
		RulesVersion: rulesVersion,
		Result:       string(data),
		Failed:       result.Failed(),
		CreatedAt:    now,
		LastAccessed: now,
		AccessCount:  1,
	}, nil
}

// Decode returns the cached cleaned record
func (rc *RecordCache) Decode() (*CleanedRecord, error) {
	var out CleanedRecord
	if err := json.Unmarshal([]byte(rc.Result), &out); err != nil {
		return nil, fmt.Errorf("decode cached record %s: %w", rc.RecordID, err)
	}
	return &out, nil
}

// IsValidRulesVersion reports whether the entry was produced by currentVersion
func (rc *RecordCache) IsValidRulesVersion(currentVersion string) bool {
	return rc.RulesVersion == currentVersion
}
