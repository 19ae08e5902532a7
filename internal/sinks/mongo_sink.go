package sinks

import (
	"context"
	"fmt"
	"time"

	"github.com/pnt-cleaner/app/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// AuditCollection name of the cleaning audit collection
const AuditCollection = "cleaning_audit"

// BulkWriter the write side of *mongo.Collection
type BulkWriter interface {
	BulkWrite(ctx context.Context, writes []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error)
}

// AuditField one cleaned column as stored in the audit collection
type AuditField struct {
	Column string      `bson:"column"`
	Raw    interface{} `bson:"raw"`
	Value  interface{} `bson:"value"`
	Status string      `bson:"status"`
	Rule   string      `bson:"rule,omitempty"`
	Error  string      `bson:"error,omitempty"`
}

// AuditDocument cleaning result of one record in one run
type AuditDocument struct {
	RecordID  string       `bson:"record_id"`
	Table     string       `bson:"table"`
	RunID     string       `bson:"run_id"`
	Failed    bool         `bson:"failed"`
	Fields    []AuditField `bson:"fields"`
	CleanedAt time.Time    `bson:"cleaned_at"`
}

// MongoSink upserts one audit document per (table, record id)
type MongoSink struct {
	collection BulkWriter
	table      string
	runID      string
	logger     *zap.Logger
	now        func() time.Time
}

// NewMongoSink creates a MongoSink
func NewMongoSink(collection BulkWriter, table, runID string, logger *zap.Logger) *MongoSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MongoSink{collection: collection, table: table, runID: runID, logger: logger, now: time.Now}
}

// EnsureAuditIndexes creates the audit collection indexes
func EnsureAuditIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "table", Value: 1}, bson.E{Key: "record_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{bson.E{Key: "run_id", Value: 1}},
		},
		{
			Keys: bson.D{bson.E{Key: "failed", Value: 1}},
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("create audit indexes: %w", err)
	}
	return nil
}

// AuditDocumentFor converts a cleaned record into its audit document
func AuditDocumentFor(table, runID string, rec models.CleanedRecord, at time.Time) AuditDocument {
	doc := AuditDocument{
		RecordID:  rec.RecordID,
		Table:     table,
		RunID:     runID,
		Failed:    rec.Failed(),
		Fields:    make([]AuditField, 0, len(rec.Fields)),
		CleanedAt: at,
	}
	for _, f := range rec.Fields {
		doc.Fields = append(doc.Fields, AuditField{
			Column: f.Column,
			Raw:    rawInterface(f.Raw),
			Value:  f.Value.Interface(),
			Status: string(f.Status),
			Rule:   f.Rule,
			Error:  f.Error,
		})
	}
	return doc
}

func rawInterface(v models.RawValue) interface{} {
	if s, ok := v.AsText(); ok {
		return s
	}
	if n, ok := v.AsNumber(); ok {
		return n
	}
	return nil
}

func (s *MongoSink) Write(ctx context.Context, records []models.CleanedRecord) error {
	if len(records) == 0 {
		return nil
	}

	at := s.now().UTC()
	writes := make([]mongo.WriteModel, 0, len(records))
	for _, rec := range records {
		doc := AuditDocumentFor(s.table, s.runID, rec, at)
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"table": s.table, "record_id": rec.RecordID}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	result, err := s.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("write audit batch: %w", err)
	}

	s.logger.Debug("Audit batch stored",
		zap.String("run_id", s.runID),
		zap.Int64("upserted", result.UpsertedCount),
		zap.Int64("modified", result.ModifiedCount))
	return nil
}

// Close is a no-op; the client belongs to the caller
func (s *MongoSink) Close() error { return nil }
