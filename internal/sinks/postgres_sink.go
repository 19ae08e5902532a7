package sinks

import (
	"context"
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/pnt-cleaner/app/models"
	"go.uber.org/zap"
)

// TxBeginner anything that opens a pgx transaction (pool, conn, mock)
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresSink applies cleaned values directly with one transaction per batch
type PostgresSink struct {
	db       TxBeginner
	table    string
	idColumn string
	logger   *zap.Logger
}

// NewPostgresSink creates a PostgresSink
func NewPostgresSink(db TxBeginner, table, idColumn string, logger *zap.Logger) *PostgresSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresSink{db: db, table: table, idColumn: idColumn, logger: logger}
}

// UpdateQuery builds the parameterized UPDATE for one record
func UpdateQuery(table, idColumn string, rec models.CleanedRecord) (string, []interface{}, bool, error) {
	fields := rec.WritableFields()
	if len(fields) == 0 {
		return "", nil, false, nil
	}

	q := sq.Update(table).PlaceholderFormat(sq.Dollar)
	for _, f := range fields {
		q = q.Set(f.Column, f.Value.SQLArg())
	}
	q = q.Where(sq.Eq{idColumn: idArg(rec.RecordID)})

	sql, args, err := q.ToSql()
	if err != nil {
		return "", nil, false, fmt.Errorf("build update for record %s: %w", rec.RecordID, err)
	}
	return sql, args, true, nil
}

func idArg(id string) interface{} {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

func (s *PostgresSink) Write(ctx context.Context, records []models.CleanedRecord) error {
	updated := 0
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		for _, rec := range records {
			sql, args, ok, err := UpdateQuery(s.table, s.idColumn, rec)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			tag, err := tx.Exec(ctx, sql, args...)
			if err != nil {
				return fmt.Errorf("update record %s: %w", rec.RecordID, err)
			}
			if tag.RowsAffected() == 0 {
				s.logger.Warn("Record not found for update",
					zap.String("table", s.table),
					zap.String("record_id", rec.RecordID))
			}
			updated++
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Batch update rolled back", zap.String("table", s.table), zap.Error(err))
		return err
	}

	s.logger.Debug("Batch updated", zap.String("table", s.table), zap.Int("records", updated))
	return nil
}

// Close is a no-op; the pool belongs to the caller
func (s *PostgresSink) Close() error { return nil }
