package sources

import (
	"context"
	"errors"
	"fmt"
	"io"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/pnt-cleaner/app/models"
	"go.uber.org/zap"
)

// Querier the read side of a pgx pool or connection
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// TableConfig which table to read and how
type TableConfig struct {
	Table    string   // procurement table, e.g. procedimientos_adj
	Columns  []string // empty reads every column
	IDColumn string   // ordering column
	Limit    uint64   // 0 reads all rows
}

// PostgresSource streams rows of a procurement table. Column values keep
// their database type through models.FromAny.
type PostgresSource struct {
	rows   pgx.Rows
	fields []string
	logger *zap.Logger
}

// SelectQuery builds the SELECT for a table config
func SelectQuery(cfg TableConfig) (string, []interface{}, error) {
	cols := cfg.Columns
	if len(cols) == 0 {
		cols = []string{"*"}
	}
	q := sq.Select(cols...).From(cfg.Table).PlaceholderFormat(sq.Dollar)
	if cfg.IDColumn != "" {
		q = q.OrderBy(cfg.IDColumn)
	}
	if cfg.Limit > 0 {
		q = q.Limit(cfg.Limit)
	}
	return q.ToSql()
}

// OpenPostgres runs the SELECT and returns a source over its rows
func OpenPostgres(ctx context.Context, db Querier, cfg TableConfig, logger *zap.Logger) (*PostgresSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	query, args, err := SelectQuery(cfg)
	if err != nil {
		return nil, fmt.Errorf("build select for %s: %w", cfg.Table, err)
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", cfg.Table, err)
	}

	descs := rows.FieldDescriptions()
	fields := make([]string, len(descs))
	for i, fd := range descs {
		fields[i] = fd.Name
	}
	logger.Info("Reading procurement table", zap.String("table", cfg.Table), zap.Int("columns", len(fields)))

	return &PostgresSource{rows: rows, fields: fields, logger: logger}, nil
}

// Header the column names of the result set
func (s *PostgresSource) Header() []string { return s.fields }

func (s *PostgresSource) Next(ctx context.Context) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return models.Record{}, err
	}
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return models.Record{}, fmt.Errorf("iterate rows: %w", err)
		}
		return models.Record{}, io.EOF
	}

	values, err := s.rows.Values()
	if err != nil {
		return models.Record{}, fmt.Errorf("decode row: %w", err)
	}
	if len(values) != len(s.fields) {
		return models.Record{}, errors.New("row width does not match the result columns")
	}

	rec := models.NewRecord()
	for i, col := range s.fields {
		rec.Set(col, models.FromAny(values[i]))
	}
	return rec, nil
}

func (s *PostgresSource) Close() error {
	s.rows.Close()
	return s.rows.Err()
}
