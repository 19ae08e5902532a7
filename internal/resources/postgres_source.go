package resources

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/pnt-cleaner/internal/catalog"
	"github.com/pnt-cleaner/internal/rules"
	"go.uber.org/zap"
)

// Querier the read side of a pgx pool or connection
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource loads catalogs from database tables
type PostgresSource struct {
	db     Querier
	logger *zap.Logger
}

// NewPostgresSource creates a PostgresSource
func NewPostgresSource(db Querier, logger *zap.Logger) *PostgresSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresSource{db: db, logger: logger}
}

// CatalogQuery builds the SELECT for a catalog spec. Keys are cast to
// text; rows with a NULL name are skipped.
func CatalogQuery(spec rules.CatalogSpec) (string, []interface{}, error) {
	name := "CAST(" + spec.NameColumn + " AS TEXT)"
	key := name
	if spec.KeyColumn != "" {
		key = "CAST(" + spec.KeyColumn + " AS TEXT)"
	}
	return sq.Select(key, name).
		From(spec.Table).
		Where(sq.NotEq{spec.NameColumn: nil}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

// LoadCatalog runs the catalog query. Rows keep table order.
func (s *PostgresSource) LoadCatalog(ctx context.Context, spec rules.CatalogSpec) (catalog.Catalog, error) {
	query, args, err := CatalogQuery(spec)
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("build catalog query for %s: %w", spec.Table, err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return catalog.Catalog{}, catalogUnavailable(spec.Table, err)
	}
	defer rows.Close()

	cat := catalog.Catalog{Name: spec.Table}
	for rows.Next() {
		var row catalog.Row
		if err := rows.Scan(&row.Key, &row.Name); err != nil {
			return catalog.Catalog{}, catalogUnavailable(spec.Table, fmt.Errorf("scan: %w", err))
		}
		cat.Rows = append(cat.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return catalog.Catalog{}, catalogUnavailable(spec.Table, err)
	}

	s.logger.Debug("Loaded catalog from PostgreSQL", zap.String("table", spec.Table), zap.Int("rows", len(cat.Rows)))
	return cat, nil
}
