package resources

import (
	"context"
	"errors"
	"time"

	"github.com/pnt-cleaner/internal/catalog"
	"github.com/pnt-cleaner/internal/reflist"
	"github.com/pnt-cleaner/internal/rules"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Loader loads every resource a rule set needs, once
type Loader struct {
	lists       ListSource
	catalogs    CatalogSource
	logger      *zap.Logger
	concurrency int
}

// NewLoader creates a Loader. Either source may be nil when the rule set
// does not need it.
func NewLoader(lists ListSource, catalogs CatalogSource, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{lists: lists, catalogs: catalogs, logger: logger, concurrency: 4}
}

// Load fetches the lists and catalogs named by cfg. The first failure
// cancels the remaining loads and is returned.
func (l *Loader) Load(ctx context.Context, cfg *rules.Config) (*Set, error) {
	start := time.Now()
	listNames := cfg.ListNamesInUse()
	specs := cfg.Catalogs.All()

	if len(listNames) > 0 && l.lists == nil {
		return nil, listUnavailable(listNames[0], errors.New("no list source configured"))
	}
	if len(specs) > 0 && l.catalogs == nil {
		return nil, catalogUnavailable(specs[0].Table, errors.New("no catalog source configured"))
	}

	lists := make([]reflist.List, len(listNames))
	catalogs := make([]catalog.Catalog, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for i, name := range listNames {
		g.Go(func() error {
			list, err := l.lists.LoadList(gctx, name)
			if err != nil {
				return err
			}
			list.Name = name
			lists[i] = list
			return nil
		})
	}
	for i, spec := range specs {
		g.Go(func() error {
			cat, err := l.catalogs.LoadCatalog(gctx, spec)
			if err != nil {
				return err
			}
			cat.Name = spec.Table
			catalogs[i] = cat
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		l.logger.Error("Resource load failed", zap.Error(err))
		return nil, err
	}

	for _, list := range lists {
		l.logger.Info("Loaded reference list", zap.String("name", list.Name), zap.Int("lines", len(list.Lines)))
	}
	for _, cat := range catalogs {
		l.logger.Info("Loaded catalog", zap.String("table", cat.Name), zap.Int("rows", len(cat.Rows)))
	}
	l.logger.Info("Resources ready",
		zap.Int("lists", len(lists)),
		zap.Int("catalogs", len(catalogs)),
		zap.Duration("took", time.Since(start)))

	return NewSet(lists, catalogs), nil
}
