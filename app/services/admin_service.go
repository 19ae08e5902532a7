package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/pnt-cleaner/internal/resources"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ErrCacheDisabled returned by cache operations when no cache is configured
var ErrCacheDisabled = errors.New("result cache is disabled")

// DocumentCounter the counting side of *mongo.Collection
type DocumentCounter interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// ResourceInfo a loaded reference list or catalog
type ResourceInfo struct {
	Name    string `json:"name"`
	Entries int    `json:"entries"`
}

// SystemStats service statistics
type SystemStats struct {
	Uptime         string                 `json:"uptime"`
	RulesVersion   string                 `json:"rules_version"`
	Rules          int                    `json:"rules"`
	Lists          []ResourceInfo         `json:"lists"`
	Catalogs       []ResourceInfo         `json:"catalogs"`
	Cache          *CacheStats            `json:"cache,omitempty"`
	AuditDocuments int64                  `json:"audit_documents"`
	MemoryUsage    map[string]interface{} `json:"memory_usage"`
}

// AdminService operational endpoints: statistics and cache maintenance
type AdminService struct {
	cleaning *CleaningService
	set      *resources.Set
	audit    DocumentCounter
	logger   *zap.Logger
}

// NewAdminService creates an AdminService; audit may be nil
func NewAdminService(cleaning *CleaningService, set *resources.Set, audit DocumentCounter, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{cleaning: cleaning, set: set, audit: audit, logger: logger}
}

// Resources loaded lists and catalogs with their sizes
func (as *AdminService) Resources() (lists, catalogs []ResourceInfo) {
	for _, name := range as.set.ListNames() {
		l, err := as.set.List(name)
		if err != nil {
			continue
		}
		lists = append(lists, ResourceInfo{Name: name, Entries: len(l.Lines)})
	}
	for _, name := range as.set.CatalogNames() {
		c, err := as.set.Catalog(name)
		if err != nil {
			continue
		}
		catalogs = append(catalogs, ResourceInfo{Name: name, Entries: len(c.Rows)})
	}
	return lists, catalogs
}

// GetSystemStats collects service statistics
func (as *AdminService) GetSystemStats(ctx context.Context) (*SystemStats, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	lists, catalogs := as.Resources()
	stats := &SystemStats{
		Uptime:       time.Since(as.cleaning.StartTime()).Round(time.Second).String(),
		RulesVersion: as.cleaning.RulesVersion(),
		Rules:        len(as.cleaning.Rules()),
		Lists:        lists,
		Catalogs:     catalogs,
		MemoryUsage: map[string]interface{}{
			"alloc_mb":       bToMb(m.Alloc),
			"total_alloc_mb": bToMb(m.TotalAlloc),
			"sys_mb":         bToMb(m.Sys),
			"num_gc":         m.NumGC,
		},
	}

	if cache := as.cleaning.Cache(); cache != nil {
		cacheStats, err := cache.GetStats(ctx)
		if err != nil {
			return nil, fmt.Errorf("cache stats: %w", err)
		}
		stats.Cache = cacheStats
	}

	if as.audit != nil {
		count, err := as.audit.CountDocuments(ctx, bson.M{})
		if err != nil {
			as.logger.Warn("Cannot count audit documents", zap.Error(err))
		} else {
			stats.AuditDocuments = count
		}
	}
	return stats, nil
}

// InvalidateCache drops cached results of other rules versions, or every
// cached result when all is set
func (as *AdminService) InvalidateCache(ctx context.Context, all bool) error {
	cache := as.cleaning.Cache()
	if cache == nil {
		return ErrCacheDisabled
	}
	if all {
		return cache.Clear(ctx)
	}
	return cache.InvalidateByRulesVersion(ctx, as.cleaning.RulesVersion())
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
