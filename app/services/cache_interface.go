package services

import (
	"context"
	"time"

	"github.com/pnt-cleaner/app/models"
)

// CacheStats cache counters
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// ICacheService caches cleaned records by record fingerprint
type ICacheService interface {
	Get(ctx context.Context, key string) (*models.CleanedRecord, bool, error)

	Set(ctx context.Context, key string, result *models.CleanedRecord) error

	Delete(ctx context.Context, key string) error

	Clear(ctx context.Context) error

	// InvalidateByRulesVersion drops entries produced by any other rule set version
	InvalidateByRulesVersion(ctx context.Context, rulesVersion string) error

	GetStats(ctx context.Context) (*CacheStats, error)

	Exists(ctx context.Context, key string) (bool, error)

	// GetTTL remaining lifetime of key; 0 when the backend has no expiry
	GetTTL(ctx context.Context, key string) (time.Duration, error)

	Close() error
}

func hitRate(hits, misses int64) float64 {
	if total := hits + misses; total > 0 {
		return float64(hits) / float64(total)
	}
	return 0
}
