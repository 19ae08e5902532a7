package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pnt-cleaner/app/models"
)

type lruEntry struct {
	result    *models.CleanedRecord
	expiresAt time.Time
}

// LRUCacheService in-memory cache bounded by size and TTL
type LRUCacheService struct {
	cache  *expirable.LRU[string, lruEntry]
	ttl    time.Duration
	hits   atomic.Int64
	misses atomic.Int64
}

// NewLRUCacheService creates an LRUCacheService; ttl 0 disables expiry
func NewLRUCacheService(size int, ttl time.Duration) *LRUCacheService {
	if size <= 0 {
		size = 10000
	}
	return &LRUCacheService{
		cache: expirable.NewLRU[string, lruEntry](size, nil, ttl),
		ttl:   ttl,
	}
}

func (cs *LRUCacheService) Get(ctx context.Context, key string) (*models.CleanedRecord, bool, error) {
	entry, ok := cs.cache.Get(key)
	if !ok {
		cs.misses.Add(1)
		return nil, false, nil
	}
	cs.hits.Add(1)
	return entry.result, true, nil
}

func (cs *LRUCacheService) Set(ctx context.Context, key string, result *models.CleanedRecord) error {
	entry := lruEntry{result: result}
	if cs.ttl > 0 {
		entry.expiresAt = time.Now().Add(cs.ttl)
	}
	cs.cache.Add(key, entry)
	return nil
}

func (cs *LRUCacheService) Delete(ctx context.Context, key string) error {
	cs.cache.Remove(key)
	return nil
}

func (cs *LRUCacheService) Clear(ctx context.Context) error {
	cs.cache.Purge()
	cs.hits.Store(0)
	cs.misses.Store(0)
	return nil
}

// InvalidateByRulesVersion purges everything; keys already embed the version
func (cs *LRUCacheService) InvalidateByRulesVersion(ctx context.Context, rulesVersion string) error {
	cs.cache.Purge()
	return nil
}

func (cs *LRUCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	hits, misses := cs.hits.Load(), cs.misses.Load()
	return &CacheStats{
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: int64(cs.cache.Len()),
	}, nil
}

func (cs *LRUCacheService) Exists(ctx context.Context, key string) (bool, error) {
	return cs.cache.Contains(key), nil
}

func (cs *LRUCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	entry, ok := cs.cache.Peek(key)
	if !ok || entry.expiresAt.IsZero() {
		return 0, nil
	}
	if remaining := time.Until(entry.expiresAt); remaining > 0 {
		return remaining, nil
	}
	return 0, nil
}

func (cs *LRUCacheService) Close() error { return nil }
