package catalog

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pnt-cleaner/app/models"
)

// CachedResolver memoizes Resolve results per (catalog, value). Catalogs
// are immutable for a run so entries never go stale.
type CachedResolver struct {
	inner Matcher
	cache *lru.Cache[string, models.Value]
}

// NewCachedResolver wraps inner with an LRU of the given size
func NewCachedResolver(inner Matcher, size int) (*CachedResolver, error) {
	cache, err := lru.New[string, models.Value](size)
	if err != nil {
		return nil, fmt.Errorf("create resolver cache: %w", err)
	}
	return &CachedResolver{inner: inner, cache: cache}, nil
}

// Resolve returns the cached result or computes and stores it
func (c *CachedResolver) Resolve(value string, idx *Index) models.Value {
	key := idx.name + "\x1f" + value
	if v, ok := c.cache.Get(key); ok {
		return v
	}
	v := c.inner.Resolve(value, idx)
	c.cache.Add(key, v)
	return v
}

// Len returns the number of cached results
func (c *CachedResolver) Len() int { return c.cache.Len() }
