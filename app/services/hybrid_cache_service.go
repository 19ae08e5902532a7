package services

import (
	"context"
	"errors"
	"time"

	"github.com/pnt-cleaner/app/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// HybridCacheService two-tier cache: a fast L1 (Redis or memory) in front of
// a persistent L2 (MongoDB or Redis)
type HybridCacheService struct {
	l1     ICacheService
	l2     ICacheService
	logger *zap.Logger
}

// NewHybridCacheService creates a HybridCacheService
func NewHybridCacheService(l1, l2 ICacheService, logger *zap.Logger) *HybridCacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HybridCacheService{l1: l1, l2: l2, logger: logger}
}

// Get tries L1, then L2; L2 hits are copied into L1
func (hcs *HybridCacheService) Get(ctx context.Context, key string) (*models.CleanedRecord, bool, error) {
	result, found, err := hcs.l1.Get(ctx, key)
	if err != nil {
		hcs.logger.Warn("L1 cache failed, falling back to L2", zap.Error(err))
	} else if found {
		return result, true, nil
	}

	result, found, err = hcs.l2.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}

	if err := hcs.l1.Set(ctx, key, result); err != nil {
		hcs.logger.Warn("Cannot promote L2 hit into L1", zap.Error(err), zap.String("key", key))
	}
	return result, true, nil
}

// both runs fn against both tiers concurrently and joins their errors
func (hcs *HybridCacheService) both(fn func(ICacheService) error) error {
	var g errgroup.Group
	errs := make([]error, 2)
	for i, c := range []ICacheService{hcs.l1, hcs.l2} {
		g.Go(func() error {
			errs[i] = fn(c)
			return nil
		})
	}
	g.Wait()
	return errors.Join(errs...)
}

func (hcs *HybridCacheService) Set(ctx context.Context, key string, result *models.CleanedRecord) error {
	return hcs.both(func(c ICacheService) error { return c.Set(ctx, key, result) })
}

func (hcs *HybridCacheService) Delete(ctx context.Context, key string) error {
	return hcs.both(func(c ICacheService) error { return c.Delete(ctx, key) })
}

func (hcs *HybridCacheService) Clear(ctx context.Context) error {
	if err := hcs.both(func(c ICacheService) error { return c.Clear(ctx) }); err != nil {
		return err
	}
	hcs.logger.Info("Hybrid cache cleared")
	return nil
}

func (hcs *HybridCacheService) InvalidateByRulesVersion(ctx context.Context, rulesVersion string) error {
	return hcs.both(func(c ICacheService) error { return c.InvalidateByRulesVersion(ctx, rulesVersion) })
}

// GetStats sums both tiers; items are counted in L2 only
func (hcs *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	l1, l1Err := hcs.l1.GetStats(ctx)
	l2, l2Err := hcs.l2.GetStats(ctx)
	switch {
	case l1Err != nil && l2Err != nil:
		return nil, errors.Join(l1Err, l2Err)
	case l1Err != nil:
		return l2, nil
	case l2Err != nil:
		return l1, nil
	}

	// an L1 miss that hits L2 is a hit overall
	hits := l1.TotalHits + l2.TotalHits
	misses := l2.TotalMiss
	return &CacheStats{
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: l2.TotalItems,
	}, nil
}

func (hcs *HybridCacheService) Exists(ctx context.Context, key string) (bool, error) {
	if ok, err := hcs.l1.Exists(ctx, key); err == nil && ok {
		return true, nil
	}
	return hcs.l2.Exists(ctx, key)
}

func (hcs *HybridCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return hcs.l1.GetTTL(ctx, key)
}

func (hcs *HybridCacheService) Close() error {
	return hcs.both(func(c ICacheService) error { return c.Close() })
}
