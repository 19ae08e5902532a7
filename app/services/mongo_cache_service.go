package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pnt-cleaner/app/models"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoCacheService persistent cache in MongoDB with an in-memory LRU in front
type MongoCacheService struct {
	collection   *mongo.Collection
	l1Cache      *lru.Cache[string, *models.CleanedRecord]
	rulesVersion string
	logger       *zap.Logger

	l1Hits    atomic.Int64
	mongoHits atomic.Int64
	misses    atomic.Int64
}

// NewMongoCacheService creates a MongoCacheService over collection
func NewMongoCacheService(collection *mongo.Collection, l1Size int, rulesVersion string, logger *zap.Logger) (*MongoCacheService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l1Cache, err := lru.New[string, *models.CleanedRecord](l1Size)
	if err != nil {
		return nil, fmt.Errorf("create LRU cache: %w", err)
	}
	return &MongoCacheService{
		collection:   collection,
		l1Cache:      l1Cache,
		rulesVersion: rulesVersion,
		logger:       logger,
	}, nil
}

// EnsureIndexes creates the cache collection indexes
func (mcs *MongoCacheService) EnsureIndexes(ctx context.Context) error {
	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "fingerprint", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{bson.E{Key: "rules_version", Value: 1}},
		},
		{
			Keys: bson.D{bson.E{Key: "record_id", Value: 1}},
		},
		{
			Keys: bson.D{bson.E{Key: "last_accessed", Value: 1}},
		},
	}
	if _, err := mcs.collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("create cache indexes: %w", err)
	}
	return nil
}

// Get looks in L1 first, then MongoDB
func (mcs *MongoCacheService) Get(ctx context.Context, key string) (*models.CleanedRecord, bool, error) {
	if result, found := mcs.l1Cache.Get(key); found {
		mcs.l1Hits.Add(1)
		return result, true, nil
	}

	var entry models.RecordCache
	err := mcs.collection.FindOne(ctx, bson.M{"fingerprint": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		mcs.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query MongoDB cache: %w", err)
	}
	if !entry.IsValidRulesVersion(mcs.rulesVersion) {
		mcs.misses.Add(1)
		return nil, false, nil
	}

	result, err := entry.Decode()
	if err != nil {
		return nil, false, err
	}
	mcs.mongoHits.Add(1)
	mcs.touch(ctx, key)
	mcs.l1Cache.Add(key, result)

	mcs.logger.Debug("MongoDB cache hit", zap.String("fingerprint", key), zap.String("record_id", entry.RecordID))
	return result, true, nil
}

// touch updates access statistics; failures are only logged
func (mcs *MongoCacheService) touch(ctx context.Context, key string) {
	update := bson.M{
		"$set": bson.M{"last_accessed": time.Now()},
		"$inc": bson.M{"access_count": 1},
	}
	if _, err := mcs.collection.UpdateOne(ctx, bson.M{"fingerprint": key}, update); err != nil {
		mcs.logger.Warn("Cannot update cache access stats", zap.Error(err))
	}
}

func (mcs *MongoCacheService) Set(ctx context.Context, key string, result *models.CleanedRecord) error {
	mcs.l1Cache.Add(key, result)

	entry, err := models.NewRecordCache(key, mcs.rulesVersion, result)
	if err != nil {
		return err
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := mcs.collection.ReplaceOne(ctx, bson.M{"fingerprint": key}, entry, opts); err != nil {
		mcs.logger.Error("MongoDB cache write failed", zap.Error(err), zap.String("fingerprint", key))
		return fmt.Errorf("write MongoDB cache: %w", err)
	}
	return nil
}

func (mcs *MongoCacheService) Delete(ctx context.Context, key string) error {
	mcs.l1Cache.Remove(key)
	if _, err := mcs.collection.DeleteOne(ctx, bson.M{"fingerprint": key}); err != nil {
		return fmt.Errorf("delete from MongoDB cache: %w", err)
	}
	return nil
}

func (mcs *MongoCacheService) Clear(ctx context.Context) error {
	mcs.l1Cache.Purge()
	if _, err := mcs.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear MongoDB cache: %w", err)
	}
	mcs.l1Hits.Store(0)
	mcs.mongoHits.Store(0)
	mcs.misses.Store(0)
	return nil
}

// InvalidateByRulesVersion deletes entries of every other rules version
func (mcs *MongoCacheService) InvalidateByRulesVersion(ctx context.Context, rulesVersion string) error {
	mcs.l1Cache.Purge()

	result, err := mcs.collection.DeleteMany(ctx, bson.M{"rules_version": bson.M{"$ne": rulesVersion}})
	if err != nil {
		return fmt.Errorf("invalidate MongoDB cache: %w", err)
	}

	mcs.logger.Info("MongoDB cache invalidated",
		zap.String("rules_version", rulesVersion),
		zap.Int64("deleted_count", result.DeletedCount))
	return nil
}

func (mcs *MongoCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	count, err := mcs.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count MongoDB cache documents: %w", err)
	}

	hits := mcs.l1Hits.Load() + mcs.mongoHits.Load()
	misses := mcs.misses.Load()
	return &CacheStats{
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: count,
	}, nil
}

func (mcs *MongoCacheService) Exists(ctx context.Context, key string) (bool, error) {
	if mcs.l1Cache.Contains(key) {
		return true, nil
	}
	count, err := mcs.collection.CountDocuments(ctx, bson.M{"fingerprint": key})
	if err != nil {
		return false, fmt.Errorf("check MongoDB cache: %w", err)
	}
	return count > 0, nil
}

// GetTTL always 0; MongoDB entries live until invalidated
func (mcs *MongoCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return 0, nil
}

// Close is a no-op; the client belongs to the caller
func (mcs *MongoCacheService) Close() error { return nil }

// L1Stats counters of the in-memory layer
func (mcs *MongoCacheService) L1Stats() map[string]interface{} {
	return map[string]interface{}{
		"l1_size":    mcs.l1Cache.Len(),
		"l1_hits":    mcs.l1Hits.Load(),
		"mongo_hits": mcs.mongoHits.Load(),
		"misses":     mcs.misses.Load(),
	}
}

// WarmUp loads the most accessed entries of the current rules version into L1
func (mcs *MongoCacheService) WarmUp(ctx context.Context, limit int) error {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "access_count", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := mcs.collection.Find(ctx, bson.M{"rules_version": mcs.rulesVersion}, opts)
	if err != nil {
		return fmt.Errorf("warm up cache: %w", err)
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var entry models.RecordCache
		if err := cursor.Decode(&entry); err != nil {
			mcs.logger.Warn("Cannot decode cache entry during warm up", zap.Error(err))
			continue
		}
		result, err := entry.Decode()
		if err != nil {
			mcs.logger.Warn("Cannot decode cached record during warm up", zap.Error(err))
			continue
		}
		mcs.l1Cache.Add(entry.Fingerprint, result)
		count++
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("warm up cache: %w", err)
	}

	mcs.logger.Info("Cache warm up finished", zap.Int("loaded_items", count), zap.Int("l1_size", mcs.l1Cache.Len()))
	return nil
}
