package resources

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/pnt-cleaner/internal/catalog"
	"github.com/pnt-cleaner/internal/reflist"
	"github.com/pnt-cleaner/internal/rules"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisSource keeps lists as Redis LISTs under <prefix>list:<name> and
// catalogs as HASHes key -> name under <prefix>catalog:<table>.
// Catalogs without a key column are stored as LISTs of names.
type RedisSource struct {
	client redis.UniversalClient
	logger *zap.Logger
	prefix string
}

// NewRedisSource creates a RedisSource on an existing client
func NewRedisSource(client redis.UniversalClient, prefix string, logger *zap.Logger) *RedisSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSource{client: client, logger: logger, prefix: prefix}
}

func (s *RedisSource) listKey(name string) string    { return s.prefix + "list:" + name }
func (s *RedisSource) catalogKey(table string) string { return s.prefix + "catalog:" + table }

// LoadList reads the whole LIST; a missing key is unavailable
func (s *RedisSource) LoadList(ctx context.Context, name string) (reflist.List, error) {
	key := s.listKey(name)
	if err := s.mustExist(ctx, key); err != nil {
		return reflist.List{}, listUnavailable(name, err)
	}

	lines, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return reflist.List{}, listUnavailable(name, fmt.Errorf("lrange %s: %w", key, err))
	}
	s.logger.Debug("Loaded list from Redis", zap.String("key", key), zap.Int("lines", len(lines)))
	return reflist.List{Name: name, Lines: lines}, nil
}

// LoadCatalog reads the catalog; keyed rows are ordered by key
func (s *RedisSource) LoadCatalog(ctx context.Context, spec rules.CatalogSpec) (catalog.Catalog, error) {
	key := s.catalogKey(spec.Table)
	if err := s.mustExist(ctx, key); err != nil {
		return catalog.Catalog{}, catalogUnavailable(spec.Table, err)
	}

	cat := catalog.Catalog{Name: spec.Table}
	if spec.KeyColumn == "" {
		names, err := s.client.LRange(ctx, key, 0, -1).Result()
		if err != nil {
			return catalog.Catalog{}, catalogUnavailable(spec.Table, fmt.Errorf("lrange %s: %w", key, err))
		}
		for _, n := range names {
			cat.Rows = append(cat.Rows, catalog.Row{Key: n, Name: n})
		}
		return cat, nil
	}

	entries, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return catalog.Catalog{}, catalogUnavailable(spec.Table, fmt.Errorf("hgetall %s: %w", key, err))
	}
	for k, n := range entries {
		cat.Rows = append(cat.Rows, catalog.Row{Key: k, Name: n})
	}
	sort.Slice(cat.Rows, func(i, j int) bool { return keyLess(cat.Rows[i].Key, cat.Rows[j].Key) })
	return cat, nil
}

// StoreList replaces a list
func (s *RedisSource) StoreList(ctx context.Context, list reflist.List) error {
	key := s.listKey(list.Name)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(list.Lines) > 0 {
			pipe.RPush(ctx, key, toArgs(list.Lines)...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store list %s: %w", list.Name, err)
	}
	return nil
}

// StoreCatalog replaces a catalog
func (s *RedisSource) StoreCatalog(ctx context.Context, spec rules.CatalogSpec, cat catalog.Catalog) error {
	key := s.catalogKey(spec.Table)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(cat.Rows) == 0 {
			return nil
		}
		if spec.KeyColumn == "" {
			names := make([]string, len(cat.Rows))
			for i, r := range cat.Rows {
				names[i] = r.Name
			}
			pipe.RPush(ctx, key, toArgs(names)...)
			return nil
		}
		fields := make([]interface{}, 0, len(cat.Rows)*2)
		for _, r := range cat.Rows {
			fields = append(fields, r.Key, r.Name)
		}
		pipe.HSet(ctx, key, fields...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store catalog %s: %w", spec.Table, err)
	}
	return nil
}

func (s *RedisSource) mustExist(ctx context.Context, key string) error {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("exists %s: %w", key, err)
	}
	if n == 0 {
		return errors.New("key " + key + " not found")
	}
	return nil
}

// keyLess orders numeric keys numerically and everything else lexically
func keyLess(a, b string) bool {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return ai < bi
	}
	return a < b
}

func toArgs(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
