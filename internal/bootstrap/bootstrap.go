// Package bootstrap builds the cleaning engine and its backing clients from
// application configuration. Both the API server and the worker CLI start here.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meilisearch/meilisearch-go"
	"github.com/pnt-cleaner/app/config"
	"github.com/pnt-cleaner/app/services"
	"github.com/pnt-cleaner/internal/engine"
	"github.com/pnt-cleaner/internal/resources"
	"github.com/pnt-cleaner/internal/rules"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const connectTimeout = 10 * time.Second

// Deps lazily opened clients shared by one process
type Deps struct {
	Config *config.Config
	Fs     afero.Fs
	Logger *zap.Logger

	redis    *redis.Client
	postgres *pgxpool.Pool
	mongo    *mongo.Client
	meili    meilisearch.ServiceManager
}

// Engine the loaded rule set, its resources and the record processor
type Engine struct {
	Rules     *rules.Config
	Resources *resources.Set
	Processor *engine.Processor
}

// New creates Deps; a nil fs means the OS filesystem
func New(cfg *config.Config, fs afero.Fs, logger *zap.Logger) *Deps {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deps{Config: cfg, Fs: fs, Logger: logger}
}

// UseRedis replaces the Redis client, e.g. with one bound to miniredis
func (d *Deps) UseRedis(client *redis.Client) { d.redis = client }

// Redis the Redis client, connected on first use
func (d *Deps) Redis(ctx context.Context) (*redis.Client, error) {
	if d.redis != nil {
		return d.redis, nil
	}
	client, err := services.DialRedis(ctx, d.Config.Redis.URL)
	if err != nil {
		return nil, err
	}
	d.Logger.Info("Connected to Redis")
	d.redis = client
	return client, nil
}

// Postgres the connection pool, connected on first use
func (d *Deps) Postgres(ctx context.Context) (*pgxpool.Pool, error) {
	if d.postgres != nil {
		return d.postgres, nil
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, d.Config.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("create Postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to Postgres: %w", err)
	}
	d.Logger.Info("Connected to Postgres")
	d.postgres = pool
	return pool, nil
}

// Mongo the configured database, connected on first use
func (d *Deps) Mongo(ctx context.Context) (*mongo.Database, error) {
	if d.mongo == nil {
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(d.Config.Mongo.URL))
		if err != nil {
			return nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			client.Disconnect(context.Background())
			return nil, fmt.Errorf("ping MongoDB: %w", err)
		}
		d.Logger.Info("Connected to MongoDB", zap.String("database", d.Config.Mongo.Database))
		d.mongo = client
	}
	return d.mongo.Database(d.Config.Mongo.Database), nil
}

// Meili the Meilisearch client
func (d *Deps) Meili() meilisearch.ServiceManager {
	if d.meili == nil {
		d.meili = meilisearch.New(d.Config.Meilisearch.URL, meilisearch.WithAPIKey(d.Config.Meilisearch.MasterKey))
	}
	return d.meili
}

// Close releases every opened client
func (d *Deps) Close(ctx context.Context) error {
	var errs []error
	if d.redis != nil {
		errs = append(errs, d.redis.Close())
	}
	if d.postgres != nil {
		d.postgres.Close()
	}
	if d.mongo != nil {
		errs = append(errs, d.mongo.Disconnect(ctx))
	}
	return errors.Join(errs...)
}

// LoadRules reads the rules file, or the embedded rule set when none is configured
func (d *Deps) LoadRules() (*rules.Config, error) {
	return rules.Load(d.Fs, d.Config.Resources.RulesFile)
}

// ResourceSources chains the configured list and catalog sources in order.
// Postgres and Meilisearch only serve catalogs.
func (d *Deps) ResourceSources(ctx context.Context) (resources.ChainListSource, resources.ChainCatalogSource, error) {
	var lists resources.ChainListSource
	var catalogs resources.ChainCatalogSource

	for _, name := range d.Config.Resources.Sources {
		switch name {
		case "file":
			src := resources.NewFileSource(d.Fs, d.Config.Resources.Dir)
			lists = append(lists, src)
			catalogs = append(catalogs, src)
		case "redis":
			client, err := d.Redis(ctx)
			if err != nil {
				return nil, nil, err
			}
			src := resources.NewRedisSource(client, d.Config.Redis.Prefix, d.Logger)
			lists = append(lists, src)
			catalogs = append(catalogs, src)
		case "postgres":
			pool, err := d.Postgres(ctx)
			if err != nil {
				return nil, nil, err
			}
			catalogs = append(catalogs, resources.NewPostgresSource(pool, d.Logger))
		case "meili":
			catalogs = append(catalogs, resources.NewMeiliSource(d.Meili(), d.Config.Meilisearch.IndexPrefix, d.Logger))
		default:
			return nil, nil, fmt.Errorf("unknown resource source %q", name)
		}
	}
	return lists, catalogs, nil
}

// BuildEngine loads rules and resources and builds the record processor
func (d *Deps) BuildEngine(ctx context.Context) (*Engine, error) {
	rc, err := d.LoadRules()
	if err != nil {
		return nil, err
	}

	lists, catalogs, err := d.ResourceSources(ctx)
	if err != nil {
		return nil, err
	}
	var listSrc resources.ListSource
	if len(lists) > 0 {
		listSrc = lists
	}
	set, err := resources.NewLoader(listSrc, catalogs, d.Logger).Load(ctx, rc)
	if err != nil {
		return nil, fmt.Errorf("load resources: %w", err)
	}

	var opts []engine.Option
	if d.Config.Cache.L1Size > 0 {
		opts = append(opts, engine.WithResolverCache(d.Config.Cache.L1Size))
	}
	dispatcher, err := engine.NewDispatcher(rc, set, opts...)
	if err != nil {
		return nil, err
	}

	d.Logger.Info("Cleaning engine ready",
		zap.String("rules_version", rc.Version),
		zap.Int("lists", len(set.ListNames())),
		zap.Int("catalogs", len(set.CatalogNames())))

	return &Engine{
		Rules:     rc,
		Resources: set,
		Processor: engine.NewProcessor(dispatcher, d.Config.Database.IDColumn, d.Logger),
	}, nil
}

// PoolConfig the worker pool settings
func (d *Deps) PoolConfig() engine.PoolConfig {
	return engine.PoolConfig{
		Workers:   d.Config.Worker.Workers,
		BatchSize: d.Config.Worker.BatchSize,
		Strict:    d.Config.Worker.Strict,
	}
}

// NewCache builds the configured result cache; nil when caching is disabled
func (d *Deps) NewCache(ctx context.Context, rulesVersion string) (services.ICacheService, error) {
	cfg := d.Config.Cache
	if !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Backend {
	case "memory":
		return services.NewLRUCacheService(cfg.L1Size, cfg.L1TTL), nil
	case "redis":
		client, err := d.Redis(ctx)
		if err != nil {
			return nil, err
		}
		return services.NewRedisCacheService(client, d.Config.Redis.Prefix, d.Config.Redis.CacheTTL, d.Logger), nil
	case "hybrid":
		client, err := d.Redis(ctx)
		if err != nil {
			return nil, err
		}
		db, err := d.Mongo(ctx)
		if err != nil {
			return nil, err
		}
		mongoCache, err := services.NewMongoCacheService(db.Collection(d.Config.Mongo.CacheCollection), cfg.L1Size, rulesVersion, d.Logger)
		if err != nil {
			return nil, err
		}
		if err := mongoCache.EnsureIndexes(ctx); err != nil {
			d.Logger.Warn("Cannot create cache indexes", zap.Error(err))
		}
		if err := mongoCache.WarmUp(ctx, cfg.L1Size/2); err != nil {
			d.Logger.Warn("Cannot warm up cache", zap.Error(err))
		}
		redisCache := services.NewRedisCacheService(client, d.Config.Redis.Prefix, d.Config.Redis.CacheTTL, d.Logger)
		return services.NewHybridCacheService(redisCache, mongoCache, d.Logger), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
