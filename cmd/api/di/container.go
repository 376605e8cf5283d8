package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-table-service/cmd/api/infrastructure"
	"user-table-service/internal/adapter/cache"
	"user-table-service/internal/adapter/db/sqlstore"
	ginhandler "user-table-service/internal/adapter/gin/handler"
	ginmiddleware "user-table-service/internal/adapter/gin/middleware"
	grpcmiddleware "user-table-service/internal/adapter/grpc/middleware"
	"user-table-service/internal/adapter/kv"
	"user-table-service/internal/adapter/randomuser"
	"user-table-service/internal/adapter/repository/cached"
	"user-table-service/internal/config"
	"user-table-service/internal/observability"
	"user-table-service/internal/usecase/record"
	redisclient "user-table-service/pkg/redis"
	"user-table-service/pkg/version"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	Table       *record.Table
	Registry    *prometheus.Registry
	Metrics     *observability.Metrics
	RateLimiter *grpcmiddleware.RateLimiter
	TokenBucket *ginmiddleware.TokenBucket

	RecordHandler *ginhandler.RecordHandler
	WebHandler    *ginhandler.WebHandler
	SystemHandler *ginhandler.SystemHandler
}

// NewContainer creates and initializes all application dependencies.
// The record list is loaded from storage before it returns.
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (c *Container, err error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c = &Container{Config: cfg, Logger: l}
	defer func() {
		if err != nil {
			_ = c.Close()
			c = nil
		}
	}()

	c.RedisClient, err = infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		return c, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	store, err := c.newStore()
	if err != nil {
		return c, err
	}

	fetcher := randomuser.NewClient(
		cfg.Sync.URL,
		time.Duration(cfg.Sync.TimeoutSeconds)*time.Second,
		l,
	)

	c.Table = record.New(store, fetcher, l,
		record.WithPageSize(cfg.App.PageSize),
		record.WithSyncBatchSize(cfg.Sync.BatchSize),
		record.WithSessionTTL(time.Duration(cfg.App.SessionTTLMinutes)*time.Minute),
	)
	if err := c.Table.Load(ctx, record.LoadOptions{
		Reset: cfg.Storage.ResetOnStart,
		Seed:  cfg.Storage.SeedSampleData,
	}); err != nil {
		return c, err
	}

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = observability.NewMetrics(c.Registry, c.Table.Count)

	if c.RedisClient != nil {
		c.RateLimiter = grpcmiddleware.NewRateLimiter(
			c.RedisClient.Client,
			grpcmiddleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				WindowSeconds:     cfg.RateLimit.WindowSeconds,
				Enabled:           cfg.RateLimit.Enabled,
			},
			l,
		)
		c.TokenBucket = ginmiddleware.NewTokenBucket(
			c.RedisClient.Client,
			ginmiddleware.TokenBucketConfig{
				Enabled:           cfg.RateLimit.Enabled,
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				BurstCapacity:     cfg.RateLimit.BurstCapacity,
			},
			l,
		)
	}

	c.RecordHandler = ginhandler.NewRecordHandler(c.Table, l)
	c.WebHandler, err = ginhandler.NewWebHandler(c.Table, l, cfg.App.SessionTTLMinutes*60, cfg.App.SecureCookies)
	if err != nil {
		return c, fmt.Errorf("failed to parse templates: %w", err)
	}
	c.SystemHandler = ginhandler.NewSystemHandler(cfg.Logger.ServiceName, version.Get(), c.healthChecks())

	return c, nil
}

// newStore builds the record store for the configured driver.
func (c *Container) newStore() (record.Store, error) {
	cfg := c.Config

	if cfg.Storage.Driver == config.StorageRedis {
		c.Logger.Info("using redis record store", zap.String("key", cfg.Storage.Key))
		return kv.NewRedisRecordStore(c.RedisClient.Client, cfg.Storage.Key, c.Logger), nil
	}

	db, err := infrastructure.NewDatabase(cfg, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c.DB = db

	var store record.Store = sqlstore.NewRecordStore(db, cfg.Storage.Key, c.Logger)
	if cfg.Storage.CacheEnabled {
		recordCache := cache.NewRedisRecordCache(
			c.RedisClient.Client,
			cfg.Storage.Key,
			time.Duration(cfg.Storage.CacheTTLSeconds)*time.Second,
			c.Logger,
		)
		store = cached.NewRecordStore(store, recordCache, c.Logger)
	}

	c.Logger.Info("using sql record store",
		zap.String("driver", cfg.Storage.Driver),
		zap.Bool("cache", cfg.Storage.CacheEnabled),
	)
	return store, nil
}

func (c *Container) healthChecks() map[string]ginhandler.Pinger {
	checks := map[string]ginhandler.Pinger{}
	if c.RedisClient != nil {
		checks["redis"] = c.RedisClient.HealthCheck
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			checks["database"] = sqlDB.PingContext
		}
	}
	return checks
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
