package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-table-service/internal/domain/record"
)

// RecordCache defines the interface for caching the serialized record list.
type RecordCache interface {
	// Get retrieves the cached list.
	// Returns nil without error on a cache miss.
	Get(ctx context.Context) ([]domain.Record, error)

	// Set stores the list with the configured TTL.
	Set(ctx context.Context, records []domain.Record) error

	// Delete removes the cached list.
	Delete(ctx context.Context) error
}

// RedisRecordCache implements RecordCache using Redis as the backing store.
type RedisRecordCache struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisRecordCache creates a new Redis-backed record cache for the given storage key.
func NewRedisRecordCache(client redis.UniversalClient, storageKey string, ttl time.Duration, log *zap.Logger) *RedisRecordCache {
	return &RedisRecordCache{
		client: client,
		key:    CacheKey(storageKey),
		ttl:    ttl,
		log:    log,
	}
}

// CacheKey returns the Redis key caching the list stored under storageKey.
func CacheKey(storageKey string) string {
	return fmt.Sprintf("cache:%s", storageKey)
}

// Get retrieves the record list from Redis cache.
func (c *RedisRecordCache) Get(ctx context.Context) ([]domain.Record, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		// Cache miss - not an error
		c.log.Debug("cache miss", zap.String("key", c.key))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.String("key", c.key), zap.Error(err))
		return nil, err
	}

	records, err := domain.DecodeList(data)
	if err != nil {
		c.log.Error("failed to unmarshal cached records", zap.String("key", c.key), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.String("key", c.key), zap.Int("count", len(records)))
	return records, nil
}

// Set stores the record list in Redis cache with TTL.
func (c *RedisRecordCache) Set(ctx context.Context, records []domain.Record) error {
	data, err := domain.EncodeList(records)
	if err != nil {
		c.log.Error("failed to marshal records for cache", zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.String("key", c.key), zap.Error(err))
		return err
	}

	c.log.Debug("cached records", zap.Int("count", len(records)), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete removes the record list from Redis cache.
func (c *RedisRecordCache) Delete(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		c.log.Error("failed to delete from cache", zap.String("key", c.key), zap.Error(err))
		return err
	}

	c.log.Debug("deleted from cache", zap.String("key", c.key))
	return nil
}
