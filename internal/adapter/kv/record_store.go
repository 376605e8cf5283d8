package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-table-service/internal/domain/record"
)

// RedisRecordStore keeps the whole record list as one JSON value under a single Redis key.
// The key has no expiry.
type RedisRecordStore struct {
	client redis.UniversalClient
	key    string
	log    *zap.Logger
}

// NewRedisRecordStore creates a new Redis-backed record store.
func NewRedisRecordStore(client redis.UniversalClient, key string, log *zap.Logger) *RedisRecordStore {
	return &RedisRecordStore{
		client: client,
		key:    key,
		log:    log,
	}
}

// Load reads the stored list. A missing key yields an empty list.
func (s *RedisRecordStore) Load(ctx context.Context) ([]domain.Record, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		s.log.Debug("record key not set", zap.String("key", s.key))
		return []domain.Record{}, nil
	}
	if err != nil {
		s.log.Error("failed to read records from redis", zap.String("key", s.key), zap.Error(err))
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	records, err := domain.DecodeList(data)
	if err != nil {
		s.log.Error("stored records are corrupt", zap.String("key", s.key), zap.Error(err))
		return nil, err
	}
	return records, nil
}

// Save overwrites the stored list.
func (s *RedisRecordStore) Save(ctx context.Context, records []domain.Record) error {
	data, err := domain.EncodeList(records)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		s.log.Error("failed to write records to redis", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("failed to save records: %w", err)
	}

	s.log.Debug("records saved", zap.String("key", s.key), zap.Int("count", len(records)))
	return nil
}

// Clear deletes the key.
func (s *RedisRecordStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		s.log.Error("failed to clear records", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("failed to clear records: %w", err)
	}
	return nil
}
