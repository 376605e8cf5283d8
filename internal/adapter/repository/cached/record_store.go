package cached

import (
	"context"

	"go.uber.org/zap"

	"user-table-service/internal/adapter/cache"
	domain "user-table-service/internal/domain/record"
	"user-table-service/internal/usecase/record"
)

// RecordStore implements record.Store with caching support.
// It wraps a persistent store and a cache implementation. The table reads the
// store once at startup, so the cache serves restarts that happen before the
// next write.
type RecordStore struct {
	store record.Store
	cache cache.RecordCache
	log   *zap.Logger
}

var _ record.Store = (*RecordStore)(nil)

// NewRecordStore creates a new instance of RecordStore.
func NewRecordStore(store record.Store, cache cache.RecordCache, log *zap.Logger) *RecordStore {
	return &RecordStore{
		store: store,
		cache: cache,
		log:   log,
	}
}

// Load retrieves the record list using the cache-aside pattern.
func (r *RecordStore) Load(ctx context.Context) ([]domain.Record, error) {
	if r.cache != nil {
		records, err := r.cache.Get(ctx)
		if err != nil {
			r.log.Warn("cache get error, falling back to store", zap.Error(err))
		} else if records != nil {
			r.log.Debug("records retrieved from cache", zap.Int("count", len(records)))
			return records, nil
		}
	}

	records, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, records); err != nil {
			r.log.Warn("failed to cache records", zap.Error(err))
		}
	}

	// The inner store may hand out its own slice
	return domain.Clone(records), nil
}

// Save writes to the store and invalidates the cache.
func (r *RecordStore) Save(ctx context.Context, records []domain.Record) error {
	if err := r.store.Save(ctx, records); err != nil {
		return err
	}
	r.invalidate(ctx, "save")
	return nil
}

// Clear clears the store and invalidates the cache.
func (r *RecordStore) Clear(ctx context.Context) error {
	if err := r.store.Clear(ctx); err != nil {
		return err
	}
	r.invalidate(ctx, "clear")
	return nil
}

func (r *RecordStore) invalidate(ctx context.Context, op string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx); err != nil {
		r.log.Warn("failed to invalidate cache", zap.String("op", op), zap.Error(err))
	}
}
