package kv

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-table-service/internal/domain/record"
)

const testKey = "users-crud-v1"

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func TestRedisRecordStore_LoadMissingKey(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewRedisRecordStore(client, testKey, zaptest.NewLogger(t))

	records, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestRedisRecordStore_SaveAndLoad(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisRecordStore(client, testKey, zaptest.NewLogger(t))
	ctx := context.Background()

	want := []domain.Record{
		{Name: "John Doe", Email: "john@company.com", ID: "EMP-1001", Salary: 5150, DOB: "1992-03-14"},
		{Name: "Patricia Foe", Email: "patricia@company.com", ID: "EMP-1002", Salary: 6120, DOB: "1990-11-02"},
	}
	require.NoError(t, store.Save(ctx, want))

	// Stored under the single key without expiry
	raw, err := mr.Get(testKey)
	require.NoError(t, err)
	assert.Contains(t, raw, `"id":"EMP-1001"`)
	assert.Zero(t, mr.TTL(testKey))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Save is a full overwrite
	require.NoError(t, store.Save(ctx, want[1:]))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want[1:], got)
}

func TestRedisRecordStore_Clear(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisRecordStore(client, testKey, zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []domain.Record{{ID: "a"}}))
	require.NoError(t, store.Clear(ctx))

	assert.False(t, mr.Exists(testKey))
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisRecordStore_CorruptValue(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisRecordStore(client, testKey, zaptest.NewLogger(t))

	require.NoError(t, mr.Set(testKey, "not json"))

	_, err := store.Load(context.Background())
	assert.ErrorContains(t, err, "decode records")
}

func TestRedisRecordStore_ConnectionError(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisRecordStore(client, testKey, zaptest.NewLogger(t))
	mr.Close()

	_, err := store.Load(context.Background())
	assert.ErrorContains(t, err, "failed to load records")

	err = store.Save(context.Background(), nil)
	assert.ErrorContains(t, err, "failed to save records")
}
