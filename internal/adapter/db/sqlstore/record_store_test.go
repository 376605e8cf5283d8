package sqlstore

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	domain "user-table-service/internal/domain/record"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// Every pooled connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func sampleRecords() []domain.Record {
	return []domain.Record{
		{Name: "John Doe", Email: "john@company.com", ID: "EMP-1001", Salary: 5150, DOB: "1992-03-14"},
		{Name: "Patricia Foe", Email: "patricia@company.com", ID: "EMP-1002", Salary: 6120, DOB: "1990-11-02"},
	}
}

func TestRecordStore_LoadEmpty(t *testing.T) {
	store := NewRecordStore(setupTestDB(t), "users-crud-v1", zaptest.NewLogger(t))

	records, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestRecordStore_SaveIsUpsert(t *testing.T) {
	db := setupTestDB(t)
	store := NewRecordStore(db, "users-crud-v1", zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleRecords()))
	require.NoError(t, store.Save(ctx, sampleRecords()[:1]))

	var count int64
	require.NoError(t, db.Model(&KVEntrySchema{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords()[:1], got)
}

func TestRecordStore_KeysAreIsolated(t *testing.T) {
	db := setupTestDB(t)
	log := zaptest.NewLogger(t)
	ctx := context.Background()

	a := NewRecordStore(db, "a", log)
	b := NewRecordStore(db, "b", log)

	require.NoError(t, a.Save(ctx, sampleRecords()))

	got, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, b.Clear(ctx))
	got, err = a.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRecordStore_Clear(t *testing.T) {
	store := NewRecordStore(setupTestDB(t), "users-crud-v1", zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleRecords()))
	require.NoError(t, store.Clear(ctx))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecordStore_CorruptRow(t *testing.T) {
	db := setupTestDB(t)
	store := NewRecordStore(db, "users-crud-v1", zaptest.NewLogger(t))

	require.NoError(t, db.Create(&KVEntrySchema{Key: "users-crud-v1", Value: "{broken"}).Error)

	_, err := store.Load(context.Background())
	assert.ErrorContains(t, err, "decode records")
}
