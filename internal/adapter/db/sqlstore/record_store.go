package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "user-table-service/internal/domain/record"
)

// KVEntrySchema represents the database schema for the kv_entries table.
// Each row is one storage slot holding a serialized value.
type KVEntrySchema struct {
	Key       string    `gorm:"column:key;primaryKey;size:191"` // Storage key
	Value     string    `gorm:"type:text;not null"`             // Serialized record list
	UpdatedAt time.Time // Time of the last write
}

// TableName specifies the table name for the KVEntrySchema model.
func (KVEntrySchema) TableName() string {
	return "kv_entries"
}

// Migrate creates or updates the kv_entries table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&KVEntrySchema{}); err != nil {
		return fmt.Errorf("failed to migrate kv_entries: %w", err)
	}
	return nil
}

// RecordStore implements the record store on one row of a SQL key-value table.
type RecordStore struct {
	db  *gorm.DB    // GORM database connection
	key string      // Row key holding the list
	log *zap.Logger // Structured logger for database operations
}

// NewRecordStore creates a new instance of RecordStore.
func NewRecordStore(db *gorm.DB, key string, log *zap.Logger) *RecordStore {
	return &RecordStore{db: db, key: key, log: log}
}

// Load reads the stored list. A missing row yields an empty list.
func (s *RecordStore) Load(ctx context.Context) ([]domain.Record, error) {
	var model KVEntrySchema
	if err := s.db.WithContext(ctx).Where(&KVEntrySchema{Key: s.key}).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Debug("record row not found", zap.String("key", s.key))
			return []domain.Record{}, nil
		}
		s.log.Error("failed to load records from db", zap.Error(err), zap.String("key", s.key))
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	records, err := domain.DecodeList([]byte(model.Value))
	if err != nil {
		s.log.Error("stored records are corrupt", zap.Error(err), zap.String("key", s.key))
		return nil, err
	}
	return records, nil
}

// Save upserts the row holding the list.
func (s *RecordStore) Save(ctx context.Context, records []domain.Record) error {
	data, err := domain.EncodeList(records)
	if err != nil {
		return err
	}

	model := KVEntrySchema{
		Key:       s.key,
		Value:     string(data),
		UpdatedAt: time.Now().UTC(),
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		s.log.Error("failed to save records in db", zap.Error(err), zap.String("key", s.key))
		return fmt.Errorf("failed to save records: %w", err)
	}

	s.log.Debug("records saved in db", zap.String("key", s.key), zap.Int("count", len(records)))
	return nil
}

// Clear deletes the row holding the list.
func (s *RecordStore) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Delete(&KVEntrySchema{Key: s.key}).Error; err != nil {
		s.log.Error("failed to clear records in db", zap.Error(err), zap.String("key", s.key))
		return fmt.Errorf("failed to clear records: %w", err)
	}

	s.log.Info("records cleared in db", zap.String("key", s.key))
	return nil
}
