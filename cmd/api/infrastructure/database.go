package infrastructure

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"user-table-service/internal/adapter/db/sqlstore"
	"user-table-service/internal/config"
	"user-table-service/pkg/logger"
)

// dialector picks the GORM driver for the configured storage driver.
func dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.Storage.Driver {
	case config.StorageSQLite:
		return sqlite.Open(cfg.Storage.SQLitePath), nil
	case config.StoragePostgres:
		return pgdriver.Open(cfg.DB.DSN()), nil
	default:
		return nil, fmt.Errorf("storage driver %q has no SQL dialect", cfg.Storage.Driver)
	}
}

// NewDatabase opens the SQL record store database and migrates its schema.
func NewDatabase(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	gormLogger := logger.NewGormLogger(l, logger.GormConfig{
		Level:         cfg.Logger.Level,
		SlowThreshold: time.Duration(cfg.Logger.SlowQuerySeconds * float64(time.Second)),
		WithParams:    cfg.Logger.SQLParams,
	})

	db, err := gorm.Open(d, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Storage.Driver == config.StorageSQLite {
		// SQLite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.DB.ConnMaxLifetime) * time.Second)
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DB.ConnMaxIdleTime) * time.Second)
	}

	if err := sqlstore.Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	l.Info("database connected successfully",
		zap.String("driver", cfg.Storage.Driver),
		zap.Int("max_open_conns", sqlDB.Stats().MaxOpenConnections),
	)

	return db, nil
}

// CloseDatabase closes the database connection
func CloseDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
