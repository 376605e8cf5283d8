package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormConfig configures the zap-backed GORM logger.
type GormConfig struct {
	// Level uses the application log level names; debug and info log every query.
	Level         string
	SlowThreshold time.Duration
	// WithParams renders bound values into logged statements. The SQL store
	// binds the whole record array, so it is off by default.
	WithParams bool
}

// GormLogger routes GORM output to zap, tagged with the request context fields.
type GormLogger struct {
	ZapLogger     *zap.Logger
	SlowThreshold time.Duration
	LogLevel      gormlogger.LogLevel
	WithParams    bool
}

var gormLevels = map[string]gormlogger.LogLevel{
	"silent":  gormlogger.Silent,
	"error":   gormlogger.Error,
	"warn":    gormlogger.Warn,
	"warning": gormlogger.Warn,
	"info":    gormlogger.Info,
	"debug":   gormlogger.Info,
}

// NewGormLogger creates a GORM logger writing to zapLogger.
func NewGormLogger(zapLogger *zap.Logger, cfg GormConfig) *GormLogger {
	level, ok := gormLevels[strings.ToLower(cfg.Level)]
	if !ok {
		level = gormlogger.Warn
	}
	return &GormLogger{
		ZapLogger:     zapLogger.Named("sqlstore"),
		SlowThreshold: cfg.SlowThreshold,
		LogLevel:      level,
		WithParams:    cfg.WithParams,
	}
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.LogLevel = level
	return &clone
}

// ParamsFilter implements gormlogger.ParamsFilter. Dropping the values leaves
// placeholders in the logged statement.
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, params ...any) (string, []any) {
	if l.WithParams {
		return sql, params
	}
	return sql, nil
}

func (l *GormLogger) printf(ctx context.Context, level gormlogger.LogLevel, msg string, data ...any) {
	if l.LogLevel < level {
		return
	}
	sugar := WithContext(ctx, l.ZapLogger).Sugar()
	switch level {
	case gormlogger.Error:
		sugar.Errorf(msg, data...)
	case gormlogger.Warn:
		sugar.Warnf(msg, data...)
	default:
		sugar.Infof(msg, data...)
	}
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, msg, data...)
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, msg, data...)
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, msg, data...)
}

// Trace implements gormlogger.Interface
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	slow := l.SlowThreshold > 0 && elapsed > l.SlowThreshold
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)

	switch {
	case failed && l.LogLevel >= gormlogger.Error:
	case slow && l.LogLevel >= gormlogger.Warn:
	case l.LogLevel >= gormlogger.Info:
	default:
		return
	}

	sql, rows := fc()
	logger := WithContext(ctx, l.ZapLogger)
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}

	switch {
	case failed:
		logger.Error("query failed", append(fields, zap.Error(err))...)
	case slow:
		logger.Warn("slow query", append(fields, zap.Duration("threshold", l.SlowThreshold))...)
	default:
		logger.Debug("query", fields...)
	}
}
