package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowThreshold = 200 * time.Millisecond

// GormConfig tunes the GORM logger
type GormConfig struct {
	Level gormlogger.LogLevel
	// SlowThreshold flags statements slower than this. Negative disables the
	// check; zero means 200ms.
	SlowThreshold time.Duration
	// LogNotFound logs gorm.ErrRecordNotFound as an error
	LogNotFound bool
}

// GormLogger writes GORM statements to zap with the request, shipment and
// trace of the calling context attached.
type GormLogger struct {
	log *zap.Logger
	cfg GormConfig
}

// NewGormLogger returns a gormlogger.Interface backed by log
func NewGormLogger(log *zap.Logger, cfg GormConfig) *GormLogger {
	if cfg.SlowThreshold == 0 {
		cfg.SlowThreshold = defaultSlowThreshold
	}
	return &GormLogger{log: log.Named("gorm"), cfg: cfg}
}

// LogMode returns a copy logging at level
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.cfg.Level = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, format string, args ...any) {
	l.printf(ctx, gormlogger.Info, format, args)
}

func (l *GormLogger) Warn(ctx context.Context, format string, args ...any) {
	l.printf(ctx, gormlogger.Warn, format, args)
}

func (l *GormLogger) Error(ctx context.Context, format string, args ...any) {
	l.printf(ctx, gormlogger.Error, format, args)
}

// Trace logs one executed statement. Failures log at error, slow statements
// at warn and everything else at debug when the level is Info.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	level := l.cfg.Level
	if level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && (l.cfg.LogNotFound || !errors.Is(err, gormlogger.ErrRecordNotFound))
	slow := l.cfg.SlowThreshold > 0 && elapsed > l.cfg.SlowThreshold

	if err != nil && !failed {
		return
	}
	if !(failed && level >= gormlogger.Error) && !(slow && level >= gormlogger.Warn) && level < gormlogger.Info {
		return
	}

	sql, rows := fc()
	log := l.scoped(ctx).With(
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	)
	switch {
	case failed:
		log.Error("sql error", zap.Error(err))
	case slow:
		log.Warn("slow sql", zap.Duration("threshold", l.cfg.SlowThreshold))
	default:
		log.Debug("sql")
	}
}

func (l *GormLogger) printf(ctx context.Context, at gormlogger.LogLevel, format string, args []any) {
	if l.cfg.Level < at {
		return
	}
	sugar := l.scoped(ctx).Sugar()
	switch at {
	case gormlogger.Error:
		sugar.Errorf(format, args...)
	case gormlogger.Warn:
		sugar.Warnf(format, args...)
	default:
		sugar.Infof(format, args...)
	}
}

func (l *GormLogger) scoped(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return l.log
	}
	fields := make([]zap.Field, 0, 2)
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetShipmentID(ctx); id != "" {
		fields = append(fields, zap.String("shipment_id", id))
	}
	return WithTraceContext(ctx, l.log.With(fields...))
}

// GormLevel maps a log level name to a GORM level. debug and info both log
// every statement; unknown names mean warn.
func GormLevel(name string) gormlogger.LogLevel {
	switch strings.ToLower(name) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
