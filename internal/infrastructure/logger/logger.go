// Package logger builds the service's zap loggers and carries them through
// contexts, gin requests and GORM queries.
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the level, encoding and sink of the root logger
type Config struct {
	Level      string // debug, info, warn, error, fatal
	Format     string // json or console
	Output     string // stdout, stderr or a file path
	TimeFormat string // time layout, RFC3339 with milliseconds when empty
}

const defaultTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// New builds a logger from cfg. Errors and above carry a stack trace.
func New(cfg Config) (*zap.Logger, error) {
	sink, err := openSink(cfg.Output)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(newEncoder(cfg.Format, cfg.TimeFormat), sink, ParseLevel(cfg.Level))
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// ParseLevel maps a level name to zap. Unknown names mean info.
func ParseLevel(name string) zapcore.Level {
	name = strings.ToLower(name)
	if name == "warning" {
		name = "warn"
	}
	level, err := zapcore.ParseLevel(name)
	if err != nil || name == "" {
		return zapcore.InfoLevel
	}
	return level
}

func newEncoder(format, layout string) zapcore.Encoder {
	if layout == "" {
		layout = defaultTimeFormat
	}
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "time"
	enc.EncodeTime = zapcore.TimeEncoderOfLayout(layout)
	enc.EncodeDuration = zapcore.MillisDurationEncoder

	if strings.EqualFold(format, "console") {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(enc)
	}
	return zapcore.NewJSONEncoder(enc)
}

func openSink(output string) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(output) {
	case "", "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", output, err)
	}
	return zapcore.AddSync(f), nil
}
