package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration
type Config struct {
	Level       string
	ServiceName string
	Development bool
}

// Logger wraps zap.Logger with service-level defaults
type Logger struct {
	zap *zap.Logger
}

var (
	global *Logger
	mu     sync.Mutex
)

// Init initializes the global logger
func Init(cfg *Config) error {
	mu.Lock()
	defer mu.Unlock()

	if cfg == nil {
		cfg = &Config{Level: "info", ServiceName: "ticketd"}
	}

	var zapCfg zap.Config
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	base, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	global = &Logger{zap: base.With(zap.String("service", cfg.ServiceName))}
	return nil
}

// Get returns the global logger, initializing a default one if needed
func Get() *Logger {
	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		base, _ := zap.NewProduction(zap.AddCallerSkip(1))
		global = &Logger{zap: base}
	}
	return global
}

// Sync flushes buffered log entries
func Sync() {
	if global != nil {
		_ = global.zap.Sync()
	}
}

// With returns a logger with additional structured fields
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zap: l.zap.With(fields...)}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.zap.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.zap.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.zap.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.zap.Error(msg, fields...) }
func (l *Logger) Fatal(msg string, fields ...zap.Field) { l.zap.Fatal(msg, fields...) }
