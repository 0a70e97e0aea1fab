// Package logger is a thin shim over zap's SugaredLogger so call sites
// can log without threading a logger through every constructor.
package logger

import (
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

var singleton atomic.Pointer[zap.SugaredLogger]

func init() {
	singleton.Store(zap.NewNop().Sugar())
}

func get() *zap.SugaredLogger {
	return singleton.Load()
}

// Initialize builds the process logger. Unknown levels fall back to info.
func Initialize(level, format string) error {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if format == FormatConsole {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	singleton.Store(l.Sugar())
	return nil
}

// Set replaces the process logger. Intended for tests.
func Set(l *zap.Logger) {
	singleton.Store(l.Sugar())
}

// Sync flushes buffered log entries.
func Sync() {
	_ = get().Sync()
}

func Debugf(msg string, args ...any)          { get().Debugf(msg, args...) }
func Debugw(msg string, keysAndValues ...any) { get().Debugw(msg, keysAndValues...) }
func Infof(msg string, args ...any)           { get().Infof(msg, args...) }
func Infow(msg string, keysAndValues ...any)  { get().Infow(msg, keysAndValues...) }
func Warnf(msg string, args ...any)           { get().Warnf(msg, args...) }
func Warnw(msg string, keysAndValues ...any)  { get().Warnw(msg, keysAndValues...) }
func Errorf(msg string, args ...any)          { get().Errorf(msg, args...) }
func Errorw(msg string, keysAndValues ...any) { get().Errorw(msg, keysAndValues...) }

// Fatalf logs at error level and exits the process.
func Fatalf(msg string, args ...any) { get().Fatalf(msg, args...) }
