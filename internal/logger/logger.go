package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global = zap.NewNop().Sugar()

// Init initializes the global logger. With logging disabled every call is a
// no-op. Console output goes to stderr so stdout stays free for renderers.
func Init(enabled bool, levelStr, logFile string, console bool) error {
	if !enabled {
		global = zap.NewNop().Sugar()
		return nil
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(levelStr))
	cfg.Sampling = nil
	cfg.OutputPaths = nil
	cfg.ErrorOutputPaths = []string{"stderr"}

	if logFile != "" {
		dir := filepath.Dir(logFile)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		cfg.OutputPaths = append(cfg.OutputPaths, logFile)
	}
	if console || len(cfg.OutputPaths) == 0 {
		cfg.OutputPaths = append(cfg.OutputPaths, "stderr")
	}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	global = l.Named("logwatch").Sugar()
	return nil
}

// Set replaces the global logger, mainly for tests.
func Set(l *zap.SugaredLogger) {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	global = l
}

// L returns the global sugared logger for structured calls.
func L() *zap.SugaredLogger {
	return global
}

// Sync flushes buffered log entries.
func Sync() {
	_ = global.Sync()
}

func parseLevel(levelStr string) zapcore.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Debugf logs a debug message.
func Debugf(format string, args ...interface{}) {
	global.Debugf(format, args...)
}

// Infof logs an info message.
func Infof(format string, args ...interface{}) {
	global.Infof(format, args...)
}

// Warnf logs a warning.
func Warnf(format string, args ...interface{}) {
	global.Warnf(format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) {
	global.Errorf(format, args...)
}
