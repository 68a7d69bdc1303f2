// Package logger holds the process-wide structured logger. It is a no-op
// until Initialize is called, so library packages can log unconditionally.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the global logger instance
	Logger *zap.SugaredLogger
	// JSONOutput reports whether JSON output is enabled
	JSONOutput bool
)

func init() {
	Logger = zap.NewNop().Sugar()
}

// ParseLevel maps a level name ("debug", "info", "warn", "error") to a zap
// level. The empty string means warn.
func ParseLevel(name string) (zapcore.Level, error) {
	if strings.TrimSpace(name) == "" {
		return zapcore.WarnLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return lvl, errors.WithHint(errors.Wrapf(err, "log level %q", name),
			"use one of debug, info, warn, error")
	}
	return lvl, nil
}

// Initialize sets up the global logger. Logs always go to stderr because
// generated code may be written to stdout.
func Initialize(level string, jsonOutput bool) error {
	return InitializeTo(os.Stderr, level, jsonOutput)
}

// InitializeTo is Initialize with an explicit destination.
func InitializeTo(w io.Writer, level string, jsonOutput bool) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	JSONOutput = jsonOutput

	var enc zapcore.Encoder
	if jsonOutput {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.TimeKey = ""
		cfg.CallerKey = ""
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
	}

	Logger = zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), lvl)).Sugar()
	return nil
}

// Sync flushes buffered entries; errors from syncing a terminal are ignored.
func Sync() {
	_ = Logger.Sync()
}
