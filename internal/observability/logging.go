// Package observability provides logging utilities.
package observability

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/rotimport/internal/config"
)

// NewLogger creates a structured logger from the given logging configuration.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger writing to cfg.Output
// (stderr when empty) or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// Keep every per-line diagnostic.
	zapCfg.Sampling = nil
	if cfg.Output != "" {
		zapCfg.OutputPaths = []string{cfg.Output}
	} else {
		zapCfg.OutputPaths = []string{"stderr"}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// NumberedLines returns a field holding lines as "<index>: <line>" entries,
// the form operators use to patch source data after a parse failure.
func NumberedLines(key string, lines []string) zap.Field {
	return zap.Array(key, zapcore.ArrayMarshalerFunc(func(enc zapcore.ArrayEncoder) error {
		for i, line := range lines {
			enc.AppendString(strconv.Itoa(i) + ": " + line)
		}
		return nil
	}))
}
