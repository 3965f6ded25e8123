// Package logger builds the process-wide zap logger.
package logger

import (
	"fmt"

	"github.com/newthinker/bondcalc/internal/core"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger. level overrides the preset's level when set.
func New(development bool, level string) (*zap.Logger, error) {
	var cfg zap.Config

	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("log level: %w", err))
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	return cfg.Build()
}

// Must creates a logger or panics
func Must(development bool, level string) *zap.Logger {
	log, err := New(development, level)
	if err != nil {
		panic(err)
	}
	return log
}
