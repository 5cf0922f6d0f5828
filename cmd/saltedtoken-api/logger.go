package main

import (
	"fmt"
	"strings"

	"github.com/gourdian25/saltedtoken/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds a JSON zap logger at the configured level.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.Set(strings.TrimSpace(cfg.Log.Level)); err != nil {
		return nil, fmt.Errorf("invalid level %q: %w", cfg.Log.Level, err)
	}

	zapConfig := zap.NewProductionConfig()
	if cfg.Log.Development {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.Encoding = "json"
	zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
