// Package logger builds the zap logger used across the service.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	envLocal = "local"
	envDev   = "dev"
)

// New returns a logger configured for the given environment.
// local: human-readable console output at debug level.
// dev: JSON output at debug level.
// anything else: production JSON at info level.
func New(env string) *zap.Logger {
	var cfg zap.Config

	switch env {
	case envLocal:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case envDev:
		cfg = zap.NewDevelopmentConfig()
		cfg.Encoding = "json"
	default:
		cfg = zap.NewProductionConfig()
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := cfg.Build()
	if err != nil {
		// config is static, Build only fails on broken sinks
		return zap.NewExample()
	}
	return log.With(zap.String("env", env))
}
