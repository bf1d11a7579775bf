package util

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugared *zap.SugaredLogger

// InitZap configures the structured logger orchestrator lifecycle events go
// through (dataset start/finish/error, retries, plan-fingerprint
// mismatches), split from InitSlog's plain CLI-facing transcript. LOG_LEVEL
// drives both loggers identically so one env var controls verbosity
// regardless of which subsystem is logging.
func InitZap() *zap.SugaredLogger {
	level := zapcore.InfoLevel
	if raw, ok := os.LookupEnv("LOG_LEVEL"); ok {
		_ = level.UnmarshalText([]byte(strings.ToLower(raw)))
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	sugared = logger.Sugar()
	return sugared
}

// Zap returns the process-wide structured logger, initializing it with
// defaults if InitZap was never called.
func Zap() *zap.SugaredLogger {
	if sugared == nil {
		return InitZap()
	}
	return sugared
}
