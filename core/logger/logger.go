package logger

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a new zap logger based on the configuration.
func New(cfg *Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	var config zap.Config

	if cfg.Level == "debug" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}

	// Set format based on configuration
	if cfg.Format == "console" {
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.DisableStacktrace = true
	} else {
		config.Encoding = "json"
	}

	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.MessageKey = "message"

	logger, err = config.Build()
	if err != nil {
		return nil, err
	}

	return logger, nil
}

// WithWindow returns a logger with the reconciliation window attached,
// so every line of a run can be correlated to its [from, to) interval.
func WithWindow(l *zap.Logger, from, to time.Time) *zap.Logger {
	return l.With(
		zap.String("window_from", from.UTC().Format(time.RFC3339)),
		zap.String("window_to", to.UTC().Format(time.RFC3339)),
	)
}

// WithStage returns a logger tagged with the pipeline stage name.
func WithStage(l *zap.Logger, stage string) *zap.Logger {
	if stage == "" {
		return l
	}
	return l.With(zap.String("stage", stage))
}
