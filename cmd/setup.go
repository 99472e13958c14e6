package main

import (
	"context"
	"fmt"
	"io"

	"github.com/okian/ranker/internal/config"
	"github.com/okian/ranker/pkg/logger"
)

// loadConfig layers command-line overrides on top of config.Load.
func loadConfig(ctx context.Context, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(ctx, opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.LogFormat = opts.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// initLogging initializes the global logger from cfg, writing to out.
func initLogging(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if err := logger.Init(logger.WithOutput(out), logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}
