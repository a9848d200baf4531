package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"smart-task-manager/internal/cache"
	"smart-task-manager/internal/classifier"
	"smart-task-manager/internal/config"
	"smart-task-manager/internal/logging"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "smart-task",
		Short: "Task manager API with AI-assisted classification",
		Long: `smart-task serves the task manager REST and websocket API.

New tasks are sent to a text-generation model which suggests a priority,
category, effort estimate and summary. Configuration comes from an optional
YAML file (--config or SMART_TASK_CONFIG) and SMART_TASK_* variables.`,
		SilenceUsage: true,
		// Running the bare binary starts the server.
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(newServeCmd(&configPath), newClassifyCmd(&configPath))
	return root
}

// loadConfig reads the configuration and installs the global logger.
func loadConfig(path string) (*config.Source, *config.Config, error) {
	src, err := config.NewSource(path)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := src.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := logging.Init(cfg.Server.Logging()); err != nil {
		log := logging.Get()
		log.Warn().Err(err).Msg("falling back to info logging")
	}
	if cfg.Auth.JWTSecret == config.DevJWTSecret {
		log := logging.Get()
		log.Warn().Msg("using the development JWT secret; set SMART_TASK_AUTH_JWT_SECRET")
	}
	return src, cfg, nil
}

// openCache prefers Redis when configured and falls back to process memory
// when it is unreachable.
func openCache(ctx context.Context, cfg config.CacheConfig, log zerolog.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		return cache.NewMemory()
	}
	r, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.Prefix)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, caching classifications in memory")
		return cache.NewMemory()
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("caching classifications in redis")
	return r
}

func newClassifier(ctx context.Context, cfg *config.Config, c cache.Cache) *classifier.Service {
	return classifier.NewService(ctx, cfg.AI.Classifier(),
		classifier.WithCache(c),
		classifier.WithLogger(logging.Component("classifier")),
	)
}

func closeCache(c cache.Cache) error {
	if err := c.Close(); err != nil {
		return fmt.Errorf("close cache: %w", err)
	}
	return nil
}
