package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"

	"smart-task-manager/internal/auth"
	"smart-task-manager/internal/config"
	"smart-task-manager/internal/database"
	"smart-task-manager/internal/handlers"
	"smart-task-manager/internal/logging"
	"smart-task-manager/internal/realtime"
	"smart-task-manager/internal/repository"
	"smart-task-manager/internal/routes"
	"smart-task-manager/internal/scheduler"
	"smart-task-manager/internal/service"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *configPath)
		},
	}
}

func runServe(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	src, cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	log := logging.Get()

	// Init database
	db, err := database.InitDB(cfg.Database.Path, database.LogLevel(cfg.Server.LogLevel))
	if err != nil {
		return err
	}
	store := repository.New(db)

	tokens, err := auth.NewTokenManager(cfg.Auth.Token())
	if err != nil {
		return err
	}

	classifications := openCache(ctx, cfg.Cache, logging.Component("cache"))
	ai := newClassifier(ctx, cfg, classifications)
	hub := realtime.NewHub(logging.Component("realtime"))

	tasks := service.NewTaskService(store, ai,
		service.WithEvents(hub),
		service.WithAsyncClassification(cfg.AI.Async),
		service.WithTaskLogger(logging.Component("tasks")),
	)
	h := handlers.New(handlers.Deps{
		Tasks:      tasks,
		Projects:   service.NewProjectService(store, logging.Component("projects")),
		Users:      service.NewUserService(store, logging.Component("users")),
		Classifier: ai,
		Tokens:     tokens,
		Hub:        hub,
		Log:        logging.Component("http"),
	})

	if src.Path() != "" {
		if err := src.Watch(logging.Component("config"), func(next *config.Config) {
			ai.Reconfigure(context.Background(), next.AI.Classifier())
		}); err != nil {
			log.Warn().Err(err).Msg("configuration reload disabled")
		}
	}

	jobs := scheduler.New(logging.Component("scheduler"), cfg.Server.ShutdownTimeout)
	if cfg.Scheduler.Enabled {
		if err := jobs.ScheduleCron("overdue-sweep", cfg.Scheduler.OverdueSpec,
			scheduler.OverdueSweep(tasks, logging.Component("scheduler"))); err != nil {
			return err
		}
		if err := jobs.ScheduleCron("cache-purge", cfg.Scheduler.PurgeSpec,
			scheduler.CachePurge(classifications, logging.Component("scheduler"))); err != nil {
			return err
		}
		jobs.Start()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: routes.SetupRoutes(h, tokens, logging.Component("http"), cfg.Server.CORSOrigins),
	}
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("database", cfg.Database.Path).
			Bool("ai_enabled", cfg.AI.Enabled).
			Str("ai_provider", cfg.AI.Provider).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// The API chain runs in order: stop accepting requests and jobs, let
	// background classifications finish, then close the database they use.
	wait := gfshutdown.GracefulShutdown(
		ctx,
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"api": func(ctx context.Context) error {
				if err := srv.Shutdown(ctx); err != nil {
					return fmt.Errorf("http server: %w", err)
				}
				if err := jobs.Stop(ctx); err != nil {
					return fmt.Errorf("scheduler: %w", err)
				}
				if err := tasks.Wait(ctx); err != nil {
					return fmt.Errorf("drain classifications: %w", err)
				}
				return database.Close(db)
			},
			"realtime": func(context.Context) error {
				hub.Close()
				return nil
			},
			"cache": func(context.Context) error {
				return closeCache(classifications)
			},
		},
	)

	exitCode := <-wait
	log.Info().Int("exit_code", exitCode).Msg("server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}
