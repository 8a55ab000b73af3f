package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo-planner/internal/api"
	"todo-planner/internal/config"
	"todo-planner/internal/logger"
	"todo-planner/internal/model"
	"todo-planner/internal/repository"
	"todo-planner/internal/service"
	"todo-planner/internal/tokenstore"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("Shutdown complete")
}

// run returns instead of exiting so deferred closes always run.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := logger.Init(logger.Config(cfg.Log)); err != nil {
		log.Fatalf("logger: %v", err)
	}

	db, err := repository.NewDB(cfg.Database.URL, &model.User{}, &model.Task{})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	revoked, closeRevoked, err := revocationStore(ctx, cfg.Redis.URL)
	if err != nil {
		return err
	}
	defer closeRevoked()

	auth := service.NewAuthService(repository.NewUserRepository(db), revoked, cfg.JWT.Secret, cfg.JWT.TTL)
	tasks := service.NewTaskService(repository.NewTaskRepository(db))
	app := api.NewApp(cfg.App.Name, auth, tasks)

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Server starting", "port", cfg.App.Port, "env", cfg.App.Env)
	return app.Listen(":" + cfg.App.Port)
}

// revocationStore uses redis when configured and falls back to an in-process
// store otherwise.
func revocationStore(ctx context.Context, url string) (tokenstore.Revoker, func(), error) {
	if url == "" {
		slog.Warn("REDIS_URL not set, revoked tokens are kept in memory")
		return tokenstore.NewMemory(), func() {}, nil
	}
	store, err := tokenstore.NewRedis(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}
