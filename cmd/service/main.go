// cmd/service/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akshita317/devinsight/internal/analytics"
	"github.com/akshita317/devinsight/internal/api"
	"github.com/akshita317/devinsight/internal/config"
	"github.com/akshita317/devinsight/internal/github"
	"github.com/akshita317/devinsight/internal/monitor"
	"github.com/akshita317/devinsight/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Application startup error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Initialize structured logger
	logLevel := new(slog.LevelVar)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// 2. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel, logLevel)
	logger.Info("Configuration loaded successfully")

	// 3. Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 4. Initialize database connection and run migrations
	dbpool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbpool.Close()
	logger.Info("Database connection established")

	if err := runMigrations(cfg.DBURL); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	logger.Info("Database migrations applied successfully")

	// 5. Initialize application components
	ghClient := github.NewClient(cfg.GithubToken, logger)
	repoStore := store.NewPostgres(dbpool)
	monitorSvc := monitor.NewService(repoStore, ghClient, logger)
	aggregator := analytics.NewAggregator(repoStore, logger)
	router := api.NewRouter(monitorSvc, aggregator, logger)

	// 6. Start the background refresher unless disabled
	if cfg.RefreshInterval > 0 {
		refresher := monitor.NewRefresher(monitorSvc, cfg.RefreshInterval, cfg.RefreshConcurrency, logger)
		go refresher.Start(ctx)
	} else {
		logger.Info("Background refresh disabled")
	}

	// 7. Start the HTTP server and wait for shutdown
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
	}

	logger.Info("Shutdown complete")
	return nil
}

func runMigrations(dbURL string) error {
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
