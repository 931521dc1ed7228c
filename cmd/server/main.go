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

	"golang.org/x/sync/errgroup"

	"cosmos-server/internal/middleware"
	"cosmos-server/internal/player"
	"cosmos-server/internal/server"
	"cosmos-server/internal/shared/config"
	"cosmos-server/internal/shared/database"
	"cosmos-server/internal/shared/logger"
	redisclient "cosmos-server/internal/shared/redis"
	"cosmos-server/internal/universe"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.Init(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := config.GlobalConfig

	logger.Init()
	slog.Info("Starting cosmos server",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := database.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	cache, err := redisclient.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer cache.Close()

	appLogger := slog.Default()

	playerRepo := player.NewRepository(db.DB, appLogger)
	playerService := player.NewService(playerRepo, appLogger)

	universeRepo := universe.NewRepository(db.DB, appLogger)
	snapshotCache := universe.NewSnapshotCache(cache, cfg.Redis.CacheTTL, appLogger)
	universeService := universe.NewService(universeRepo, snapshotCache, cfg.Simulation, appLogger)

	routes := server.NewRoutes(db, cache, playerService, universeService, appLogger)
	mux := routes.Setup()

	corsMiddleware := middleware.NewCORS()
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)
	handler := corsMiddleware.Middleware(rateLimiter.Middleware(mux))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return universeService.RunAutoAdvance(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()

		slog.Info("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	slog.Info("Server stopped")
	return nil
}
