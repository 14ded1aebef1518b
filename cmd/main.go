package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"anime-api/internal/cache"
	"anime-api/internal/config"
	"anime-api/internal/controller"
	"anime-api/internal/database"
	"anime-api/internal/queue"
	"anime-api/internal/repository"
	"anime-api/internal/routes"
	"anime-api/internal/worker"
	"anime-api/pkg/logger"
)

func main() {
	// Existing environment variables take precedence over .env.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Get()
	if err != nil {
		logger.Error(ctx, "Invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)

	db, err := database.Open(ctx, cfg)
	if err != nil {
		logger.Error(ctx, "Database not available; exiting", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		logger.Error(ctx, "Schema bootstrap failed", "error", err)
		os.Exit(1)
	}

	rdb, err := cache.Connect(ctx, cfg)
	if err != nil {
		logger.Error(ctx, "Redis not available; exiting", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
	}
	animeCache := cache.New(cfg.LocalCacheSize, cfg.CacheTTLDuration(), rdb)

	queue.EnsureTopic(ctx, cfg)
	publisher := queue.NewPublisher(ctx, cfg)
	defer publisher.Close()

	// Evicts this replica's LRU entries on changes made by other replicas.
	go worker.Run(ctx, cfg, animeCache)

	h := controller.New(
		repository.NewAnimes(db),
		animeCache,
		publisher,
		map[string]controller.Pinger{
			"database": db,
			"redis":    controller.PingFunc(animeCache.Ping),
		},
	)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      routes.Router(cfg, h),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		logger.Info(ctx, "HTTP server listening", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info(context.Background(), "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "Server shutdown error", "error", err)
	}
	logger.Info(shutdownCtx, "Server stopped")
}
