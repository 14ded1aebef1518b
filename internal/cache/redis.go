package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"anime-api/internal/config"
	"anime-api/pkg/logger"
)

// Connect returns a Redis client for cfg.RedisURL, or nil when REDIS_URL is
// empty. The caller owns the client and must Close it at shutdown.
func Connect(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		logger.Info(ctx, "Redis disabled (REDIS_URL not set)")
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	opts.PoolSize = cfg.RedisPoolSize
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	logger.Info(ctx, "Redis client initialized", "pool_size", cfg.RedisPoolSize)
	return client, nil
}

// Key returns the Redis key for a single anime.
func Key(id string) string {
	return "anime:" + id
}

// VersionKey returns the Redis key holding the cache version of a single anime.
func VersionKey(id string) string {
	return "anime:version:" + id
}
