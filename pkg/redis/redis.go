package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/cart-backend/config"
	"github.com/ikkim/cart-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Connect opens a Redis client and verifies it with a ping
func Connect(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return client, nil
}

// Close closes the Redis connection if one is open
func Close(client *redis.Client) error {
	if client == nil {
		return nil
	}
	logger.Info("Closing Redis connection", nil)
	return client.Close()
}
