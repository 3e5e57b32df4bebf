package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 3 * time.Second

// SetupRedis connects to redis when an address is configured. It returns a nil
// client, and no error, when redis is disabled.
func SetupRedis(cfg *RedisConfig, logger *slog.Logger) (*redis.Client, error) {
	if cfg == nil {
		return nil, errors.New("redis config is nil")
	}
	if logger == nil {
		return nil, errors.New("logger is nil")
	}
	if cfg.Addr == "" {
		logger.Info("redis disabled, using in-process token store")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("redis connected", slog.String("addr", cfg.Addr), slog.Int("db", cfg.DB))
	return client, nil
}
