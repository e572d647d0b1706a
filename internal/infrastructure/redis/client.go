package redis

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/infrastructure/startup"
)

// NewClient connects and waits for the server until ctx is done.
func NewClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	rdb := redis.NewClient(opt)

	ping := func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
	if err := startup.Wait(ctx, "redis", startup.DefaultBackoff(), ping, logger); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return rdb, nil
}
