package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"storefront/internal/errors"
)

// RedisSnapshotRepository keeps each snapshot as a plain string value. A zero
// ttl stores without expiry.
type RedisSnapshotRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSnapshotRepository(rdb *redis.Client, ttl time.Duration) *RedisSnapshotRepository {
	return &RedisSnapshotRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisSnapshotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	val, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NewNotFoundError(fmt.Sprintf("cart snapshot %s not found", key))
		}
		return nil, fmt.Errorf("getting cart snapshot: %w", err)
	}
	return val, nil
}

func (r *RedisSnapshotRepository) Save(ctx context.Context, key string, payload []byte) error {
	if err := r.rdb.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("setting cart snapshot: %w", err)
	}
	return nil
}
