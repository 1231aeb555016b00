package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "binder:profile:name:"

// RedisCache keeps display names in Redis strings.
type RedisCache struct {
	client redis.Cmdable
}

func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, id uuid.UUID) (string, error) {
	name, err := c.client.Get(ctx, keyPrefix+id.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}

		return "", fmt.Errorf("reading cached name: %w", err)
	}

	return name, nil
}

func (c *RedisCache) Set(ctx context.Context, id uuid.UUID, name string, ttl time.Duration) error {
	if err := c.client.Set(ctx, keyPrefix+id.String(), name, ttl).Err(); err != nil {
		return fmt.Errorf("caching name: %w", err)
	}

	return nil
}
