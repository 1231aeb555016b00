package profile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/binder/internal/profile"
)

// memRedis implements the two commands the cache issues; anything else
// panics through the nil embedded interface.
type memRedis struct {
	redis.Cmdable
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func (m *memRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if m.err != nil {
		return redis.NewStringResult("", m.err)
	}

	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}

	return redis.NewStringResult(v, nil)
}

func (m *memRedis) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	if m.err != nil {
		return redis.NewStatusResult("", m.err)
	}

	m.data[key] = value.(string)
	m.ttls[key] = ttl

	return redis.NewStatusResult("OK", nil)
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	client := &memRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
	cache := profile.NewRedisCache(client)

	_, err := cache.Get(ctx, id)
	assert.ErrorIs(t, err, profile.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, id, "Dragon Shop", time.Minute))
	assert.Equal(t, time.Minute, client.ttls["binder:profile:name:"+id.String()])

	name, err := cache.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Dragon Shop", name)

	client.err = errors.New("connection refused")

	_, err = cache.Get(ctx, id)
	require.Error(t, err)
	assert.NotErrorIs(t, err, profile.ErrCacheMiss)
	assert.Error(t, cache.Set(ctx, id, "x", time.Minute))
}
