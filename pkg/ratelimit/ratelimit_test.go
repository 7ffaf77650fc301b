package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	counts  map[string]int64
	expires map[string]time.Duration
	incrErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		counts:  map[string]int64{},
		expires: map[string]time.Duration{},
	}
}

func (s *memoryStore) Incr(ctx context.Context, key string) *redis.IntCmd {
	if s.incrErr != nil {
		return redis.NewIntResult(0, s.incrErr)
	}
	s.counts[key]++
	return redis.NewIntResult(s.counts[key], nil)
}

func (s *memoryStore) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	s.expires[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (s *memoryStore) TTL(ctx context.Context, key string) *redis.DurationCmd {
	ttl, ok := s.expires[key]
	if !ok {
		return redis.NewDurationResult(-1, nil)
	}
	return redis.NewDurationResult(ttl, nil)
}

func TestRedisLimiter_AllowsUpToLimit(t *testing.T) {
	store := newMemoryStore()
	limiter := NewRedisLimiter(store, "booking", 3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 3-(i+1), res.Remaining)
	}

	res, err := limiter.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, time.Hour, res.RetryAfter)
	assert.Equal(t, time.Hour, store.expires["ratelimit:booking:user-1"])
}

func TestRedisLimiter_KeysAreIndependent(t *testing.T) {
	store := newMemoryStore()
	limiter := NewRedisLimiter(store, "auth", 1, 15*time.Minute)
	ctx := context.Background()

	res, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

func TestRedisLimiter_RestoresMissingExpiry(t *testing.T) {
	store := newMemoryStore()
	store.counts["ratelimit:admin:a"] = 5
	limiter := NewRedisLimiter(store, "admin", 5, time.Hour)

	res, err := limiter.Allow(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, time.Hour, res.RetryAfter)
	assert.Equal(t, time.Hour, store.expires["ratelimit:admin:a"])
}

func TestRedisLimiter_StoreError(t *testing.T) {
	store := newMemoryStore()
	store.incrErr = errors.New("connection refused")
	limiter := NewRedisLimiter(store, "auth", 5, time.Minute)

	_, err := limiter.Allow(context.Background(), "x")
	assert.Error(t, err)
}
