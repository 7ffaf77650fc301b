// Package ratelimit implements fixed-window request limiting on top of Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result describes the state of a window after one request was counted
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether the request identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Store is the subset of redis.Cmdable the limiter needs
type Store interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

type RedisLimiter struct {
	store  Store
	prefix string
	limit  int
	window time.Duration
}

// NewRedisLimiter allows limit requests per window for every key. prefix
// separates the counters of different route groups.
func NewRedisLimiter(store Store, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		store:  store,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	redisKey := fmt.Sprintf("ratelimit:%s:%s", l.prefix, key)

	count, err := l.store.Incr(ctx, redisKey).Result()
	if err != nil {
		return Result{}, err
	}

	if count == 1 {
		if err := l.store.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return Result{}, err
		}
	}

	result := Result{
		Allowed:   count <= int64(l.limit),
		Limit:     l.limit,
		Remaining: l.limit - int(count),
	}
	if result.Remaining < 0 {
		result.Remaining = 0
	}

	if !result.Allowed {
		ttl, err := l.store.TTL(ctx, redisKey).Result()
		if err != nil {
			return Result{}, err
		}
		if ttl <= 0 {
			// key lost its expiry; start a fresh window so it cannot block forever
			if err := l.store.Expire(ctx, redisKey, l.window).Err(); err != nil {
				return Result{}, err
			}
			ttl = l.window
		}
		result.RetryAfter = ttl
	}

	return result, nil
}
