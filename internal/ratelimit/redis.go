package ratelimit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter counts requests per client in fixed windows under ratelimit:{key}.
type RedisLimiter struct {
	client    redis.UniversalClient
	perMinute int64
}

// NewRedisLimiter wraps an existing client.
func NewRedisLimiter(client redis.UniversalClient, perMinute int) *RedisLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &RedisLimiter{client: client, perMinute: int64(perMinute)}
}

// Allow increments the window counter and arms its expiry in one MULTI/EXEC.
// EXPIRE NX (Redis 7+) only sets a TTL on keys that lack one, so a counter can
// never outlive its window even if an earlier call failed halfway.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := "ratelimit:" + key
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, Window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis ratelimit incr: %w", err)
	}
	return incr.Val() <= l.perMinute, nil
}
