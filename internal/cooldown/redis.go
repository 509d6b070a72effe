package cooldown

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is the multi-instance variant. SET NX PX gives the same
// atomic check-and-set with a key TTL standing in for the purge loop.
type RedisLimiter struct {
	client *redis.Client
	window time.Duration
}

// NewRedis creates a Redis-backed limiter with the given cooldown window.
func NewRedis(client *redis.Client, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, window: window}
}

// TryAcquire claims the pair key if it is free. When the key already exists
// the remaining TTL is reported as the wait time.
func (l *RedisLimiter) TryAcquire(ctx context.Context, scannerID, scannedID string) (Decision, error) {
	key := "cooldown:" + pairKey(scannerID, scannedID)

	ok, err := l.client.SetNX(ctx, key, time.Now().UnixMilli(), l.window).Result()
	if err != nil {
		return Decision{}, err
	}
	if ok {
		return Decision{Allowed: true}, nil
	}

	ttl, err := l.client.PTTL(ctx, key).Result()
	if err != nil {
		return Decision{}, err
	}
	if ttl < 0 {
		ttl = l.window
	}
	return Decision{RetryAfter: ttl}, nil
}
