package verification

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const guardPrefix = "verify:v1:"

// Guard reserves a (report, verifier) pair so the same viewer cannot be
// rewarded twice for the same report across sessions. Reserve returns
// false when the pair was already taken.
type Guard interface {
	Reserve(ctx context.Context, reportID, verifier string) (bool, error)
}

// RedisGuard backs reservations with SETNX, giving the uniqueness check
// durability across restarts.
type RedisGuard struct {
	cache *redis.Client
}

// NewRedisGuard builds a Redis-backed guard.
func NewRedisGuard(cache *redis.Client) *RedisGuard {
	return &RedisGuard{cache: cache}
}

// Reserve claims the pair. Reservations never expire: a verification is
// a one-time event.
func (g *RedisGuard) Reserve(ctx context.Context, reportID, verifier string) (bool, error) {
	return g.cache.SetNX(ctx, guardPrefix+reportID+":"+verifier, 1, 0).Result()
}

// NoopGuard always grants the reservation. Used when Redis is absent;
// the engine then degrades to the original same-session-only protection.
type NoopGuard struct{}

// Reserve always succeeds.
func (NoopGuard) Reserve(_ context.Context, _, _ string) (bool, error) {
	return true, nil
}
