package session

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

const pointerKey = "session:current:v1"

// PointerStore persists the "current identity" pointer across runs. The
// ledger itself is never touched through this store: logout clears only
// the pointer.
type PointerStore interface {
	Current(ctx context.Context) (string, error)
	Set(ctx context.Context, identityKey string) error
	Clear(ctx context.Context) error
}

// RedisPointerStore keeps the pointer in Redis.
type RedisPointerStore struct {
	cache *redis.Client
}

// NewRedisPointerStore builds a Redis-backed pointer store.
func NewRedisPointerStore(cache *redis.Client) *RedisPointerStore {
	return &RedisPointerStore{cache: cache}
}

// Current returns the persisted identity key, empty when none is set.
func (s *RedisPointerStore) Current(ctx context.Context) (string, error) {
	v, err := s.cache.Get(ctx, pointerKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// Set stores the identity key without expiry.
func (s *RedisPointerStore) Set(ctx context.Context, identityKey string) error {
	return s.cache.Set(ctx, pointerKey, identityKey, 0).Err()
}

// Clear removes the pointer.
func (s *RedisPointerStore) Clear(ctx context.Context) error {
	return s.cache.Del(ctx, pointerKey).Err()
}

type memoryPointerStore struct {
	mu      sync.RWMutex
	current string
}

// NewMemoryPointerStore builds an in-memory pointer store for tests and
// dev mode.
func NewMemoryPointerStore() PointerStore {
	return &memoryPointerStore{}
}

func (s *memoryPointerStore) Current(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

func (s *memoryPointerStore) Set(_ context.Context, identityKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = identityKey
	return nil
}

func (s *memoryPointerStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = ""
	return nil
}
