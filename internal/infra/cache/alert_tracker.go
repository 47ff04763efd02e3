package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAlertTracker implements adapter.AlertTracker with SETNX keys.
type RedisAlertTracker struct {
	client *redis.Client
}

// NewRedisAlertTracker creates a new RedisAlertTracker.
func NewRedisAlertTracker(client *redis.Client) *RedisAlertTracker {
	return &RedisAlertTracker{client: client}
}

// Claim sets key only if it is absent and reports whether it did.
func (t *RedisAlertTracker) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := t.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim %s: %w", key, err)
	}
	return ok, nil
}

// MemoryAlertTracker implements adapter.AlertTracker in process memory.
type MemoryAlertTracker struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryAlertTracker creates a new MemoryAlertTracker.
func NewMemoryAlertTracker() *MemoryAlertTracker {
	return &MemoryAlertTracker{
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Claim records key until ttl elapses and reports whether it was new.
func (t *MemoryAlertTracker) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if expiresAt, ok := t.expires[key]; ok && now.Before(expiresAt) {
		return false, nil
	}
	t.expires[key] = now.Add(ttl)
	return true, nil
}
