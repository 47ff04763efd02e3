package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// WindowCounter counts hits per key in fixed windows.
type WindowCounter interface {
	// Incr adds one hit to key and returns the count within the current window.
	// The window starts with the first hit.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisCounter is a WindowCounter shared across instances through Redis INCR and EXPIRE.
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter creates a new RedisCounter.
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// Incr increments key and starts its expiry on the first hit.
func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", key, err)
	}
	if count == 1 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, fmt.Errorf("failed to expire %s: %w", key, err)
		}
	}
	return count, nil
}

// windowEntry tracks the hits of a single key.
type windowEntry struct {
	count     int64
	resetTime time.Time
}

// MemoryCounter is a process-local WindowCounter used when Redis is unavailable.
type MemoryCounter struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	now     func() time.Time
}

// NewMemoryCounter creates a new MemoryCounter.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

// Incr increments key, resetting it once its window has expired.
func (c *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry, exists := c.entries[key]
	if !exists || !now.Before(entry.resetTime) {
		c.entries[key] = &windowEntry{count: 1, resetTime: now.Add(window)}
		return 1, nil
	}

	entry.count++
	return entry.count, nil
}

// Cleanup removes expired entries.
func (c *MemoryCounter) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if !now.Before(entry.resetTime) {
			delete(c.entries, key)
		}
	}
}
