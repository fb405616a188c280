package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces claimed keys in Redis.
const keyPrefix = "idem:"

// Guard records which idempotency keys have already been seen.
type Guard struct {
	client redis.UniversalClient
}

// NewGuard returns a Guard backed by client.
func NewGuard(client redis.UniversalClient) *Guard {
	return &Guard{client: client}
}

// Claim atomically marks key as seen for ttl. It returns true if this call
// was the first to claim the key and false for a duplicate.
func (g *Guard) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = DefaultWindowSeconds * time.Second
	}
	ok, err := g.client.SetNX(ctx, keyPrefix+key, time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return ok, nil
}

// Release forgets key so the action can be submitted again, e.g. after the
// downstream submission failed.
func (g *Guard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}
