package ports

import (
	"context"
	"time"
)

// KVStore is the single key-value port behind idempotency caching, rate
// limiting, and card-token lookups (§4.2, §9's "KV/DB
// duality is a port, not two code paths"). It generalizes the teacher's
// separate ports.IdempotencyCache and ports.NonceStore into one interface;
// both Redis and a Postgres fallback can satisfy it.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Increment atomically increments key by 1, setting ttl only on the
	// increment that creates the key (first increment in a window), mirroring
	// the teacher's redis.RateLimitStore.Allow INCR+conditional-EXPIRE idiom.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// SetNX atomically sets key to value only if absent, returning false if
	// it already existed, the same contract as the teacher's
	// NonceStore.CheckAndSet. No caller outside the tests uses it.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
}
