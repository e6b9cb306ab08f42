package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// KVStore implements ports.KVStore on Redis, generalizing the teacher's
// three separate stores — IdempotencyCache (Get/Set), NonceStore
// (SetNX-based CheckAndSet), and RateLimitStore (INCR+conditional-EXPIRE
// fixed window) — into the single interface this spec's idempotency cache,
// rate limiter, and single-use card token store all share (§4.2, §9
// "KV/DB duality is a port, not two code paths"). Every caller prefixes its
// own keys (idempotency:, ratelimit:, tok:); this type adds no prefix of
// its own.
type KVStore struct {
	client *goredis.Client
}

func NewKVStore(client *goredis.Client) *KVStore {
	return &KVStore{client: client}
}

func (k *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := k.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis kv get: %w", err)
	}
	return val, true, nil
}

func (k *KVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := k.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis kv set: %w", err)
	}
	return nil
}

// Increment mirrors the teacher's RateLimitStore.Allow: INCR the counter,
// and only on the increment that creates the key (count==1) does it set an
// expiry, so a key's TTL always reflects the start of its current window
// rather than being refreshed on every request.
func (k *KVStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := k.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis kv incr: %w", err)
	}
	if count == 1 {
		k.client.Expire(ctx, key, ttl)
	}
	return count, nil
}

func (k *KVStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ok, err := k.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis kv setnx: %w", err)
	}
	return ok, nil
}
