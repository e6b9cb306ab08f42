package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// KVFallback implements ports.KVStore on a plain table, satisfying spec §6's
// "KV binding (optional)" — when no Redis is configured, rate limiting,
// idempotency caching, and single-use token storage all fall back to this
// table instead of branching into a second code path (§9 "KV/DB duality is
// a port, not two code paths"). New code, but following the same
// `UPDATE ... WHERE` / `ON CONFLICT` idioms as the rest of this package.
type KVFallback struct {
	pool Pool
}

func NewKVFallback(pool Pool) *KVFallback {
	return &KVFallback{pool: pool}
}

func (k *KVFallback) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var expiresAt *time.Time
	err := k.pool.QueryRow(ctx, `SELECT value, expires_at FROM kv_entries WHERE key = $1`, key).Scan(&value, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("kv get: %w", err)
	}
	if expiresAt != nil && expiresAt.Before(time.Now()) {
		return nil, false, nil
	}
	return value, true, nil
}

func (k *KVFallback) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl)
	query := `INSERT INTO kv_entries (key, value, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`
	_, err := k.pool.Exec(ctx, query, key, value, expiresAt)
	if err != nil {
		return fmt.Errorf("kv set: %w", err)
	}
	return nil
}

// Increment mirrors the teacher's redis.RateLimitStore.Allow INCR +
// conditional-EXPIRE idiom: the TTL is only applied the moment the row is
// first created within a window, never refreshed on subsequent increments.
func (k *KVFallback) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	now := time.Now()
	query := `
		INSERT INTO kv_counters (key, count, expires_at) VALUES ($1, 1, $2)
		ON CONFLICT (key) DO UPDATE SET
			count = CASE WHEN kv_counters.expires_at < $3 THEN 1 ELSE kv_counters.count + 1 END,
			expires_at = CASE WHEN kv_counters.expires_at < $3 THEN $2 ELSE kv_counters.expires_at END
		RETURNING count`
	var count int64
	expiresAt := now.Add(ttl)
	if err := k.pool.QueryRow(ctx, query, key, expiresAt, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("kv increment: %w", err)
	}
	return count, nil
}

func (k *KVFallback) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	expiresAt := time.Now().Add(ttl)
	query := `INSERT INTO kv_entries (key, value, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO NOTHING`
	tag, err := k.pool.Exec(ctx, query, key, value, expiresAt)
	if err != nil {
		return false, fmt.Errorf("kv setnx: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
