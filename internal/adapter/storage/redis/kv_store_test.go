package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore_GetSet(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	kv := NewKVStore(client)
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "idempotency:merchant-1:K")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.SetWithTTL(ctx, "idempotency:merchant-1:K", []byte(`{"status":"ok"}`), 24*time.Hour))

	val, ok, err := kv.Get(ctx, "idempotency:merchant-1:K")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"status":"ok"}`), val)
}

func TestKVStore_Increment_FixedWindow(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	kv := NewKVStore(client)
	ctx := context.Background()

	key := "ratelimit:merchant-1:GET:/api/v1/payment_intents"
	for i := int64(1); i <= 3; i++ {
		count, err := kv.Increment(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}

	s.FastForward(61 * time.Second)

	count, err := kv.Increment(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "window should have reset")
}

func TestKVStore_SetNX(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	kv := NewKVStore(client)
	ctx := context.Background()

	ok, err := kv.SetNX(ctx, "token:tok_abc", []byte("sealed"), 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = kv.SetNX(ctx, "token:tok_abc", []byte("sealed-again"), 15*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second SetNX on an existing key must fail")
}
