package middleware

import (
	"context"
	"sync"
	"time"
)

// inMemoryKV is a minimal ports.KVStore test double shared by this
// package's middleware tests, standing in for Redis/Postgres the way the
// teacher's tests substitute an in-memory map for its stores.
type inMemoryKV struct {
	mu      sync.Mutex
	values  map[string][]byte
	counts  map[string]int64
	expires map[string]time.Time
}

func newInMemoryKV() *inMemoryKV {
	return &inMemoryKV{
		values:  map[string][]byte{},
		counts:  map[string]int64{},
		expires: map[string]time.Time{},
	}
}

func (k *inMemoryKV) expired(key string) bool {
	exp, ok := k.expires[key]
	return ok && time.Now().After(exp)
}

func (k *inMemoryKV) evictIfExpired(key string) {
	if k.expired(key) {
		delete(k.values, key)
		delete(k.counts, key)
		delete(k.expires, key)
	}
}

func (k *inMemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.evictIfExpired(key)
	v, ok := k.values[key]
	return v, ok, nil
}

func (k *inMemoryKV) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.values[key] = value
	k.expires[key] = time.Now().Add(ttl)
	return nil
}

func (k *inMemoryKV) Increment(_ context.Context, key string, ttl time.Duration) (int64, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.evictIfExpired(key)
	if _, ok := k.counts[key]; !ok {
		k.expires[key] = time.Now().Add(ttl)
	}
	k.counts[key]++
	return k.counts[key], nil
}

func (k *inMemoryKV) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.evictIfExpired(key)
	if _, ok := k.values[key]; ok {
		return false, nil
	}
	k.values[key] = value
	k.expires[key] = time.Now().Add(ttl)
	return true, nil
}
