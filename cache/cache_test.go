package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/velocity/extractor"
)

func sample() *extractor.Result {
	return &extractor.Result{
		Name:     "Sony WH-1000XM5",
		Category: "Headphones",
		Price:    348,
		Currency: "USD",
		Reviews:  []string{"Great noise cancelling and comfortable fit."},
	}
}

func TestKeyNormalizesURL(t *testing.T) {
	assert.Equal(t, Key("https://shop.example.com/p/1"), Key(" https://shop.example.com/p/1/ "))
	assert.NotEqual(t, Key("https://shop.example.com/p/1"), Key("https://shop.example.com/p/2"))
	assert.Len(t, Key("x"), 64)
}

func TestMemoryGetSet(t *testing.T) {
	m := NewMemory(time.Minute, 10)
	defer m.Close()
	ctx := context.Background()

	_, ok := m.Get(ctx, "https://shop.example.com/p/1")
	assert.False(t, ok)

	m.Set(ctx, "https://shop.example.com/p/1", sample())
	got, ok := m.Get(ctx, "https://shop.example.com/p/1")
	require.True(t, ok)
	assert.Equal(t, sample(), got)

	got.Reviews[0] = "mutated"
	again, _ := m.Get(ctx, "https://shop.example.com/p/1")
	assert.Equal(t, sample().Reviews, again.Reviews)
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory(time.Minute, 10)
	defer m.Close()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	m.Set(ctx, "https://shop.example.com/p/1", sample())
	now = now.Add(59 * time.Second)
	_, ok := m.Get(ctx, "https://shop.example.com/p/1")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = m.Get(ctx, "https://shop.example.com/p/1")
	assert.False(t, ok)

	m.evictExpired()
	assert.Zero(t, m.Len())
}

func TestMemoryEvictsOldestAtCapacity(t *testing.T) {
	m := NewMemory(time.Hour, 2)
	defer m.Close()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	m.Set(ctx, "https://a.example.com", sample())
	now = now.Add(time.Second)
	m.Set(ctx, "https://b.example.com", sample())
	now = now.Add(time.Second)
	m.Set(ctx, "https://c.example.com", sample())

	assert.Equal(t, 2, m.Len())
	_, ok := m.Get(ctx, "https://a.example.com")
	assert.False(t, ok)
	_, ok = m.Get(ctx, "https://c.example.com")
	assert.True(t, ok)
}

func TestMemoryIgnoresNil(t *testing.T) {
	m := NewMemory(time.Minute, 10)
	defer m.Close()
	m.Set(context.Background(), "https://a.example.com", nil)
	assert.Zero(t, m.Len())
	assert.NoError(t, m.Close())
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "not a redis url", time.Minute)
	assert.Error(t, err)
}

func TestRedisUnreachableIsAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	r := NewRedisFromClient(client, time.Minute)
	defer r.Close()
	ctx := context.Background()

	r.Set(ctx, "https://a.example.com", sample())
	_, ok := r.Get(ctx, "https://a.example.com")
	assert.False(t, ok)
}
