package verify

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheTTL(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	cache := NewMemoryCache(5 * time.Minute)
	cache.nowFn = func() time.Time { return now }

	ctx := context.Background()
	cache.Set(ctx, "twitter_like:alice", "ref-1")

	if value, ok := cache.Get(ctx, "twitter_like:alice"); !ok || value != "ref-1" {
		t.Fatalf("expected cache hit, got %q %v", value, ok)
	}

	// TTL 内可见
	now = now.Add(4 * time.Minute)
	if _, ok := cache.Get(ctx, "twitter_like:alice"); !ok {
		t.Fatal("expected hit within TTL")
	}

	// 过了 TTL 不可见
	now = now.Add(2 * time.Minute)
	if _, ok := cache.Get(ctx, "twitter_like:alice"); ok {
		t.Fatal("expected miss after TTL")
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	if _, ok := cache.Get(context.Background(), "missing"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestMemoryCacheSweep(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	cache := NewMemoryCache(time.Minute)
	cache.nowFn = func() time.Time { return now }

	ctx := context.Background()
	cache.Set(ctx, "a", "1")
	cache.Set(ctx, "b", "2")

	now = now.Add(30 * time.Second)
	cache.Set(ctx, "c", "3")

	// a、b 过期，c 还在
	now = now.Add(45 * time.Second)
	if removed := cache.Sweep(); removed != 2 {
		t.Fatalf("expected 2 entries swept, got %d", removed)
	}
	if _, ok := cache.Get(ctx, "c"); !ok {
		t.Fatal("entry c should survive the sweep")
	}
	if removed := cache.Sweep(); removed != 0 {
		t.Fatalf("second sweep should remove nothing, got %d", removed)
	}
}
