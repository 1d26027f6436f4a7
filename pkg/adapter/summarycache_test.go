package adapter_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/recall/pkg/adapter"
)

func TestMemoryCacheTTL(t *testing.T) {
	ctx := context.Background()

	now := time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	cache := adapter.NewMemoryCacheForTest(func() time.Time { return now })

	_, ok := cache.Get(ctx, "s1")
	gt.False(t, ok)

	cache.Set(ctx, "s1", "earlier the user planned a trip", 10*time.Minute)

	got, ok := cache.Get(ctx, "s1")
	gt.True(t, ok)
	gt.Equal(t, got, "earlier the user planned a trip")

	// Still valid at the TTL boundary
	now = now.Add(10 * time.Minute)
	_, ok = cache.Get(ctx, "s1")
	gt.True(t, ok)

	// Stale one tick later
	now = now.Add(time.Nanosecond)
	_, ok = cache.Get(ctx, "s1")
	gt.False(t, ok)

	// A fresh Set revives the entry
	cache.Set(ctx, "s1", "updated summary", 10*time.Minute)
	got, ok = cache.Get(ctx, "s1")
	gt.True(t, ok)
	gt.Equal(t, got, "updated summary")
}

func TestMemoryCacheSessionIsolation(t *testing.T) {
	ctx := context.Background()
	cache := adapter.NewMemoryCache()

	cache.Set(ctx, "s1", "summary for s1", time.Minute)

	_, ok := cache.Get(ctx, "s2")
	gt.False(t, ok)

	got, ok := cache.Get(ctx, "s1")
	gt.True(t, ok)
	gt.Equal(t, got, "summary for s1")
}

func TestNewRedisCacheRequiresAddr(t *testing.T) {
	_, err := adapter.NewRedisCache("", "")
	gt.Error(t, err)
}
