package adapter

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
)

// SummaryCache holds session summaries between turns. Entries are
// TTL-bounded: staleness, not content change, invalidates them. This
// is the only cross-invocation shared state of the pipeline, so
// last-write-wins races cost at most a few seconds of staleness.
type SummaryCache interface {
	Get(ctx context.Context, sessionID string) (string, bool)
	Set(ctx context.Context, sessionID, summary string, ttl time.Duration)
}

const summaryKeyPrefix = "session_summary:"

// redisCache implements SummaryCache on Redis
type redisCache struct {
	client *redis.Client
}

func NewRedisCache(addr, password string) (SummaryCache, error) {
	if addr == "" {
		return nil, goerr.New("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	return &redisCache{client: client}, nil
}

func (c *redisCache) Get(ctx context.Context, sessionID string) (string, bool) {
	v, err := c.client.Get(ctx, summaryKeyPrefix+sessionID).Result()
	if err != nil {
		// Cache miss and cache failure look the same to the caller;
		// the summary is simply rebuilt.
		return "", false
	}
	return v, true
}

func (c *redisCache) Set(ctx context.Context, sessionID, summary string, ttl time.Duration) {
	_ = c.client.Set(ctx, summaryKeyPrefix+sessionID, summary, ttl).Err()
}

// memoryCache is the in-process fallback used when no Redis address is
// configured (single-instance deployments, tests, the chat REPL).
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryCacheEntry
	now     func() time.Time
}

type memoryCacheEntry struct {
	summary   string
	expiresAt time.Time
}

func NewMemoryCache() SummaryCache {
	return &memoryCache{
		entries: map[string]memoryCacheEntry{},
		now:     time.Now,
	}
}

// NewMemoryCacheForTest creates a memory cache with a controllable clock
func NewMemoryCacheForTest(now func() time.Time) SummaryCache {
	return &memoryCache{
		entries: map[string]memoryCacheEntry{},
		now:     now,
	}
}

func (c *memoryCache) Get(_ context.Context, sessionID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[sessionID]
	if !ok {
		return "", false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, sessionID)
		return "", false
	}
	return e.summary, true
}

func (c *memoryCache) Set(_ context.Context, sessionID, summary string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[sessionID] = memoryCacheEntry{
		summary:   summary,
		expiresAt: c.now().Add(ttl),
	}
}
