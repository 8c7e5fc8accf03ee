package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// StateCache is the in-process counterpart of the redis cache for
// single-instance and test runs. Entries hold JSON just like the redis
// implementation so both paths deserialize identically.
type StateCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewStateCache(ttl time.Duration) *StateCache {
	return &StateCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *StateCache) GetState(ctx context.Context, key string, dest interface{}, load func(ctx context.Context) (interface{}, error)) error {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && c.now().Before(entry.expiresAt) {
		c.mu.Unlock()
		return json.Unmarshal(entry.data, dest)
	}
	c.mu.Unlock()

	value, err := load(ctx)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c.ttl > 0 {
		c.mu.Lock()
		c.entries[key] = cacheEntry{data: encoded, expiresAt: c.now().Add(c.ttl)}
		c.mu.Unlock()
	}
	return json.Unmarshal(encoded, dest)
}

func (c *StateCache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}
