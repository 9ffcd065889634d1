package inventory

import (
	"context"
	"sync"
	"time"
)

// SnapshotFunc fetches a fresh inventory view from the execution substrate.
type SnapshotFunc func(ctx context.Context) (Snapshot, error)

// Cache holds the last inventory snapshot with a TTL. It replaces the
// module-level inventory cache of earlier designs with an object the loop
// owns explicitly and passes into planning.
type Cache struct {
	mu     sync.Mutex
	fetch  SnapshotFunc
	ttl    time.Duration
	last   Snapshot
	lastAt time.Time
	now    func() time.Time
}

func NewCache(fetch SnapshotFunc, ttl time.Duration) *Cache {
	return &Cache{fetch: fetch, ttl: ttl, now: time.Now}
}

// Get returns the cached snapshot, refreshing it first if it is older than
// the TTL (or was never taken).
func (c *Cache) Get(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastAt.IsZero() || c.now().Sub(c.lastAt) > c.ttl {
		return c.refreshLocked(ctx)
	}
	return c.last, nil
}

// Refresh unconditionally re-fetches the snapshot. The loop calls this at the
// top of every Planning phase so plans are made against observed, not
// remembered, capacity.
func (c *Cache) Refresh(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

func (c *Cache) refreshLocked(ctx context.Context) (Snapshot, error) {
	snap, err := c.fetch(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap.TakenAt = c.now()
	c.last = snap
	c.lastAt = snap.TakenAt
	return snap, nil
}

// LastRefreshedAt returns the time of the last successful refresh, or the
// zero time if none has happened yet.
func (c *Cache) LastRefreshedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastAt
}
