package service

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Loader fetches the full listing a Cache reflects.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Cache is a process-local snapshot of one listing. It never mutates the
// snapshot itself; callers invalidate it after a successful write and the
// next Get refetches. Concurrent refetches for the same generation share
// one load, and a load that started before an Invalidate never marks the
// cache fresh.
type Cache[T any] struct {
	load  Loader[T]
	group singleflight.Group

	mu       sync.Mutex
	snapshot []T
	loaded   bool
	fresh    bool
	gen      uint64
}

// NewCache returns an empty, stale cache.
func NewCache[T any](load Loader[T]) *Cache[T] {
	return &Cache[T]{load: load}
}

// Get returns the current snapshot, refetching when stale.
func (c *Cache[T]) Get(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	if c.fresh {
		items := slices.Clone(c.snapshot)
		c.mu.Unlock()
		return items, nil
	}
	gen := c.gen
	c.mu.Unlock()

	// The shared load outlives any one caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		items, err := c.load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.snapshot = items
			c.loaded = true
			c.fresh = true
		}
		c.mu.Unlock()
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]T)), nil
}

// Invalidate marks the snapshot stale.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.fresh = false
}

// Snapshot returns the last loaded listing without fetching, and whether it
// is still fresh. It returns nil, false before the first load.
func (c *Cache[T]) Snapshot() ([]T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return nil, false
	}
	return slices.Clone(c.snapshot), c.fresh
}
