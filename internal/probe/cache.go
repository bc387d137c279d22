package probe

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"video-renditions/internal/logging"
)

// Store persists probe results by content digest.
type Store interface {
	GetProbe(ctx context.Context, digest string) (Info, bool, error)
	PutProbe(ctx context.Context, digest string, info Info) error
}

// Observer is notified of cache lookups.
type Observer interface {
	ObserveProbe(hit bool, err error)
}

// Cache memoizes probes by content digest. Failures are not cached.
type Cache struct {
	prober   Prober
	store    Store
	observer Observer

	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]Info
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithStore adds a persistent layer below the in-memory map.
func WithStore(s Store) CacheOption {
	return func(c *Cache) { c.store = s }
}

// WithObserver reports hits, misses and failures.
func WithObserver(o Observer) CacheOption {
	return func(c *Cache) { c.observer = o }
}

// NewCache wraps prober.
func NewCache(prober Prober, opts ...CacheOption) *Cache {
	c := &Cache{
		prober:  prober,
		entries: make(map[string]Info),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Probe returns the cached Info for digest, probing path on a miss.
// Concurrent misses for one digest share a single probe.
func (c *Cache) Probe(ctx context.Context, path, digest string) (Info, error) {
	c.mu.RLock()
	info, ok := c.entries[digest]
	c.mu.RUnlock()
	if ok {
		c.observe(true, nil)
		return info, nil
	}

	v, err, _ := c.group.Do(digest, func() (interface{}, error) {
		if c.store != nil {
			stored, found, err := c.store.GetProbe(ctx, digest)
			if err != nil {
				logging.Warn("probe store lookup failed for %s: %v", digest, err)
			} else if found {
				c.remember(digest, stored)
				return stored, nil
			}
		}

		probed, err := c.prober.Probe(ctx, path)
		if err != nil {
			return Info{}, err
		}
		c.remember(digest, probed)

		if c.store != nil {
			if err := c.store.PutProbe(ctx, digest, probed); err != nil {
				logging.Warn("probe store write failed for %s: %v", digest, err)
			}
		}
		return probed, nil
	})
	c.observe(false, err)
	if err != nil {
		return Info{}, err
	}
	return v.(Info), nil
}

func (c *Cache) remember(digest string, info Info) {
	c.mu.Lock()
	c.entries[digest] = info
	c.mu.Unlock()
}

func (c *Cache) observe(hit bool, err error) {
	if c.observer != nil {
		c.observer.ObserveProbe(hit, err)
	}
}

// Len returns the number of cached digests.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops the in-memory entries. The store is untouched.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]Info)
	c.mu.Unlock()
}
