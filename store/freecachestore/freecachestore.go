// Package freecachestore is a zero-GC-overhead httpcache.Manager backed by
// github.com/coocood/freecache, suitable for caching millions of entries
// with automatic LRU eviction and minimal GC pressure.
package freecachestore

import (
	"context"
	"fmt"

	"github.com/coocood/freecache"

	"github.com/arcbridge/httpcache"
)

// Manager is an httpcache.Manager backed by an in-process freecache instance.
type Manager struct {
	cache *freecache.Cache
}

// New creates a Manager with the specified size in bytes (512KB minimum).
//
// For large cache sizes, consider calling debug.SetGCPercent() with a
// lower value to reduce GC overhead.
func New(size int) *Manager {
	return &Manager{cache: freecache.NewCache(size)}
}

// Get implements httpcache.Manager.
func (m *Manager) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, err := m.cache.Get([]byte(key))
	if err != nil {
		if err == freecache.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

// Put implements httpcache.Manager. The entry has no expiration and is
// only evicted when the cache is full.
func (m *Manager) Put(_ context.Context, key string, entry []byte) error {
	if err := m.cache.Set([]byte(key), entry, 0); err != nil {
		return fmt.Errorf("freecachestore put failed for key %q: %w", key, err)
	}
	return nil
}

// Delete implements httpcache.Manager.
func (m *Manager) Delete(_ context.Context, key string) error {
	m.cache.Del([]byte(key))
	return nil
}

// EntryCount returns the number of entries currently in the cache.
func (m *Manager) EntryCount() int64 { return m.cache.EntryCount() }

// HitRate returns the ratio of cache hits to total lookups.
func (m *Manager) HitRate() float64 { return m.cache.HitRate() }

var _ httpcache.Manager = (*Manager)(nil)
