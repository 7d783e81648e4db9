// Package memcachestore is an httpcache.Manager backed by gomemcache.
package memcachestore

import (
	"context"
	"fmt"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/arcbridge/httpcache"
)

// Manager is an httpcache.Manager that stores entries in a memcache server.
type Manager struct {
	*memcache.Client
}

// cacheKey prefixes keys to avoid collision with other data stored in memcache.
func cacheKey(key string) string {
	return "httpcache:" + key
}

// Get implements httpcache.Manager.
func (m *Manager) Get(_ context.Context, key string) (entry []byte, ok bool, err error) {
	item, err := m.Client.Get(cacheKey(key))
	if err != nil {
		if err == memcache.ErrCacheMiss {
			return nil, false, nil
		}
		return nil, false, err
	}
	return item.Value, true, nil
}

// Put implements httpcache.Manager.
func (m *Manager) Put(_ context.Context, key string, entry []byte) error {
	item := &memcache.Item{Key: cacheKey(key), Value: entry}
	if err := m.Client.Set(item); err != nil {
		return fmt.Errorf("memcachestore put failed for key %q: %w", key, err)
	}
	return nil
}

// Delete implements httpcache.Manager.
func (m *Manager) Delete(_ context.Context, key string) error {
	if err := m.Client.Delete(cacheKey(key)); err != nil {
		if err == memcache.ErrCacheMiss {
			return nil
		}
		return fmt.Errorf("memcachestore delete failed for key %q: %w", key, err)
	}
	return nil
}

// New returns a Manager using the provided memcache server(s) with equal
// weight. If a server is listed multiple times, it gets a proportional amount of weight.
func New(server ...string) *Manager {
	return NewWithClient(memcache.New(server...))
}

// NewWithClient returns a Manager wrapping the given memcache client.
func NewWithClient(client *memcache.Client) *Manager {
	return &Manager{client}
}

var _ httpcache.Manager = (*Manager)(nil)
