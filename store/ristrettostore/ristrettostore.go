// Package ristrettostore is a high-throughput, in-process httpcache.Manager
// backed by github.com/dgraph-io/ristretto/v2, an admission-policy cache
// that trades strict LRU ordering for much better hit ratios under
// concurrent load.
package ristrettostore

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/arcbridge/httpcache"
)

// Config controls the sizing of the underlying ristretto cache.
type Config struct {
	// NumCounters is the number of keys to track frequency of (10x the
	// expected number of items is recommended). Defaults to 1e7.
	NumCounters int64

	// MaxCost is the maximum cost of the cache, measured in bytes since
	// Manager costs each entry by its length. Defaults to 64MB.
	MaxCost int64

	// BufferItems is the size of the Get buffer. Defaults to 64.
	BufferItems int64
}

// DefaultConfig returns sizing defaults suitable for a mid-sized cache.
func DefaultConfig() Config {
	return Config{
		NumCounters: 1e7,
		MaxCost:     64 << 20,
		BufferItems: 64,
	}
}

// Manager is an httpcache.Manager backed by an in-process ristretto cache.
type Manager struct {
	cache *ristretto.Cache[string, []byte]
}

// New creates a Manager sized by config.
func New(config Config) (*Manager, error) {
	defaults := DefaultConfig()
	if config.NumCounters == 0 {
		config.NumCounters = defaults.NumCounters
	}
	if config.MaxCost == 0 {
		config.MaxCost = defaults.MaxCost
	}
	if config.BufferItems == 0 {
		config.BufferItems = defaults.BufferItems
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: config.NumCounters,
		MaxCost:     config.MaxCost,
		BufferItems: config.BufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("ristrettostore: failed to create cache: %w", err)
	}

	return &Manager{cache: cache}, nil
}

// Get implements httpcache.Manager.
func (m *Manager) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	return v, true, nil
}

// Put implements httpcache.Manager. The entry's cost is its length in
// bytes. Put reports a write failure when ristretto's Set drops the
// entry; an entry that Set accepts can still be rejected afterwards by
// the admission policy, which Put does not report.
func (m *Manager) Put(_ context.Context, key string, entry []byte) error {
	cp := make([]byte, len(entry))
	copy(cp, entry)

	if !m.cache.Set(key, cp, int64(len(cp))) {
		return fmt.Errorf("ristrettostore: cache rejected entry for key %q", key)
	}
	m.cache.Wait()
	return nil
}

// Delete implements httpcache.Manager.
func (m *Manager) Delete(_ context.Context, key string) error {
	m.cache.Del(key)
	return nil
}

// Close releases the cache's background goroutines.
func (m *Manager) Close() {
	m.cache.Close()
}

var _ httpcache.Manager = (*Manager)(nil)
