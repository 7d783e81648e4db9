// Package memstore is a process-local, sync.Map-backed httpcache.Manager.
// It is the simplest Manager implementation and is useful for tests, CLIs,
// and single-process deployments that don't need a shared cache.
package memstore

import (
	"context"
	"sync"

	"github.com/arcbridge/httpcache"
)

// Manager is an httpcache.Manager storing entries in process memory.
type Manager struct {
	entries sync.Map
}

// New returns an empty Manager.
func New() *Manager {
	return &Manager{}
}

// Get implements httpcache.Manager.
func (m *Manager) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	return v.([]byte), true, nil
}

// Put implements httpcache.Manager.
func (m *Manager) Put(_ context.Context, key string, entry []byte) error {
	cp := make([]byte, len(entry))
	copy(cp, entry)
	m.entries.Store(key, cp)
	return nil
}

// Delete implements httpcache.Manager.
func (m *Manager) Delete(_ context.Context, key string) error {
	m.entries.Delete(key)
	return nil
}

var _ httpcache.Manager = (*Manager)(nil)
