// Package leveldbstore is an httpcache.Manager backed by
// github.com/syndtr/goleveldb.
package leveldbstore

import (
	"context"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/arcbridge/httpcache"
)

// Manager is an httpcache.Manager with LevelDB storage.
type Manager struct {
	db *leveldb.DB
}

// New returns a Manager that stores its LevelDB files in path.
func New(path string) (*Manager, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Manager{db: db}, nil
}

// NewWithDB returns a Manager using the provided LevelDB handle as underlying storage.
func NewWithDB(db *leveldb.DB) *Manager {
	return &Manager{db: db}
}

// Get implements httpcache.Manager.
func (m *Manager) Get(_ context.Context, key string) (entry []byte, ok bool, err error) {
	entry, err = m.db.Get([]byte(key), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return entry, true, nil
}

// Put implements httpcache.Manager.
func (m *Manager) Put(_ context.Context, key string, entry []byte) error {
	if err := m.db.Put([]byte(key), entry, nil); err != nil {
		return fmt.Errorf("leveldbstore put failed for key %q: %w", key, err)
	}
	return nil
}

// Delete implements httpcache.Manager.
func (m *Manager) Delete(_ context.Context, key string) error {
	if err := m.db.Delete([]byte(key), nil); err != nil {
		return fmt.Errorf("leveldbstore delete failed for key %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying LevelDB handle.
func (m *Manager) Close() error {
	return m.db.Close()
}

var _ httpcache.Manager = (*Manager)(nil)
