// Package diskstore is an httpcache.Manager backed by the diskv package,
// supplementing an in-memory index with persistent on-disk storage.
package diskstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/peterbourgon/diskv"
)

// Manager is an httpcache.Manager that persists entries as files below a base path.
type Manager struct {
	d *diskv.Diskv
}

// New returns a Manager that stores files in basePath.
func New(basePath string) *Manager {
	return &Manager{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			CacheSizeMax: 100 * 1024 * 1024, // 100MB
		}),
	}
}

// NewWithDiskv returns a Manager using the provided Diskv as underlying storage.
func NewWithDiskv(d *diskv.Diskv) *Manager {
	return &Manager{d: d}
}

// Get implements httpcache.Manager.
func (m *Manager) Get(_ context.Context, key string) (entry []byte, ok bool, err error) {
	entry, err = m.d.Read(keyToFilename(key))
	if err != nil {
		return nil, false, nil
	}
	return entry, true, nil
}

// Put implements httpcache.Manager.
func (m *Manager) Put(_ context.Context, key string, entry []byte) error {
	if err := m.d.WriteStream(keyToFilename(key), bytes.NewReader(entry), true); err != nil {
		return fmt.Errorf("diskstore put failed for key: %w", err)
	}
	return nil
}

// Delete implements httpcache.Manager.
func (m *Manager) Delete(_ context.Context, key string) error {
	_ = m.d.Erase(keyToFilename(key)) //nolint:errcheck // file not found is acceptable
	return nil
}

func keyToFilename(key string) string {
	h := sha256.New()
	_, _ = io.WriteString(h, key) //nolint:errcheck // io.WriteString to hash.Hash never fails
	return hex.EncodeToString(h.Sum(nil))
}
