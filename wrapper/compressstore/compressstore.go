// Package compressstore wraps an httpcache.Manager with automatic
// compression of stored entries, reducing storage footprint at the cost
// of CPU on every Put/Get. Supports gzip, brotli and snappy.
package compressstore

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/arcbridge/httpcache"
)

// Algorithm identifies a compression algorithm.
type Algorithm int

const (
	// Gzip trades compression ratio for a fast, dependency-light codec.
	Gzip Algorithm = iota
	// Brotli gives the best compression ratio at the cost of speed.
	Brotli
	// Snappy is the fastest codec, at a lower compression ratio.
	Snappy
)

// String returns the algorithm's name.
func (a Algorithm) String() string {
	switch a {
	case Gzip:
		return "gzip"
	case Brotli:
		return "brotli"
	case Snappy:
		return "snappy"
	default:
		return "unknown"
	}
}

// Stats holds running compression statistics for a Manager.
type Stats struct {
	CompressedBytes   int64
	UncompressedBytes int64
	CompressedCount   int64
	UncompressedCount int64
	CompressionRatio  float64
	SavingsPercent    float64
}

type compressFunc func([]byte) ([]byte, error)
type decompressFunc func([]byte) ([]byte, error)

// Manager wraps an httpcache.Manager, compressing entries before Put and
// decompressing them after Get. It implements httpcache.Manager itself so
// it can be composed with other wrappers or passed directly to an Engine.
type Manager struct {
	next      httpcache.Manager
	algorithm Algorithm
	compress  compressFunc
	decompress map[Algorithm]decompressFunc

	compressedBytes   atomic.Int64
	uncompressedBytes atomic.Int64
	compressedCount   atomic.Int64
	uncompressedCount atomic.Int64
}

func newManager(next httpcache.Manager, algorithm Algorithm, compress compressFunc, self decompressFunc) *Manager {
	return &Manager{
		next:      next,
		algorithm: algorithm,
		compress:  compress,
		decompress: map[Algorithm]decompressFunc{
			algorithm: self,
		},
	}
}

// registerCrossDecoder lets a Manager decompress entries that were written
// by a different algorithm's Manager sharing the same backing store —
// useful when an operator switches algorithms without flushing the cache.
func (m *Manager) registerCrossDecoder(algorithm Algorithm, fn decompressFunc) {
	m.decompress[algorithm] = fn
}

const uncompressedMarker = 0

// Get implements httpcache.Manager.
func (m *Manager) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := m.next.Get(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}
	if len(data) < 1 {
		return data, true, nil
	}

	marker := data[0]
	if marker == uncompressedMarker {
		return data[1:], true, nil
	}

	algo := Algorithm(marker - 1)
	decode, ok := m.decompress[algo]
	if !ok {
		return nil, false, fmt.Errorf("compressstore: no decoder registered for algorithm %v", algo)
	}

	decoded, err := decode(data[1:])
	if err != nil {
		return nil, false, fmt.Errorf("compressstore: decompression failed for key %q: %w", key, err)
	}
	return decoded, true, nil
}

// Put implements httpcache.Manager.
func (m *Manager) Put(ctx context.Context, key string, entry []byte) error {
	compressed, err := m.compress(entry)
	if err != nil {
		httpcache.GetLogger().Warn("compression failed, storing uncompressed",
			"key", key, "algorithm", m.algorithm.String(), "error", err)

		data := make([]byte, len(entry)+1)
		data[0] = uncompressedMarker
		copy(data[1:], entry)

		m.uncompressedCount.Add(1)
		m.uncompressedBytes.Add(int64(len(entry)))
		return m.next.Put(ctx, key, data)
	}

	data := make([]byte, len(compressed)+1)
	data[0] = byte(m.algorithm + 1)
	copy(data[1:], compressed)

	m.compressedCount.Add(1)
	m.compressedBytes.Add(int64(len(compressed)))
	m.uncompressedBytes.Add(int64(len(entry)))
	return m.next.Put(ctx, key, data)
}

// Delete implements httpcache.Manager.
func (m *Manager) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

// Stats returns a snapshot of this Manager's compression statistics.
func (m *Manager) Stats() Stats {
	compressed := m.compressedBytes.Load()
	uncompressed := m.uncompressedBytes.Load()

	var ratio, savings float64
	if uncompressed > 0 {
		ratio = float64(compressed) / float64(uncompressed)
		savings = (1.0 - ratio) * 100
	}

	return Stats{
		CompressedBytes:   compressed,
		UncompressedBytes: uncompressed,
		CompressedCount:   m.compressedCount.Load(),
		UncompressedCount: m.uncompressedCount.Load(),
		CompressionRatio:  ratio,
		SavingsPercent:    savings,
	}
}

var _ httpcache.Manager = (*Manager)(nil)
