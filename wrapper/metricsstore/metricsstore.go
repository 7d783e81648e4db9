// Package metricsstore wraps an httpcache.Manager so that every Get/Put/Delete
// call is recorded through a metrics.Collector, independent of which
// monitoring backend the caller configures.
package metricsstore

import (
	"context"
	"time"

	"github.com/arcbridge/httpcache"
	"github.com/arcbridge/httpcache/metrics"
)

const (
	resultHit     = "hit"
	resultMiss    = "miss"
	resultSuccess = "success"
	resultError   = "error"
)

// Manager wraps an httpcache.Manager, recording operation outcomes and
// latency through a metrics.Collector.
type Manager struct {
	next      httpcache.Manager
	collector metrics.Collector
	backend   string
}

// New wraps next, tagging every recorded metric with backend (e.g. "redis",
// "disk", "leveldb"). If collector is nil, metrics.DefaultCollector is used.
func New(next httpcache.Manager, backend string, collector metrics.Collector) *Manager {
	if collector == nil {
		collector = metrics.DefaultCollector
	}
	return &Manager{next: next, collector: collector, backend: backend}
}

// Get implements httpcache.Manager.
func (m *Manager) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	entry, ok, err := m.next.Get(ctx, key)
	duration := time.Since(start)

	result := resultMiss
	switch {
	case err != nil:
		result = resultError
	case ok:
		result = resultHit
	}
	m.collector.RecordManagerOperation("get", m.backend, result, duration)

	return entry, ok, err
}

// Put implements httpcache.Manager.
func (m *Manager) Put(ctx context.Context, key string, entry []byte) error {
	start := time.Now()
	err := m.next.Put(ctx, key, entry)
	duration := time.Since(start)

	result := resultSuccess
	if err != nil {
		result = resultError
	}
	m.collector.RecordManagerOperation("put", m.backend, result, duration)

	return err
}

// Delete implements httpcache.Manager.
func (m *Manager) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := m.next.Delete(ctx, key)
	duration := time.Since(start)

	result := resultSuccess
	if err != nil {
		result = resultError
	}
	m.collector.RecordManagerOperation("delete", m.backend, result, duration)

	return err
}

var _ httpcache.Manager = (*Manager)(nil)
