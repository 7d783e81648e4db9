// Package metrics defines a generic interface for collecting decision-engine
// and storage metrics without depending on any specific monitoring system
// (Prometheus, OpenTelemetry, Datadog, etc.). In this module only the
// Manager wrapper in wrapper/metricsstore reports through it; the Engine
// itself does not call a Collector.
package metrics

import "time"

// Collector receives decision-engine and Manager metrics. The decision
// methods (RecordDecision, RecordResponseSize, RecordRevalidationError)
// have no caller inside this module.
type Collector interface {
	// RecordManagerOperation records a Manager operation ("get", "put", "delete").
	// result is "hit", "miss", "success", or "error".
	RecordManagerOperation(operation, backend, result string, duration time.Duration)

	// RecordManagerSize records the current size of a Manager backend in bytes.
	RecordManagerSize(backend string, sizeBytes int64)

	// RecordManagerEntries records the current number of entries in a Manager backend.
	RecordManagerEntries(backend string, count int64)

	// RecordDecision records the outcome of one Engine.Run call.
	// cacheMode is the resolved CacheMode; outcome is "hit", "miss",
	// "revalidated", or "bypass"; statusCode is the response status served.
	RecordDecision(method, cacheMode, outcome string, statusCode int, duration time.Duration)

	// RecordResponseSize records the size of a response body served through the engine.
	RecordResponseSize(outcome string, sizeBytes int64)

	// RecordRevalidationError records a remote-fetch error recovered by
	// serving a stale cached response instead. errorKind classifies the
	// error (e.g. "network", "server_error", "timeout").
	RecordRevalidationError(errorKind string)
}

// NoOpCollector implements Collector with no-op operations. It is the
// default collector, giving zero overhead to callers who don't configure
// metrics.
type NoOpCollector struct{}

func (NoOpCollector) RecordManagerOperation(_, _, _ string, _ time.Duration) {}
func (NoOpCollector) RecordManagerSize(_ string, _ int64)                    {}
func (NoOpCollector) RecordManagerEntries(_ string, _ int64)                 {}
func (NoOpCollector) RecordDecision(_, _, _ string, _ int, _ time.Duration)  {}
func (NoOpCollector) RecordResponseSize(_ string, _ int64)                   {}
func (NoOpCollector) RecordRevalidationError(_ string)                      {}

// DefaultCollector is the no-op collector used when metrics are not configured.
var DefaultCollector Collector = NoOpCollector{}

var _ Collector = NoOpCollector{}
