// Package prometheus provides a Prometheus-backed metrics.Collector. This
// package is optional and only imported when Prometheus metrics are needed.
package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arcbridge/httpcache/metrics"
)

// Collector implements metrics.Collector for Prometheus.
type Collector struct {
	managerOps       *prometheus.CounterVec
	managerOpLatency *prometheus.HistogramVec
	managerSize      *prometheus.GaugeVec
	managerEntries   *prometheus.GaugeVec
	decisions        *prometheus.CounterVec
	decisionLatency  *prometheus.HistogramVec
	responseSize     *prometheus.CounterVec
	revalidationErrs *prometheus.CounterVec
}

// CollectorConfig configures a Prometheus Collector.
type CollectorConfig struct {
	// Registry is the registry to register metrics with. Defaults to
	// prometheus.DefaultRegisterer.
	Registry prometheus.Registerer

	// Namespace for metrics (default: "httpcache").
	Namespace string

	// Subsystem for metrics (optional).
	Subsystem string

	// ConstLabels are labels added to all metrics.
	ConstLabels prometheus.Labels
}

// NewCollector creates a Collector with the default registry and configuration.
func NewCollector() *Collector {
	return NewCollectorWithConfig(CollectorConfig{})
}

// NewCollectorWithRegistry creates a Collector registered against reg.
func NewCollectorWithRegistry(reg prometheus.Registerer) *Collector {
	return NewCollectorWithConfig(CollectorConfig{Registry: reg})
}

// NewCollectorWithConfig creates a Collector with custom configuration.
func NewCollectorWithConfig(config CollectorConfig) *Collector {
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}
	if config.Namespace == "" {
		config.Namespace = "httpcache"
	}

	factory := promauto.With(config.Registry)

	return &Collector{
		managerOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "manager_operations_total",
				Help:        "Total number of Manager operations (get, put, delete)",
				ConstLabels: config.ConstLabels,
			},
			[]string{"operation", "backend", "result"},
		),
		managerOpLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "manager_operation_duration_seconds",
				Help:        "Duration of Manager operations in seconds",
				Buckets:     []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
				ConstLabels: config.ConstLabels,
			},
			[]string{"operation", "backend"},
		),
		managerSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "manager_size_bytes",
				Help:        "Current size of a Manager backend in bytes",
				ConstLabels: config.ConstLabels,
			},
			[]string{"backend"},
		),
		managerEntries: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "manager_entries_total",
				Help:        "Current number of entries in a Manager backend",
				ConstLabels: config.ConstLabels,
			},
			[]string{"backend"},
		),
		decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "decisions_total",
				Help:        "Total number of decision engine runs",
				ConstLabels: config.ConstLabels,
			},
			[]string{"method", "cache_mode", "outcome", "status_code"},
		),
		decisionLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "decision_duration_seconds",
				Help:        "Duration of decision engine runs in seconds",
				Buckets:     []float64{.01, .05, .1, .5, 1, 2, 5, 10, 30},
				ConstLabels: config.ConstLabels,
			},
			[]string{"method", "cache_mode", "outcome"},
		),
		responseSize: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "response_size_bytes_total",
				Help:        "Total size of responses served through the engine",
				ConstLabels: config.ConstLabels,
			},
			[]string{"outcome"},
		),
		revalidationErrs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "revalidation_errors_total",
				Help:        "Total number of revalidation errors recovered by serving stale",
				ConstLabels: config.ConstLabels,
			},
			[]string{"error_kind"},
		),
	}
}

// RecordManagerOperation implements metrics.Collector.
func (c *Collector) RecordManagerOperation(operation, backend, result string, duration time.Duration) {
	c.managerOps.WithLabelValues(operation, backend, result).Inc()
	c.managerOpLatency.WithLabelValues(operation, backend).Observe(duration.Seconds())
}

// RecordManagerSize implements metrics.Collector.
func (c *Collector) RecordManagerSize(backend string, sizeBytes int64) {
	c.managerSize.WithLabelValues(backend).Set(float64(sizeBytes))
}

// RecordManagerEntries implements metrics.Collector.
func (c *Collector) RecordManagerEntries(backend string, count int64) {
	c.managerEntries.WithLabelValues(backend).Set(float64(count))
}

// RecordDecision implements metrics.Collector.
func (c *Collector) RecordDecision(method, cacheMode, outcome string, statusCode int, duration time.Duration) {
	c.decisions.WithLabelValues(method, cacheMode, outcome, strconv.Itoa(statusCode)).Inc()
	c.decisionLatency.WithLabelValues(method, cacheMode, outcome).Observe(duration.Seconds())
}

// RecordResponseSize implements metrics.Collector.
func (c *Collector) RecordResponseSize(outcome string, sizeBytes int64) {
	c.responseSize.WithLabelValues(outcome).Add(float64(sizeBytes))
}

// RecordRevalidationError implements metrics.Collector.
func (c *Collector) RecordRevalidationError(errorKind string) {
	c.revalidationErrs.WithLabelValues(errorKind).Inc()
}

var _ metrics.Collector = (*Collector)(nil)
