package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordManagerOperation(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollectorWithRegistry(registry)

	collector.RecordManagerOperation("get", "memory", "hit", time.Millisecond)
	collector.RecordManagerOperation("get", "memory", "miss", 2*time.Millisecond)

	got := testutil.ToFloat64(collector.managerOps.WithLabelValues("get", "memory", "hit"))
	if got != 1 {
		t.Fatalf("expected 1 hit recorded, got %v", got)
	}
}

func TestRecordDecision(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollectorWithRegistry(registry)

	collector.RecordDecision("GET", "default", "hit", 200, time.Millisecond)

	got := testutil.ToFloat64(collector.decisions.WithLabelValues("GET", "default", "hit", "200"))
	if got != 1 {
		t.Fatalf("expected 1 decision recorded, got %v", got)
	}
}

func TestRecordManagerSizeAndEntries(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollectorWithRegistry(registry)

	collector.RecordManagerSize("disk", 2048)
	collector.RecordManagerEntries("disk", 5)

	if got := testutil.ToFloat64(collector.managerSize.WithLabelValues("disk")); got != 2048 {
		t.Fatalf("expected size 2048, got %v", got)
	}
	if got := testutil.ToFloat64(collector.managerEntries.WithLabelValues("disk")); got != 5 {
		t.Fatalf("expected 5 entries, got %v", got)
	}
}
