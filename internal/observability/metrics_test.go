package observability

import (
	"testing"
	"time"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordStep("integer", "rejected")
	m.RecordStep("integer", "rejected")
	m.RecordSession("ticket-wizard", "completed")
	m.RecordRequest("/health/live", "GET", 200, time.Millisecond)
	snap := m.Snapshot()
	if snap["steps"]["integer|rejected"] != 2 {
		t.Fatalf("unexpected step counters %v", snap["steps"])
	}
	if snap["sessions"]["ticket-wizard|completed"] != 1 || snap["requests"]["/health/live|GET|200"] != 1 {
		t.Fatalf("unexpected snapshot %v", snap)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordStep("a", "b")
	m.RecordSession("a", "b")
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordError("/", "GET", "X")
	if m.Snapshot() != nil {
		t.Fatalf("nil metrics snapshot must be nil")
	}
}
