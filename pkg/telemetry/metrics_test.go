package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecording(t *testing.T) {
	m, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	m.ObserveAnalysis(42, 150*time.Millisecond)
	m.CountAction("CREATE_USER")
	m.CountAction("CREATE_USER")
	m.CountAction("DELETE_USER")

	if got := testutil.ToFloat64(m.analysesTotal); got != 1 {
		t.Errorf("analyses_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.rowsPlanned); got != 42 {
		t.Errorf("rows_planned_total = %v, want 42", got)
	}
	if got := testutil.ToFloat64(m.actionsPlanned.WithLabelValues("CREATE_USER")); got != 2 {
		t.Errorf("actions_planned_total{CREATE_USER} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.actionsPlanned.WithLabelValues("DELETE_USER")); got != 1 {
		t.Errorf("actions_planned_total{DELETE_USER} = %v, want 1", got)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAnalysis(10, time.Second)
	m.CountAction("CREATE_USER")
}

func TestMetricsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewMetrics(reg); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := NewMetrics(reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}
