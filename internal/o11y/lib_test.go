package o11y

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSearchMetricsRecording(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewSearchMetrics(registry, "run-1")

	m.RecordExpansion()
	m.RecordExpansion()
	m.RecordGenerated(5)
	m.RecordDeadend()
	m.SetBestGC(3)
	m.SetOpenSize(42)

	if got := testutil.ToFloat64(m.expansions); got != 2 {
		t.Errorf("expansions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.generated); got != 5 {
		t.Errorf("generated = %v, want 5", got)
	}
	if got := testutil.ToFloat64(m.deadends); got != 1 {
		t.Errorf("deadends = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.bestGC); got != 3 {
		t.Errorf("bestGC = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.openSize); got != 42 {
		t.Errorf("openSize = %v, want 42", got)
	}
}

func TestSearchMetricsDistinctRunIDsDoNotCollide(t *testing.T) {
	registry := prometheus.NewRegistry()
	a := NewSearchMetrics(registry, "run-a")
	b := NewSearchMetrics(registry, "run-b")

	a.RecordExpansion()
	b.RecordExpansion()
	b.RecordExpansion()

	if got := testutil.ToFloat64(a.expansions); got != 1 {
		t.Errorf("run-a expansions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(b.expansions); got != 2 {
		t.Errorf("run-b expansions = %v, want 2", got)
	}
}

func TestExportRunSummaryNoOpWithoutURL(t *testing.T) {
	err := ExportRunSummary(context.Background(), InfluxConfig{}, "run-1", map[string]any{
		"cost": 4.0,
	})
	if err != nil {
		t.Fatalf("ExportRunSummary with empty URL should be a no-op, got error: %v", err)
	}
}
