// Package o11y provides the engine's Prometheus search-stat gauges and an
// optional InfluxDB run-summary export. Every exporter is built from
// caller-supplied config rather than process-global state.
package o11y

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/prometheus/client_golang/prometheus"
)

// SearchMetrics holds the Prometheus gauges the driver updates once per
// expansion: total expansions, total nodes generated, dead-ends discarded,
// and the best goal-count seen so far.
type SearchMetrics struct {
	registry    *prometheus.Registry
	expansions  prometheus.Counter
	generated   prometheus.Counter
	deadends    prometheus.Counter
	bestGC      prometheus.Gauge
	openSize    prometheus.Gauge
}

// NewSearchMetrics registers a fresh set of gauges/counters under registry,
// labeled by runID so that multiple runs in the same process don't
// collide.
func NewSearchMetrics(registry *prometheus.Registry, runID string) *SearchMetrics {
	labels := prometheus.Labels{"run_id": runID}
	m := &SearchMetrics{
		registry: registry,
		expansions: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "planner_expansions_total",
			Help:        "Number of nodes popped from open and expanded.",
			ConstLabels: labels,
		}),
		generated: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "planner_generated_total",
			Help:        "Number of successor nodes generated.",
			ConstLabels: labels,
		}),
		deadends: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "planner_deadends_total",
			Help:        "Number of successors discarded as relaxed dead-ends.",
			ConstLabels: labels,
		}),
		bestGC: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "planner_best_goal_count",
			Help:        "Lowest unachieved-goal-literal count seen so far.",
			ConstLabels: labels,
		}),
		openSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "planner_open_list_size",
			Help:        "Current open-list occupancy.",
			ConstLabels: labels,
		}),
	}
	registry.MustRegister(m.expansions, m.generated, m.deadends, m.bestGC, m.openSize)
	return m
}

// RecordExpansion increments the expansion counter.
func (m *SearchMetrics) RecordExpansion() { m.expansions.Inc() }

// RecordGenerated adds n to the generated-successor counter.
func (m *SearchMetrics) RecordGenerated(n int) { m.generated.Add(float64(n)) }

// RecordDeadend increments the dead-end counter.
func (m *SearchMetrics) RecordDeadend() { m.deadends.Inc() }

// SetBestGC records the current best goal-count.
func (m *SearchMetrics) SetBestGC(gc int) { m.bestGC.Set(float64(gc)) }

// SetOpenSize records the open list's current occupancy.
func (m *SearchMetrics) SetOpenSize(n int) { m.openSize.Set(float64(n)) }

// InfluxConfig is the minimal connection info needed to export a run
// summary. A zero-value URL means export is disabled.
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// ExportRunSummary writes one point named "planner_run" with the given
// fields to InfluxDB, tagged by run_id. It is a no-op if cfg.URL is empty.
func ExportRunSummary(ctx context.Context, cfg InfluxConfig, runID string, fields map[string]any) error {
	if cfg.URL == "" {
		return nil
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	defer client.Close()

	writeAPI := client.WriteAPIBlocking(cfg.Org, cfg.Bucket)
	point := write.NewPoint("planner_run", map[string]string{"run_id": runID}, fields, time.Now())
	if err := writeAPI.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("influxdb export: %w", err)
	}
	return nil
}
