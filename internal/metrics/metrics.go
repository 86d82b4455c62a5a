// Package metrics exposes import counters and timings to Prometheus.
//
// Collectors live on a private registry so tests can build as many
// instances as they like without tripping duplicate registration.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Row and batch outcomes used as label values.
const (
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeSkipped  = "skipped"
	OutcomeRejected = "rejected"
)

// Metrics holds the importer's collectors.
type Metrics struct {
	reg *prometheus.Registry

	rows     *prometheus.CounterVec   // leaddesk_import_rows_total
	batches  *prometheus.CounterVec   // leaddesk_import_batches_total
	imports  *prometheus.CounterVec   // leaddesk_imports_total
	duration *prometheus.HistogramVec // leaddesk_import_duration_seconds
	active   prometheus.Gauge         // leaddesk_imports_active
}

// New builds a Metrics with its own registry. Go runtime and process
// collectors are included so /metrics is useful on its own.
func New() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		reg: reg,
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leaddesk_import_rows_total",
			Help: "Imported data rows, partitioned by table and outcome.",
		}, []string{"table", "outcome"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leaddesk_import_batches_total",
			Help: "Batch writes, partitioned by table and outcome.",
		}, []string{"table", "outcome"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leaddesk_imports_total",
			Help: "Importer calls, partitioned by table and result (ok or error).",
		}, []string{"table", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leaddesk_import_duration_seconds",
			Help:    "Wall time of one importer call.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"table"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "leaddesk_imports_active",
			Help: "Importer calls currently running.",
		}),
	}

	for name, c := range map[string]prometheus.Collector{
		"rows":     m.rows,
		"batches":  m.batches,
		"imports":  m.imports,
		"duration": m.duration,
		"active":   m.active,
		"go":       collectors.NewGoCollector(),
		"process":  collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register %s: %w", name, err)
		}
	}
	return m, nil
}

// Rows adds n rows with the given outcome.
func (m *Metrics) Rows(table, outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rows.WithLabelValues(table, outcome).Add(float64(n))
}

// Batch counts one batch write.
func (m *Metrics) Batch(table, outcome string) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(table, outcome).Inc()
}

// Begin marks an importer call as running. The returned func records its
// duration and result.
func (m *Metrics) Begin(table string) func(err error) {
	if m == nil {
		return func(error) {}
	}
	start := time.Now()
	m.active.Inc()
	return func(err error) {
		m.active.Dec()
		result := "ok"
		if err != nil {
			result = "error"
		}
		m.imports.WithLabelValues(table, result).Inc()
		m.duration.WithLabelValues(table).Observe(time.Since(start).Seconds())
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
