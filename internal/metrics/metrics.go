// Package metrics exposes run results as Prometheus series, either through
// a node_exporter textfile or an HTTP handler in schedule mode.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raoulx24/dir-archiver/internal/report"
)

type Metrics struct {
	registry        *prometheus.Registry
	runsTotal       *prometheus.CounterVec
	unitsTotal      *prometheus.CounterVec
	filesTotal      *prometheus.CounterVec
	bytesTotal      *prometheus.CounterVec
	errorsTotal     prometheus.Counter
	runDuration     prometheus.Histogram
	lastRunTime     prometheus.Gauge
	lastSuccessTime prometheus.Gauge
}

// New registers all collectors on a private registry.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Archive runs by result (ok, failed, interrupted)",
			},
			[]string{"result"},
		),
		unitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "units_total",
				Help:      "Processed archive units by status (ok, failed, skipped)",
			},
			[]string{"status"},
		),
		filesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_total",
				Help:      "Files handled by action (archived, expired)",
			},
			[]string{"action"},
		),
		bytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bytes_total",
				Help:      "Bytes of source files handled by action (archived, expired)",
			},
			[]string{"action"},
		),
		errorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Per-file and per-unit errors recorded",
			},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of archive runs",
				Buckets:   []float64{.1, .5, 1, 5, 15, 60, 300, 900, 3600},
			},
		),
		lastRunTime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Finish time of the last run",
			},
		),
		lastSuccessTime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Finish time of the last run without errors",
			},
		),
	}

	reg.MustRegister(
		m.runsTotal,
		m.unitsTotal,
		m.filesTotal,
		m.bytesTotal,
		m.errorsTotal,
		m.runDuration,
		m.lastRunTime,
		m.lastSuccessTime,
	)
	return m
}

// Observe records one finished run.
func (m *Metrics) Observe(r report.RunResult) {
	result := "ok"
	switch {
	case r.Interrupted:
		result = "interrupted"
	case r.Failed():
		result = "failed"
	}
	m.runsTotal.WithLabelValues(result).Inc()

	for _, u := range r.Units {
		status := "ok"
		switch {
		case u.Failed():
			status = "failed"
		case u.Skipped:
			status = "skipped"
		}
		m.unitsTotal.WithLabelValues(status).Inc()
	}

	t := r.Totals()
	m.filesTotal.WithLabelValues("archived").Add(float64(t.Archived))
	m.filesTotal.WithLabelValues("expired").Add(float64(t.Expired))
	m.bytesTotal.WithLabelValues("archived").Add(float64(t.ArchivedBytes))
	m.bytesTotal.WithLabelValues("expired").Add(float64(t.ExpiredBytes))
	m.errorsTotal.Add(float64(t.Errors))

	m.runDuration.Observe(r.Duration().Seconds())
	m.lastRunTime.Set(float64(r.FinishedAt.Unix()))
	if result == "ok" {
		m.lastSuccessTime.Set(float64(r.FinishedAt.Unix()))
	}
}

// WriteTextfile writes the current values in the text exposition format,
// atomically, for node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
