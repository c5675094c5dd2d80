// Package observability exposes sweep results as Prometheus metrics.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arkilian/readbench/internal/bench"
)

// Metrics collects per-level results for one engine. It implements
// bench.Reporter.
type Metrics struct {
	engine string

	levelAttempted  *prometheus.GaugeVec
	levelSuccessful *prometheus.GaugeVec
	levelDuration   *prometheus.HistogramVec
	attemptsTotal   *prometheus.CounterVec
	maxSustained    *prometheus.GaugeVec
	sweepHalted     *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewMetrics creates collectors labelled with engine on a private registry.
func NewMetrics(engine string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		engine: engine,

		levelAttempted: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "readbench_level_attempted",
				Help: "Concurrent connections attempted at the most recent level",
			},
			[]string{"engine"},
		),

		levelSuccessful: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "readbench_level_successful",
				Help: "Successful queries at the most recent level",
			},
			[]string{"engine"},
		),

		levelDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "readbench_level_duration_seconds",
				Help:    "Wall-clock time from dispatch to completion of a level",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
			},
			[]string{"engine"},
		),

		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "readbench_attempts_total",
				Help: "Total connection attempts by outcome",
			},
			[]string{"engine", "outcome"},
		),

		maxSustained: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "readbench_max_sustained_connections",
				Help: "Largest level at which every attempt succeeded",
			},
			[]string{"engine"},
		),

		sweepHalted: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "readbench_sweep_halted",
				Help: "1 if the sweep stopped on a level with failures",
			},
			[]string{"engine"},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.levelAttempted,
		m.levelSuccessful,
		m.levelDuration,
		m.attemptsTotal,
		m.maxSustained,
		m.sweepHalted,
		collectors.NewGoCollector(),
	)

	return m
}

// ReportLevel records one completed level.
func (m *Metrics) ReportLevel(result bench.LevelResult) {
	m.levelAttempted.WithLabelValues(m.engine).Set(float64(result.Attempted))
	m.levelSuccessful.WithLabelValues(m.engine).Set(float64(result.Successful))
	m.levelDuration.WithLabelValues(m.engine).Observe(result.Elapsed.Seconds())
	m.attemptsTotal.WithLabelValues(m.engine, "success").Add(float64(result.Successful))
	m.attemptsTotal.WithLabelValues(m.engine, "failure").Add(float64(result.Failed()))

	if result.Complete() {
		m.maxSustained.WithLabelValues(m.engine).Set(float64(result.Attempted))
	}
}

// ReportSweep records how the sweep ended.
func (m *Metrics) ReportSweep(result bench.SweepResult) {
	m.maxSustained.WithLabelValues(m.engine).Set(float64(result.MaxSustained()))

	halted := 0.0
	if result.Halted {
		halted = 1.0
	}
	m.sweepHalted.WithLabelValues(m.engine).Set(halted)
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the registry in the Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
