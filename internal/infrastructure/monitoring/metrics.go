package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/GriffinCanCode/TestBench/backend/internal/sandbox"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Execution metrics
	RunsTotal    *prometheus.CounterVec
	RunDuration  *prometheus.HistogramVec
	RunsInFlight prometheus.Gauge
	TestsTotal   *prometheus.CounterVec

	// Service metrics
	ServiceCalls    *prometheus.CounterVec
	ServiceDuration *prometheus.HistogramVec

	// Generator metrics
	GeneratorCalls    *prometheus.CounterVec
	GeneratorDuration *prometheus.HistogramVec

	// Project metrics
	Projects prometheus.Gauge

	startTime time.Time
	stats     *RunStats

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	TotalDuration float64 `json:"-"`
	RequestCount  int64   `json:"-"`
	AvgLatencyMs  float64 `json:"avg_latency_ms"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// NewMetrics creates a metrics collector on its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),
		stats:     NewRunStats(DefaultStatsWindow),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "testbench_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "testbench_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "testbench_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "testbench_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Execution metrics
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "testbench_runs_total",
				Help: "Total number of test runs by outcome",
			},
			[]string{"outcome"},
		),
		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "testbench_run_duration_seconds",
				Help:    "Test run wall-clock duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"outcome"},
		),
		RunsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "testbench_runs_in_flight",
				Help: "Number of test runs currently executing",
			},
		),
		TestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "testbench_tests_total",
				Help: "Total number of executed it() blocks by status",
			},
			[]string{"status"},
		),

		// Service metrics
		ServiceCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "testbench_service_calls_total",
				Help: "Total number of service calls",
			},
			[]string{"service", "method", "status"},
		),
		ServiceDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "testbench_service_duration_seconds",
				Help:    "Service call duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"service", "method"},
		),

		// Generator metrics
		GeneratorCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "testbench_generator_calls_total",
				Help: "Total number of test generation calls",
			},
			[]string{"provider", "status"},
		),
		GeneratorDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "testbench_generator_duration_seconds",
				Help:    "Test generation duration in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"provider"},
		),

		// Project metrics
		Projects: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "testbench_projects",
				Help: "Number of stored projects",
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "testbench_uptime_seconds",
			Help: "Service uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Stats returns the run statistics tracker
func (m *Metrics) Stats() *RunStats {
	return m.stats
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RunStarted implements sandbox.Observer
func (m *Metrics) RunStarted() {
	m.RunsInFlight.Inc()
}

// RunFinished implements sandbox.Observer
func (m *Metrics) RunFinished(outcome sandbox.Outcome, duration time.Duration, report sandbox.Report) {
	m.RunsInFlight.Dec()
	m.RunsTotal.WithLabelValues(string(outcome)).Inc()
	m.RunDuration.WithLabelValues(string(outcome)).Observe(duration.Seconds())

	passed, failed := report.Passed(), report.Failed()
	m.TestsTotal.WithLabelValues(string(sandbox.StatusPass)).Add(float64(passed))
	m.TestsTotal.WithLabelValues(string(sandbox.StatusFail)).Add(float64(failed))

	m.stats.Record(outcome, duration, passed, failed)
}

// RecordServiceCall records a service call
func (m *Metrics) RecordServiceCall(service, method, status string, duration time.Duration) {
	m.ServiceCalls.WithLabelValues(service, method, status).Inc()
	m.ServiceDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

// RecordGeneration records a test generation call
func (m *Metrics) RecordGeneration(provider string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.GeneratorCalls.WithLabelValues(provider, status).Inc()
	m.GeneratorDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// SetProjects sets the number of stored projects
func (m *Metrics) SetProjects(count int) {
	m.Projects.Set(float64(count))
}

// Snapshot returns HTTP totals for the JSON API
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := m.snapshot
	if snap.RequestCount > 0 {
		snap.AvgLatencyMs = snap.TotalDuration / float64(snap.RequestCount) * 1000
	}
	snap.UptimeSeconds = time.Since(m.startTime).Seconds()
	return snap
}
