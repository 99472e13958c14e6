// Package metrics provides Prometheus metrics for the decision ranker.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Decision data held in memory
	topicsTotal     prometheus.Gauge
	attributesTotal prometheus.Gauge
	subjectsTotal   prometheus.Gauge

	// Mutation API
	mutations        *prometheus.CounterVec
	validationErrors *prometheus.CounterVec
	duplicates       prometheus.Counter

	// Ranking
	rankingLatency   prometheus.Histogram
	winnersDeclared  prometheus.Counter
	rankingsComputed prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ranker",
		subsystem:        "decision",
		histogramBuckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50, 100},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.topicsTotal = auto.NewGauge(m.gaugeOpts("topics_total", "Number of decision topics held in memory"))
	m.attributesTotal = auto.NewGauge(m.gaugeOpts("attributes_total", "Number of attributes across all topics"))
	m.subjectsTotal = auto.NewGauge(m.gaugeOpts("subjects_total", "Number of subjects across all topics"))

	m.mutations = auto.NewCounterVec(
		m.counterOpts("mutations_total", "Committed mutations by operation"),
		[]string{"operation"},
	)
	m.validationErrors = auto.NewCounterVec(
		m.counterOpts("validation_errors_total", "Rejected mutations by validation field"),
		[]string{"field"},
	)
	m.duplicates = auto.NewCounter(m.counterOpts("idempotent_duplicates_total", "Mutation requests skipped because their idempotency key was already seen"))

	m.rankingLatency = auto.NewHistogram(m.histogramOpts("ranking_latency_milliseconds", "Time spent scoring and ranking a topic"))
	m.winnersDeclared = auto.NewCounter(m.counterOpts("winners_declared_total", "Rankings that designated a winner"))
	m.rankingsComputed = auto.NewCounter(m.counterOpts("rankings_computed_total", "Rankings computed on read"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorsByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "HTTP error responses by endpoint, method and error type"),
		[]string{"endpoint", "method", "error_type"},
	)
}

// UpdateStoreTotals sets the in-memory topic, attribute and subject gauges.
func (m *Manager) UpdateStoreTotals(topics, attributes, subjects int) {
	m.topicsTotal.Set(float64(topics))
	m.attributesTotal.Set(float64(attributes))
	m.subjectsTotal.Set(float64(subjects))
}

// RecordMutation counts a committed mutation.
func (m *Manager) RecordMutation(operation string) {
	m.mutations.WithLabelValues(operation).Inc()
}

// RecordValidationError counts a rejected mutation.
func (m *Manager) RecordValidationError(field string) {
	m.validationErrors.WithLabelValues(field).Inc()
}

// RecordDuplicate counts a skipped duplicate request.
func (m *Manager) RecordDuplicate() {
	m.duplicates.Inc()
}

// RecordRanking observes one ranking computation.
func (m *Manager) RecordRanking(latencyMs float64, winner bool) {
	m.rankingsComputed.Inc()
	m.rankingLatency.Observe(latencyMs)
	if winner {
		m.winnersDeclared.Inc()
	}
}

// RecordHTTPRequest records an HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint records an HTTP error response.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	m.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// Package level helpers delegate to the global manager.

// UpdateStoreTotals sets the in-memory size gauges.
func UpdateStoreTotals(topics, attributes, subjects int) {
	globalManager.UpdateStoreTotals(topics, attributes, subjects)
}

// RecordMutation counts a committed mutation.
func RecordMutation(operation string) { globalManager.RecordMutation(operation) }

// RecordValidationError counts a rejected mutation.
func RecordValidationError(field string) { globalManager.RecordValidationError(field) }

// RecordDuplicate counts a skipped duplicate request.
func RecordDuplicate() { globalManager.RecordDuplicate() }

// RecordRanking observes one ranking computation.
func RecordRanking(latencyMs float64, winner bool) { globalManager.RecordRanking(latencyMs, winner) }

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordErrorByEndpoint records an HTTP error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

var runtimeOnce sync.Once //nolint:gochecknoglobals // guards runtime collector registration

// RegisterRuntimeCollectors adds the Go runtime and process collectors to the
// custom registry. Safe to call more than once.
func RegisterRuntimeCollectors() {
	runtimeOnce.Do(func() {
		customRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
