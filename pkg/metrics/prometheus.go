// Package metrics provides Prometheus metrics for the hype metrics API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Lookup metrics
	entityLookups  *prometheus.CounterVec
	fieldDefaults  *prometheus.CounterVec
	entityListings prometheus.Counter

	// Upload metrics
	uploads     *prometheus.CounterVec
	uploadBytes prometheus.Histogram

	// Document state
	trackedEntities    prometheus.Gauge
	storePopulated     prometheus.Gauge
	documentAgeSeconds prometheus.Gauge

	// Store metrics
	storeOps     *prometheus.CounterVec
	storeLatency *prometheus.HistogramVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level helpers

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out of /metrics

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hype",
		subsystem:        "api",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// Enabled reports whether the manager records observations.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval is how often gauge updaters should run.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector definition
	auto := promauto.With(m.registry)

	m.entityLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "entity_lookups_total",
		Help:        "Entity lookups by view and whether any field was found",
		ConstLabels: m.constLabels,
	}, []string{"view", "outcome"})

	m.fieldDefaults = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "field_defaults_total",
		Help:        "Response fields served from the default table",
		ConstLabels: m.constLabels,
	}, []string{"field"})

	m.entityListings = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "entity_listings_total",
		Help:        "Number of entity list requests served",
		ConstLabels: m.constLabels,
	})

	m.uploads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "uploads_total",
		Help:        "Document uploads by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.uploadBytes = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upload_size_bytes",
		Help:        "Size of accepted document uploads",
		Buckets:     prometheus.ExponentialBuckets(1024, 4, 10),
		ConstLabels: m.constLabels,
	})

	m.trackedEntities = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "tracked_entities",
		Help:        "Number of keys in hype_scores in the current document",
		ConstLabels: m.constLabels,
	})

	m.storePopulated = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_populated",
		Help:        "1 once a document has been uploaded, 0 before",
		ConstLabels: m.constLabels,
	})

	m.documentAgeSeconds = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "document_age_seconds",
		Help:        "Seconds since the stored document was last replaced",
		ConstLabels: m.constLabels,
	})

	m.storeOps = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_operations_total",
		Help:        "Store operations by backend, operation and outcome",
		ConstLabels: m.constLabels,
	}, []string{"backend", "op", "outcome"})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_latency_milliseconds",
		Help:        "Store operation latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"backend", "op"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_type_total",
		Help:        "Errors by type and severity",
		ConstLabels: m.constLabels,
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_endpoint_total",
		Help:        "Errors by endpoint, method and type",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_usage_bytes",
		Help:        "Heap bytes allocated",
		ConstLabels: m.constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: m.constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "Average GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.constLabels,
	})
}

// Manager-scoped recorders. The package-level helpers below forward to the global manager.

// RecordEntityLookup counts a lookup for view ("entity", "metrics", "trending").
func (m *Manager) RecordEntityLookup(view string, found bool) {
	if !m.enabled {
		return
	}
	outcome := "defaulted"
	if found {
		outcome = "found"
	}
	m.entityLookups.WithLabelValues(view, outcome).Inc()
}

// RecordFieldDefaulted counts a response field served from the default table.
func (m *Manager) RecordFieldDefaulted(field string) {
	if m.enabled {
		m.fieldDefaults.WithLabelValues(field).Inc()
	}
}

// RecordEntityListing counts an entity list request.
func (m *Manager) RecordEntityListing() {
	if m.enabled {
		m.entityListings.Inc()
	}
}

// RecordUpload counts an upload by outcome ("accepted", "rejected", "failed").
func (m *Manager) RecordUpload(outcome string) {
	if m.enabled {
		m.uploads.WithLabelValues(outcome).Inc()
	}
}

// RecordUploadBytes observes the size of an accepted upload.
func (m *Manager) RecordUploadBytes(n int) {
	if m.enabled {
		m.uploadBytes.Observe(float64(n))
	}
}

// UpdateTrackedEntities sets the tracked entity gauge.
func (m *Manager) UpdateTrackedEntities(n int) {
	if m.enabled {
		m.trackedEntities.Set(float64(n))
	}
}

// UpdateStorePopulated sets the populated gauge.
func (m *Manager) UpdateStorePopulated(populated bool) {
	if !m.enabled {
		return
	}
	if populated {
		m.storePopulated.Set(1)
		return
	}
	m.storePopulated.Set(0)
}

// UpdateDocumentAge sets the document age gauge.
func (m *Manager) UpdateDocumentAge(age time.Duration) {
	if m.enabled {
		m.documentAgeSeconds.Set(age.Seconds())
	}
}

// RecordStoreOperation counts a store operation and observes its latency.
func (m *Manager) RecordStoreOperation(backend, op string, err error, latency time.Duration) {
	if !m.enabled {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.storeOps.WithLabelValues(backend, op, outcome).Inc()
	m.storeLatency.WithLabelValues(backend, op).Observe(float64(latency.Microseconds()) / 1000)
}

// RecordHTTPRequest records an HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError records an error response.
func (m *Manager) RecordHTTPError(endpoint, method, errorType, severity string) {
	if !m.enabled {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// UpdateSystem sets the runtime gauges.
func (m *Manager) UpdateSystem(memBytes uint64, goroutines int, avgGCPauseMs float64) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(memBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
	if avgGCPauseMs > 0 {
		m.systemGCPauseTime.Observe(avgGCPauseMs)
	}
}

// Package-level helpers.

// Init replaces the global manager with one built from opts on a fresh
// custom registry. Call it before serving /metrics or recording anything.
func Init(opts ...Option) *Manager {
	registry := prometheus.NewRegistry()
	customRegistry = registry
	globalManager = NewManager(append(opts, WithPrometheusRegistry(registry))...)
	return globalManager
}

// Default returns the global manager.
func Default() *Manager { return globalManager }

// RecordEntityLookup counts a lookup on the global manager.
func RecordEntityLookup(view string, found bool) { globalManager.RecordEntityLookup(view, found) }

// RecordFieldDefaulted counts a defaulted field on the global manager.
func RecordFieldDefaulted(field string) { globalManager.RecordFieldDefaulted(field) }

// RecordEntityListing counts an entity list request on the global manager.
func RecordEntityListing() { globalManager.RecordEntityListing() }

// RecordUpload counts an upload on the global manager.
func RecordUpload(outcome string) { globalManager.RecordUpload(outcome) }

// RecordUploadBytes observes an upload size on the global manager.
func RecordUploadBytes(n int) { globalManager.RecordUploadBytes(n) }

// UpdateTrackedEntities sets the tracked entity gauge on the global manager.
func UpdateTrackedEntities(n int) { globalManager.UpdateTrackedEntities(n) }

// UpdateStorePopulated sets the populated gauge on the global manager.
func UpdateStorePopulated(populated bool) { globalManager.UpdateStorePopulated(populated) }

// UpdateDocumentAge sets the document age gauge on the global manager.
func UpdateDocumentAge(age time.Duration) { globalManager.UpdateDocumentAge(age) }

// RecordStoreOperation records a store operation on the global manager.
func RecordStoreOperation(backend, op string, err error, latency time.Duration) {
	globalManager.RecordStoreOperation(backend, op, err, latency)
}

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordHTTPError records an error response on the global manager.
func RecordHTTPError(endpoint, method, errorType, severity string) {
	globalManager.RecordHTTPError(endpoint, method, errorType, severity)
}

// UpdateSystem sets the runtime gauges on the global manager.
func UpdateSystem(memBytes uint64, goroutines int, avgGCPauseMs float64) {
	globalManager.UpdateSystem(memBytes, goroutines, avgGCPauseMs)
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
