// Package metrics provides Prometheus metrics for the gymstats sync service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Sync pipeline metrics
	sanctionsSynced prometheus.Counter
	scoresSynced    prometheus.Counter
	syncErrors      prometheus.Counter
	syncDuration    *prometheus.HistogramVec
	fetchFailures   *prometheus.CounterVec
	recordsSkipped  *prometheus.CounterVec
	batchCandidates prometheus.Counter
	batchMatched    prometheus.Counter
	lastSyncUnix    prometheus.Gauge

	// Store metrics
	storeWrites *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gymstats",
		subsystem:        "sync",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.sanctionsSynced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sanctions_synced_total",
		Help:      "Total number of sanctions reconciled into the store",
	})

	m.scoresSynced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scores_synced_total",
		Help:      "Total number of score rows upserted",
	})

	m.syncErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_total",
		Help:      "Total number of sync transactions rolled back",
	})

	m.syncDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "duration_seconds",
			Help:      "Sync operation duration in seconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"operation"},
	)

	m.fetchFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fetch_failures_total",
			Help:      "Total number of failed upstream fetches by resource and failure kind",
		},
		[]string{"resource", "kind"},
	)

	m.recordsSkipped = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "records_skipped_total",
			Help:      "Total number of upstream records skipped for data-quality reasons",
		},
		[]string{"entity", "reason"},
	)

	m.batchCandidates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_candidates_total",
		Help:      "Total number of listed meets examined by club-season syncs",
	})

	m.batchMatched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_matched_total",
		Help:      "Total number of meets where the target club participated",
	})

	m.lastSyncUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_success_unix",
		Help:      "Unix timestamp of the last successful sync",
	})

	m.storeWrites = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "repository",
			Name:      "writes_total",
			Help:      "Total number of upsert statements executed by entity kind",
		},
		[]string{"entity"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by endpoint, method and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: "http",
			Name:      "request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		},
		[]string{"endpoint", "method", "status"},
	)
}

// RecordSanctionSynced increments the synced sanctions counter.
func RecordSanctionSynced() {
	globalManager.sanctionsSynced.Inc()
}

// RecordScoresSynced adds to the synced scores counter.
func RecordScoresSynced(n int) {
	globalManager.scoresSynced.Add(float64(n))
}

// RecordSyncError increments the rolled-back transactions counter.
func RecordSyncError() {
	globalManager.syncErrors.Inc()
}

// RecordSyncDuration records one sync operation's duration in seconds.
func RecordSyncDuration(operation string, seconds float64) {
	globalManager.syncDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordFetchFailure counts one failed upstream fetch. kind is "http" or
// "transport".
func RecordFetchFailure(resource, kind string) {
	globalManager.fetchFailures.WithLabelValues(resource, kind).Inc()
}

// RecordRecordSkipped counts one upstream record dropped for a
// data-quality reason.
func RecordRecordSkipped(entity, reason string) {
	globalManager.recordsSkipped.WithLabelValues(entity, reason).Inc()
}

// RecordBatchCandidate counts one listed meet examined by a batch sync.
func RecordBatchCandidate() {
	globalManager.batchCandidates.Inc()
}

// RecordBatchMatched counts one meet matched by a batch sync.
func RecordBatchMatched() {
	globalManager.batchMatched.Inc()
}

// UpdateLastSyncUnix sets the timestamp of the last successful sync.
func UpdateLastSyncUnix(ts int64) {
	globalManager.lastSyncUnix.Set(float64(ts))
}

// RecordStoreWrite counts one upsert by entity kind.
func RecordStoreWrite(entity string) {
	globalManager.storeWrites.WithLabelValues(entity).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
