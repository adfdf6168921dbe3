package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values shared with callers.
const (
	LookupHit  = "hit"
	LookupMiss = "miss"

	EvictionLazy       = "lazy"
	EvictionSweep      = "sweep"
	EvictionInvalidate = "invalidate"

	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
	OutcomeMalformed   = "malformed"
	OutcomeTooLarge    = "too_large"
	OutcomeError       = "error"
)

// Manager manages all Prometheus metrics for the pitwall service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Cache
	cacheLookups   *prometheus.CounterVec
	cacheEvictions *prometheus.CounterVec
	cacheEntries   *prometheus.GaugeVec

	// Upstream sources
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec

	// Reconciliation
	batchTasks       *prometheus.CounterVec
	reconciledRaces  *prometheus.CounterVec
	derivedStandings prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "pitwall",
		subsystem:        "",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every series
	auto := promauto.With(m.registry)

	m.cacheLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_lookups_total",
		Help:      "Cache lookups by key kind and result (hit or miss)",
	}, []string{"kind", "result"})

	m.cacheEvictions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_evictions_total",
		Help:      "Cache entries removed by reason (lazy, sweep, invalidate)",
	}, []string{"reason"})

	m.cacheEntries = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_entries",
		Help:      "Cache entries by state (total, active, expired)",
	}, []string{"state"})

	m.upstreamRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_requests_total",
		Help:      "Requests to upstream sources by source and outcome",
	}, []string{"source", "outcome"})

	m.upstreamLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_latency_milliseconds",
		Help:      "Upstream request latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"source"})

	m.batchTasks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_tasks_total",
		Help:      "Batched enrichment tasks by outcome",
	}, []string{"outcome"})

	m.reconciledRaces = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconciled_races_total",
		Help:      "Race lists assembled per provenance (historical, live, scraped)",
	}, []string{"source"})

	m.derivedStandings = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "derived_standings_total",
		Help:      "Standings tables computed from race results instead of fetched",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

func lookupResult(hit bool) string {
	if hit {
		return LookupHit
	}
	return LookupMiss
}

// RecordCacheLookup counts a cache read for a key kind such as "races".
func RecordCacheLookup(kind string, hit bool) {
	globalManager.cacheLookups.WithLabelValues(kind, lookupResult(hit)).Inc()
}

// RecordCacheEviction counts n entries removed for the given reason.
func RecordCacheEviction(reason string, n int) {
	if n <= 0 {
		return
	}
	globalManager.cacheEvictions.WithLabelValues(reason).Add(float64(n))
}

// UpdateCacheEntries publishes the latest cache stats snapshot.
func UpdateCacheEntries(total, active, expired int) {
	globalManager.cacheEntries.WithLabelValues("total").Set(float64(total))
	globalManager.cacheEntries.WithLabelValues("active").Set(float64(active))
	globalManager.cacheEntries.WithLabelValues("expired").Set(float64(expired))
}

// RecordUpstreamRequest counts one upstream call.
func RecordUpstreamRequest(source, outcome string) {
	globalManager.upstreamRequests.WithLabelValues(source, outcome).Inc()
}

// RecordUpstreamLatency records upstream latency in milliseconds.
func RecordUpstreamLatency(source string, latencyMs float64) {
	globalManager.upstreamLatency.WithLabelValues(source).Observe(latencyMs)
}

// RecordBatchTask counts a finished batch task.
func RecordBatchTask(outcome string) {
	globalManager.batchTasks.WithLabelValues(outcome).Inc()
}

// RecordReconciledRaces counts a race list assembled from the given provenance.
func RecordReconciledRaces(source string) {
	globalManager.reconciledRaces.WithLabelValues(source).Inc()
}

// RecordDerivedStandings counts a standings table computed locally.
func RecordDerivedStandings() {
	globalManager.derivedStandings.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
