// Package metrics provides Prometheus metrics for the folio metadata search engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the folio service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Search lifecycle metrics
	searchesStarted  prometheus.Counter
	searchesDone     prometheus.Counter
	searchDuration   prometheus.Histogram
	resultsPerSearch prometheus.Histogram
	activeSearches   prometheus.Gauge

	// Provider metrics
	providerRequests *prometheus.CounterVec
	providerFailures *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	activeCalls      prometheus.Gauge

	// Reduction metrics
	scoringLatency  prometheus.Histogram
	mergeOperations *prometheus.CounterVec
	mergeErrors     prometheus.Counter
	recordsDropped  prometheus.Counter

	// Fetch façade metrics
	fetchNoResult prometheus.Counter
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "folio",
		subsystem:        "search",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Register on the configured registry (custom by default).
	auto := promauto.With(m.registry)

	m.searchesStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "searches_started_total",
		Help:      "Total number of metadata searches started",
	})

	m.searchesDone = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "searches_completed_total",
		Help:      "Total number of metadata searches that reached completion",
	})

	m.searchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "search_duration_milliseconds",
		Help:      "Histogram of end-to-end search duration in milliseconds",
		Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	})

	m.resultsPerSearch = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "results_per_search",
		Help:      "Histogram of result counts returned by completed searches",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})

	m.activeSearches = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_searches",
		Help:      "Number of searches currently in flight",
	})

	m.providerRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_requests_total",
		Help:      "Provider calls by provider id and terminal outcome",
	}, []string{"provider", "outcome"})

	m.providerFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_failures_total",
		Help:      "Provider failures by provider id and error kind",
	}, []string{"provider", "kind"})

	m.providerLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "provider_latency_milliseconds",
		Help:      "Histogram of per-provider call latency in milliseconds",
		Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	}, []string{"provider"})

	m.activeCalls = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_provider_calls",
		Help:      "Number of provider calls currently executing",
	})

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_latency_milliseconds",
		Help:      "Histogram of candidate scoring latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.mergeOperations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "merge_operations_total",
		Help:      "Merge operations by strategy",
	}, []string{"strategy"})

	m.mergeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "merge_errors_total",
		Help:      "Total number of merge invocations that failed",
	})

	m.recordsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicate_records_dropped_total",
		Help:      "Candidate records dropped as cross-provider duplicates",
	})

	m.fetchNoResult = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_no_result_total",
		Help:      "Fetch calls that produced no merged record",
	})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Fetch calls answered from the result cache",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Fetch calls that missed the result cache",
	})
}

// RecordSearchStarted increments the searches started counter.
func RecordSearchStarted() {
	globalManager.searchesStarted.Inc()
	globalManager.activeSearches.Inc()
}

// RecordSearchCompleted records a finished search with its duration and result count.
func RecordSearchCompleted(durationMs float64, resultCount int) {
	globalManager.searchesDone.Inc()
	globalManager.activeSearches.Dec()
	globalManager.searchDuration.Observe(durationMs)
	globalManager.resultsPerSearch.Observe(float64(resultCount))
}

// RecordProviderStarted increments the active provider call gauge.
func RecordProviderStarted() {
	globalManager.activeCalls.Inc()
}

// RecordProviderOutcome records a provider call's terminal outcome and latency.
func RecordProviderOutcome(providerID, outcome string, latencyMs float64) {
	globalManager.activeCalls.Dec()
	globalManager.providerRequests.WithLabelValues(providerID, outcome).Inc()
	globalManager.providerLatency.WithLabelValues(providerID).Observe(latencyMs)
}

// RecordProviderFailure records a provider failure by error kind.
func RecordProviderFailure(providerID, kind string) {
	globalManager.providerFailures.WithLabelValues(providerID, kind).Inc()
}

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordMerge increments the merge counter for a strategy.
func RecordMerge(strategy string) {
	globalManager.mergeOperations.WithLabelValues(strategy).Inc()
}

// RecordMergeError increments the merge errors counter.
func RecordMergeError() {
	globalManager.mergeErrors.Inc()
}

// RecordDuplicateDropped increments the duplicate records counter.
func RecordDuplicateDropped() {
	globalManager.recordsDropped.Inc()
}

// RecordFetchNoResult increments the no-result fetch counter.
func RecordFetchNoResult() {
	globalManager.fetchNoResult.Inc()
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// GetRegistry returns the custom registry for exposing via an HTTP handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
