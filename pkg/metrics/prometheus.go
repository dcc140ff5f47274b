// Package metrics provides Prometheus metrics for the ddrsync pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// defaultRunBuckets spans 0.25s to about two minutes.
var defaultRunBuckets = prometheus.ExponentialBuckets(0.25, 2, 10) //nolint:gochecknoglobals // bucket layout

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	fetchBuckets     []float64
	runBuckets       []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Run Metrics - one observation per Run/Refresh
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	degradedRuns  prometheus.Counter
	failedPlayers prometheus.Counter

	// Catalog Metrics - state of the reconciled catalog
	catalogSongs           prometheus.Gauge
	catalogLinkedSongs     prometheus.Gauge
	catalogNewSongs        prometheus.Counter
	reconcileSecondaryOnly prometheus.Counter
	reconcileDuplicateKeys prometheus.Counter

	// Score Metrics - merge outcomes
	scoreSlotsChanged   *prometheus.CounterVec
	attributionDropped  prometheus.Counter
	secondaryDiscarded  prometheus.Counter
	searchFuzzyFallback prometheus.Counter

	// Fetch Metrics - collaborator calls executed by workers
	fetchLatency   *prometheus.HistogramVec
	fetchErrors    *prometheus.CounterVec
	skippedRecords *prometheus.CounterVec

	// Queue Metrics - job queue
	queueCapacity      prometheus.Gauge
	queueSize          prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker Metrics
	workerActiveCount prometheus.Gauge
	workerErrors      *prometheus.CounterVec
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
		namespace:        "ddrsync",
		subsystem:        "pipeline",
		fetchBuckets:     prometheus.DefBuckets,
		runBuckets:       defaultRunBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// name applies the configured metric prefix.
func (m *Manager) name(base string) string {
	if m.metricPrefix == "" {
		return base
	}
	return m.metricPrefix + "_" + base
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.runs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("runs_total"),
		Help:        "Total number of pipeline runs by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("run_duration_seconds"),
		Help:        "Histogram of pipeline run duration in seconds",
		Buckets:     m.runBuckets,
		ConstLabels: labels,
	})

	m.degradedRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("degraded_runs_total"),
		Help:        "Runs that fell back to a primary-only catalog",
		ConstLabels: labels,
	})

	m.failedPlayers = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("failed_player_fetches_total"),
		Help:        "Per-player score fetches that failed",
		ConstLabels: labels,
	})

	m.catalogSongs = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("catalog_songs"),
		Help:        "Songs in the current canonical catalog",
		ConstLabels: labels,
	})

	m.catalogLinkedSongs = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("catalog_linked_songs"),
		Help:        "Canonical songs linked to a secondary local id",
		ConstLabels: labels,
	})

	m.catalogNewSongs = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("catalog_new_songs_total"),
		Help:        "Songs added to the catalog across refreshes",
		ConstLabels: labels,
	})

	m.reconcileSecondaryOnly = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("reconcile_secondary_only_total"),
		Help:        "Secondary catalog entries dropped for lack of a primary match",
		ConstLabels: labels,
	})

	m.reconcileDuplicateKeys = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("reconcile_duplicate_keys_total"),
		Help:        "Normalized titles seen more than once during reconciliation",
		ConstLabels: labels,
	})

	m.scoreSlotsChanged = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("score_slots_changed_total"),
		Help:        "Score slots whose merged value changed, by source",
		ConstLabels: labels,
	}, []string{"source"})

	m.attributionDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("attribution_dropped_total"),
		Help:        "Secondary score tables dropped because the song is not in the catalog",
		ConstLabels: labels,
	})

	m.secondaryDiscarded = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("secondary_results_discarded_total"),
		Help:        "Secondary score results discarded by a degraded run",
		ConstLabels: labels,
	})

	m.searchFuzzyFallback = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("search_fuzzy_fallback_total"),
		Help:        "Title searches answered by the fuzzy similarity fallback",
		ConstLabels: labels,
	})

	m.fetchLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("fetch_latency_seconds"),
		Help:        "Collaborator fetch latency in seconds by job kind",
		Buckets:     m.fetchBuckets,
		ConstLabels: labels,
	}, []string{"kind"})

	m.fetchErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("fetch_errors_total"),
		Help:        "Collaborator fetch failures by job kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.skippedRecords = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("skipped_records_total"),
		Help:        "Upstream records skipped by a collaborator parser, by source and reason",
		ConstLabels: labels,
	}, []string{"source", "reason"})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_capacity"),
		Help:        "Maximum job queue capacity",
		ConstLabels: labels,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_size"),
		Help:        "Current size of the job queue",
		ConstLabels: labels,
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_utilization_ratio"),
		Help:        "Job queue utilization ratio (current size / capacity)",
		ConstLabels: labels,
	})

	m.queueEnqueueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_enqueue_total"),
		Help:        "Total number of jobs enqueued",
		ConstLabels: labels,
	})

	m.queueDequeueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_dequeue_total"),
		Help:        "Total number of jobs dequeued",
		ConstLabels: labels,
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_enqueue_errors_total"),
		Help:        "Total number of rejected enqueue attempts",
		ConstLabels: labels,
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("worker_active_count"),
		Help:        "Number of running fetch workers",
		ConstLabels: labels,
	})

	m.workerErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("worker_errors_total"),
		Help:        "Worker errors by component and type",
		ConstLabels: labels,
	}, []string{"component", "type"})
}

// Run Metrics Functions.

// RecordRun counts a finished run with its outcome ("ok", "degraded", "failed", "cancelled").
func RecordRun(outcome string, d time.Duration) {
	if !globalManager.enabled {
		return
	}
	globalManager.runs.WithLabelValues(outcome).Inc()
	globalManager.runDuration.Observe(d.Seconds())
}

// RecordDegradedRun increments the degraded run counter.
func RecordDegradedRun() {
	globalManager.degradedRuns.Inc()
}

// RecordFailedPlayerFetch increments the failed per-player fetch counter.
func RecordFailedPlayerFetch() {
	globalManager.failedPlayers.Inc()
}

// Catalog Metrics Functions.

// UpdateCatalogSize sets the catalog song and linked song gauges.
func UpdateCatalogSize(songs, linked int) {
	globalManager.catalogSongs.Set(float64(songs))
	globalManager.catalogLinkedSongs.Set(float64(linked))
}

// RecordNewSongs adds newly seen catalog songs.
func RecordNewSongs(n int) {
	if n > 0 {
		globalManager.catalogNewSongs.Add(float64(n))
	}
}

// RecordReconcile records unmatched secondary entries and duplicate keys.
func RecordReconcile(secondaryOnly, duplicateKeys int) {
	if secondaryOnly > 0 {
		globalManager.reconcileSecondaryOnly.Add(float64(secondaryOnly))
	}
	if duplicateKeys > 0 {
		globalManager.reconcileDuplicateKeys.Add(float64(duplicateKeys))
	}
}

// Score Metrics Functions.

// RecordScoreSlotsChanged adds changed score slots for a source ("primary" or "secondary").
func RecordScoreSlotsChanged(source string, n int) {
	if n > 0 {
		globalManager.scoreSlotsChanged.WithLabelValues(source).Add(float64(n))
	}
}

// RecordAttributionDropped adds secondary tables dropped at attribution.
func RecordAttributionDropped(n int) {
	if n > 0 {
		globalManager.attributionDropped.Add(float64(n))
	}
}

// RecordSecondaryDiscarded increments the discarded secondary result counter.
func RecordSecondaryDiscarded() {
	globalManager.secondaryDiscarded.Inc()
}

// RecordSearchFuzzyFallback increments the fuzzy search fallback counter.
func RecordSearchFuzzyFallback() {
	globalManager.searchFuzzyFallback.Inc()
}

// Fetch Metrics Functions.

// RecordFetchLatency records a collaborator fetch latency for a job kind.
func RecordFetchLatency(kind string, d time.Duration) {
	globalManager.fetchLatency.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordFetchError increments the fetch error counter for a job kind.
func RecordFetchError(kind string) {
	globalManager.fetchErrors.WithLabelValues(kind).Inc()
}

// RecordSkippedRecord increments the skipped upstream record counter.
func RecordSkippedRecord(source, reason string) {
	globalManager.skippedRecords.WithLabelValues(source, reason).Inc()
}

// Queue Metrics Functions.

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker Metrics Functions.

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerError records a worker error with component and type labels.
func RecordWorkerError(component, errorType string) {
	globalManager.workerErrors.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
