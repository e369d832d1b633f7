// Package metrics provides Prometheus metrics for the lantern risk engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the lantern service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Ingestion Metrics
	observationsAccepted prometheus.Counter
	observationsRejected *prometheus.CounterVec

	// Baseline Store Metrics
	baselineRecords       prometheus.Gauge
	baselineEvictions     prometheus.Counter
	baselineRecomputes    prometheus.Counter
	baselineUpdateLatency prometheus.Histogram

	// Assessment Metrics
	assessmentsComputed prometheus.Counter
	assessmentsDegraded prometheus.Counter
	assessmentLatency   prometheus.Histogram
	levelTransitions    *prometheus.CounterVec
	personsTracked      prometheus.Gauge

	// Intervention Metrics
	interventionsFired      prometheus.Counter
	interventionsSuppressed *prometheus.CounterVec
	interventionFailures    prometheus.Counter

	// Persistence Metrics
	persistenceRetries  prometheus.Counter
	persistenceFailures prometheus.Counter
	appendLatency       prometheus.Histogram

	// Queue Metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueDequeues      prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	jobsCoalesced      prometheus.Counter

	// Worker Metrics
	workerActiveCount       prometheus.Gauge
	workerErrors            prometheus.Counter
	workerProcessingLatency prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
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
		namespace:        "lantern",
		subsystem:        "risk",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	// Ingestion Metrics
	m.observationsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "observations_accepted_total",
		Help:      "Total number of signal observations accepted into baselines",
	})

	m.observationsRejected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "observations_rejected_total",
			Help:      "Total number of rejected signal observations by reason",
		},
		[]string{"reason"},
	)

	// Baseline Store Metrics
	m.baselineRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "baseline_records",
		Help:      "Current number of per-person per-signal baseline records",
	})

	m.baselineEvictions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "baseline_evictions_total",
		Help:      "Total number of baseline records evicted by the inactivity sweep",
	})

	m.baselineRecomputes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "baseline_recomputes_total",
		Help:      "Total number of full-window recomputes caused by late observations",
	})

	m.baselineUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "baseline_update_latency_milliseconds",
		Help:      "Baseline update latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Assessment Metrics
	m.assessmentsComputed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "assessments_computed_total",
		Help:      "Total number of risk assessments computed",
	})

	m.assessmentsDegraded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "assessments_degraded_total",
		Help:      "Total number of assessments returned without durable persistence",
	})

	m.assessmentLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "assessment_latency_milliseconds",
		Help:      "End-to-end assessment computation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.levelTransitions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "level_transitions_total",
			Help:      "Total number of risk level transitions by from/to level",
		},
		[]string{"from", "to"},
	)

	m.personsTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persons_tracked",
		Help:      "Number of persons with at least one stored assessment",
	})

	// Intervention Metrics
	m.interventionsFired = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "interventions_fired_total",
		Help:      "Total number of intervention notifications delivered",
	})

	m.interventionsSuppressed = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "interventions_suppressed_total",
			Help:      "Total number of suppressed intervention notifications by reason",
		},
		[]string{"reason"},
	)

	m.interventionFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "intervention_failures_total",
		Help:      "Total number of intervention dispatches that exhausted retries",
	})

	// Persistence Metrics
	m.persistenceRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persistence_retries_total",
		Help:      "Total number of assessment append retries",
	})

	m.persistenceFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persistence_failures_total",
		Help:      "Total number of assessment appends that exhausted retries",
	})

	m.appendLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "append_latency_milliseconds",
		Help:      "Assessment append latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Queue Metrics
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the assessment job queue (backlog indicator)",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum queue capacity",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Queue utilization ratio (current size / capacity)",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of jobs enqueued",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of jobs dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of enqueue errors",
	})

	m.jobsCoalesced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "jobs_coalesced_total",
		Help:      "Total number of redundant assessment jobs coalesced",
	})

	// Worker Metrics
	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Number of active assessment workers",
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of worker errors",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Worker processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// Ingestion metrics.

func RecordObservationAccepted() {
	globalManager.observationsAccepted.Inc()
}

func RecordObservationRejected(reason string) {
	globalManager.observationsRejected.WithLabelValues(reason).Inc()
}

// Baseline store metrics.

func UpdateBaselineRecordCount(count int) {
	globalManager.baselineRecords.Set(float64(count))
}

func RecordBaselineEvictions(count int) {
	globalManager.baselineEvictions.Add(float64(count))
}

func RecordBaselineRecompute() {
	globalManager.baselineRecomputes.Inc()
}

func RecordBaselineUpdateLatency(latencyMs float64) {
	globalManager.baselineUpdateLatency.Observe(latencyMs)
}

// Assessment metrics.

func RecordAssessmentComputed() {
	globalManager.assessmentsComputed.Inc()
}

func RecordAssessmentDegraded() {
	globalManager.assessmentsDegraded.Inc()
}

func RecordAssessmentLatency(latencyMs float64) {
	globalManager.assessmentLatency.Observe(latencyMs)
}

func RecordLevelTransition(from, to string) {
	globalManager.levelTransitions.WithLabelValues(from, to).Inc()
}

func UpdatePersonsTracked(count int) {
	globalManager.personsTracked.Set(float64(count))
}

// Intervention metrics.

func RecordInterventionFired() {
	globalManager.interventionsFired.Inc()
}

func RecordInterventionSuppressed(reason string) {
	globalManager.interventionsSuppressed.WithLabelValues(reason).Inc()
}

func RecordInterventionFailure() {
	globalManager.interventionFailures.Inc()
}

// Persistence metrics.

func RecordPersistenceRetry() {
	globalManager.persistenceRetries.Inc()
}

func RecordPersistenceFailure() {
	globalManager.persistenceFailures.Inc()
}

func RecordAppendLatency(latencyMs float64) {
	globalManager.appendLatency.Observe(latencyMs)
}

// Queue metrics.

func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

func RecordJobCoalesced() {
	globalManager.jobsCoalesced.Inc()
}

// Worker metrics.

func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// HTTP metrics.

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
