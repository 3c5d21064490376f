// Package metrics provides Prometheus metrics for the squad ledger service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the ledger service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Scoring and transfer metrics
	transfersApplied   *prometheus.CounterVec
	transfersRejected  *prometheus.CounterVec
	roleChanges        prometheus.Counter
	reversals          prometheus.Counter
	squadRecomputes    prometheus.Counter
	recomputeLatency   prometheus.Histogram

	// Cascade metrics
	cascadeRuns           prometheus.Counter
	cascadeLeagueFailures prometheus.Counter
	cascadeDuration       prometheus.Histogram

	// Snapshot metrics
	snapshotsBuilt       prometheus.Counter
	snapshotBuildErrors  prometheus.Counter

	// Repair metrics
	repairsApplied *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance on a custom registry, so default Go
// runtime collectors do not pollute the scrape.
var globalManager *Manager                           //nolint:gochecknoglobals // singleton metrics manager
var customRegistry = prometheus.NewRegistry()        //nolint:gochecknoglobals // singleton metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "squadledger",
		subsystem:        "ledger",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.transfersApplied = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "transfers_applied_total",
		Help:      "Total number of substitutions applied, by transfer category",
	}, []string{"category"})

	m.transfersRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "transfers_rejected_total",
		Help:      "Total number of transfer requests rejected, by reason",
	}, []string{"reason"})

	m.roleChanges = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "role_changes_total",
		Help:      "Total number of role reassignments applied",
	})

	m.reversals = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reversals_total",
		Help:      "Total number of administrative transfer reversals applied",
	})

	m.squadRecomputes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "squad_recomputes_total",
		Help:      "Total number of squad scoring recomputations",
	})

	m.recomputeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_latency_milliseconds",
		Help:      "Histogram of squad scoring recomputation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.cascadeRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cascade_runs_total",
		Help:      "Total number of pool recalculation cascades triggered",
	})

	m.cascadeLeagueFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cascade_league_failures_total",
		Help:      "Total number of leagues that failed during a cascade",
	})

	m.cascadeDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cascade_duration_milliseconds",
		Help:      "Histogram of pool cascade duration in milliseconds",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})

	m.snapshotsBuilt = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshots_built_total",
		Help:      "Total number of leaderboard snapshots built",
	})

	m.snapshotBuildErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_build_errors_total",
		Help:      "Total number of snapshot builds that failed after a league batch committed",
	})

	m.repairsApplied = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repairs_applied_total",
		Help:      "Total number of administrative repair operations applied, by kind",
	}, []string{"kind"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// Handler returns an HTTP handler serving the custom registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}

// Package-level helpers recording on the global manager.

// RecordTransferApplied counts an applied substitution.
func RecordTransferApplied(category string) {
	globalManager.transfersApplied.WithLabelValues(category).Inc()
}

// RecordTransferRejected counts a rejected transfer request.
func RecordTransferRejected(reason string) {
	globalManager.transfersRejected.WithLabelValues(reason).Inc()
}

// RecordRoleChange counts an applied role reassignment.
func RecordRoleChange() {
	globalManager.roleChanges.Inc()
}

// RecordReversal counts an applied administrative reversal.
func RecordReversal() {
	globalManager.reversals.Inc()
}

// RecordSquadRecompute counts one scoring engine invocation.
func RecordSquadRecompute() {
	globalManager.squadRecomputes.Inc()
}

// RecordRecomputeLatency observes a scoring recomputation duration.
func RecordRecomputeLatency(latencyMs float64) {
	globalManager.recomputeLatency.Observe(latencyMs)
}

// RecordCascadeRun counts a triggered pool cascade.
func RecordCascadeRun() {
	globalManager.cascadeRuns.Inc()
}

// RecordCascadeLeagueFailure counts a league that failed during a cascade.
func RecordCascadeLeagueFailure() {
	globalManager.cascadeLeagueFailures.Inc()
}

// RecordCascadeDuration observes a whole-cascade duration.
func RecordCascadeDuration(durationMs float64) {
	globalManager.cascadeDuration.Observe(durationMs)
}

// RecordSnapshotBuilt counts a built leaderboard snapshot.
func RecordSnapshotBuilt() {
	globalManager.snapshotsBuilt.Inc()
}

// RecordSnapshotBuildError counts a snapshot build failure.
func RecordSnapshotBuildError() {
	globalManager.snapshotBuildErrors.Inc()
}

// RecordRepairApplied counts an applied repair operation.
func RecordRepairApplied(kind string) {
	globalManager.repairsApplied.WithLabelValues(kind).Inc()
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}
