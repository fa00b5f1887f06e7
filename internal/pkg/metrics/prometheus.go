// Package metrics exposes Prometheus instruments for productivity scoring.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "productivity"
	subsystem = "scoring"
)

// Batch durations range from sub-second test days to multi-minute backfills.
var batchDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300}

// Manager owns the registered instruments.
type Manager struct {
	registry *prometheus.Registry

	scoresComputed      *prometheus.CounterVec
	scoreFailures       *prometheus.CounterVec
	idlePeriodsFlagged  prometheus.Counter
	excessIdleMinutes   prometheus.Counter
	roleFallbacks       prometheus.Counter
	roleProfilesLoaded  prometheus.Gauge
	roleRefreshFailures prometheus.Counter
	batchRuns           *prometheus.CounterVec
	batchDuration       prometheus.Histogram
	batchEmployees      prometheus.Gauge
}

var globalManager = NewManager(prometheus.NewRegistry()) //nolint:gochecknoglobals // process-wide metrics

// NewManager registers every instrument on registry.
func NewManager(registry *prometheus.Registry) *Manager {
	auto := promauto.With(registry)
	m := &Manager{registry: registry}

	m.scoresComputed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "daily_scores_computed_total",
		Help:      "Daily scores computed, by calculation path (single or batch)",
	}, []string{"path"})

	m.scoreFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "daily_score_failures_total",
		Help:      "Employee-day calculations that failed, by calculation path",
	}, []string{"path"})

	m.idlePeriodsFlagged = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "idle_periods_flagged_total",
		Help:      "Idle periods with excess idle written to the audit trail",
	})

	m.excessIdleMinutes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "excess_idle_minutes_total",
		Help:      "Sum of excess idle minutes across computed scores",
	})

	m.roleFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "roles",
		Name:      "fallback_lookups_total",
		Help:      "Role lookups that resolved to the default profile",
	})

	m.roleProfilesLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "roles",
		Name:      "profiles_loaded",
		Help:      "Number of role profiles in the current snapshot",
	})

	m.roleRefreshFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "roles",
		Name:      "refresh_failures_total",
		Help:      "Role snapshot refreshes that failed and kept the previous snapshot",
	})

	m.batchRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "batch",
		Name:      "runs_total",
		Help:      "Batch recalculation runs, by outcome",
	}, []string{"outcome"})

	m.batchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "batch",
		Name:      "duration_seconds",
		Help:      "Wall time of batch recalculation runs",
		Buckets:   batchDurationBuckets,
	})

	m.batchEmployees = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "batch",
		Name:      "last_run_employees",
		Help:      "Employees considered by the most recent batch run",
	})

	return m
}

// Handler serves the exposition format for the global registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(globalManager.registry, promhttp.HandlerOpts{})
}

func RecordScoreComputed(path string, excessIdleMinutes float64, idlePeriods int) {
	globalManager.scoresComputed.WithLabelValues(path).Inc()
	if excessIdleMinutes > 0 {
		globalManager.excessIdleMinutes.Add(excessIdleMinutes)
	}
	globalManager.idlePeriodsFlagged.Add(float64(idlePeriods))
}

func RecordScoreFailure(path string) {
	globalManager.scoreFailures.WithLabelValues(path).Inc()
}

func IncrementRoleFallback() {
	globalManager.roleFallbacks.Inc()
}

func UpdateRoleProfilesLoaded(n int) {
	globalManager.roleProfilesLoaded.Set(float64(n))
}

func IncrementRoleRefreshFailure() {
	globalManager.roleRefreshFailures.Inc()
}

func RecordBatchRun(outcome string, durationSeconds float64, employees int) {
	globalManager.batchRuns.WithLabelValues(outcome).Inc()
	globalManager.batchDuration.Observe(durationSeconds)
	globalManager.batchEmployees.Set(float64(employees))
}
