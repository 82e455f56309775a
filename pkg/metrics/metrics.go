package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Supervisor metrics
	SupervisionTableSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "executor_supervision_table_size",
			Help: "Current number of live children in the supervision table",
		},
	)

	ChildExitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "executor_child_exits_total",
			Help: "Total number of child process exits observed by the reap loop, by child name",
		},
		[]string{"name"},
	)

	RestartsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "executor_child_restarts_total",
			Help: "Total number of child process restarts, by child name",
		},
		[]string{"name"},
	)

	SpawnFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "executor_spawn_failures_total",
			Help: "Total number of failed child process spawn attempts, by child name",
		},
		[]string{"name"},
	)

	SupervisionExhaustedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "executor_supervision_exhausted_total",
			Help: "Total number of children that exceeded the restart cap, by child name",
		},
		[]string{"name"},
	)

	// Reconciler metrics
	ReconciliationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "executor_reconciliation_duration_seconds",
			Help:    "Time taken for a reconciliation pass in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReconciliationCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "executor_reconciliation_cycles_total",
			Help: "Total number of reconciliation passes completed",
		},
	)

	ReconciledKillTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "executor_reconciled_kill_total",
			Help: "Total number of children killed across all reconciliation passes",
		},
	)

	ReconciledStartTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "executor_reconciled_start_total",
			Help: "Total number of children started across all reconciliation passes",
		},
	)

	// Plan Watcher metrics
	PlanUpdatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "executor_plan_updates_total",
			Help: "Total number of packing plan updates delivered by the coordination store",
		},
	)

	PlanMalformedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "executor_plan_malformed_total",
			Help: "Total number of packing plan updates dropped for failing to parse",
		},
	)

	PlanNoopTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "executor_plan_noop_total",
			Help: "Total number of packing plan updates that were no-ops against the installed plan",
		},
	)
)

func init() {
	prometheus.MustRegister(SupervisionTableSize)
	prometheus.MustRegister(ChildExitsTotal)
	prometheus.MustRegister(RestartsTotal)
	prometheus.MustRegister(SpawnFailuresTotal)
	prometheus.MustRegister(SupervisionExhaustedTotal)
	prometheus.MustRegister(ReconciliationDuration)
	prometheus.MustRegister(ReconciliationCyclesTotal)
	prometheus.MustRegister(ReconciledKillTotal)
	prometheus.MustRegister(ReconciledStartTotal)
	prometheus.MustRegister(PlanUpdatesTotal)
	prometheus.MustRegister(PlanMalformedTotal)
	prometheus.MustRegister(PlanNoopTotal)
}

// Handler returns the Prometheus HTTP handler serving the executor's
// self-observability metrics. cmd/executor mounts it at /metrics when
// --metrics-addr is set; it never reports topology data-path metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
