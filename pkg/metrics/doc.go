/*
Package metrics exposes the executor's self-observability metrics via
prometheus/client_golang.

These cover the executor's own behavior only — supervision-table size,
restart/spawn-failure counts, reconciliation cycle counts and duration,
plan-update counts — never metrics about the topology's data path,
which the metrics manager child process (not this executor) collects
and forwards. This package is strictly for operating the executor
itself.

# Usage

	timer := metrics.NewTimer()
	kill, keep, start := reconcile(current, desired)
	timer.ObserveDuration(metrics.ReconciliationDuration)
	metrics.ReconciliationCyclesTotal.Inc()

Handler returns the promhttp handler; the executor serves it at
/metrics only when launched with --metrics-addr, and never listens
otherwise.
*/
package metrics
