// Package reconciler diffs the desired CommandSet against the
// Supervisor's current set and drives kill/start operations.
package reconciler

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/cuemby/heron-executor/pkg/command"
	"github.com/cuemby/heron-executor/pkg/log"
	"github.com/cuemby/heron-executor/pkg/metrics"
)

const tmasterName = "heron-tmaster"

// Supervisor is the subset of *supervisor.Supervisor the Reconciler
// drives. Declared here so reconciler_test.go can substitute a fake
// without importing the supervisor package.
type Supervisor interface {
	Names() command.Set
	Kill(names []string)
	Start(commands command.Set) error
}

// Reconciler serializes Reconcile calls behind a mutex: no two
// reconciliation passes may interleave, since each pass reads the
// Supervisor's current set, decides kill/start, and applies them as
// one atomic-looking operation.
type Reconciler struct {
	supervisor Supervisor
	mu         sync.Mutex
	logger     zerolog.Logger
}

// New builds a Reconciler that drives sup.
func New(sup Supervisor) *Reconciler {
	return &Reconciler{
		supervisor: sup,
		logger:     log.WithComponent("reconciler"),
	}
}

// Diff computes the kill/keep/start sets:
//
//	keep  = name ∈ current ∩ desired, argv equal, name != heron-tmaster
//	kill  = name ∈ current, not in keep
//	start = name ∈ desired, not in keep
//
// The topology master is never kept: any reconciliation rebuilds its
// in-memory view of stream-manager membership, so it is always
// restarted even when its own argv is textually unchanged.
func Diff(current, desired command.Set) (kill, keep, start []string) {
	for name, argv := range current {
		desiredArgv, inDesired := desired[name]
		if inDesired && argvEqual(argv, desiredArgv) && name != tmasterName {
			keep = append(keep, name)
			continue
		}
		kill = append(kill, name)
	}

	for name := range desired {
		isKept := false
		for _, k := range keep {
			if k == name {
				isKept = true
				break
			}
		}
		if !isKept {
			start = append(start, name)
		}
	}

	return kill, keep, start
}

func argvEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Reconcile diffs desired against the Supervisor's current set and
// applies kill before start, under the single lock, so no kill/start
// batch may interleave with another reconciliation pass.
func (r *Reconciler) Reconcile(desired command.Set) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	timer := metrics.NewTimer()
	defer func() {
		timer.ObserveDuration(metrics.ReconciliationDuration)
		metrics.ReconciliationCyclesTotal.Inc()
	}()

	current := r.supervisor.Names()
	kill, keep, start := Diff(current, desired)

	r.logger.Info().
		Int("kill", len(kill)).
		Int("keep", len(keep)).
		Int("start", len(start)).
		Msg("reconciliation pass")

	if len(kill) > 0 {
		r.supervisor.Kill(kill)
		metrics.ReconciledKillTotal.Add(float64(len(kill)))
	}

	if len(start) > 0 {
		toStart := command.Set{}
		for _, name := range start {
			toStart[name] = desired[name]
		}
		if err := r.supervisor.Start(toStart); err != nil {
			return err
		}
		metrics.ReconciledStartTotal.Add(float64(len(start)))
	}

	return nil
}
