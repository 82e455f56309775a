// Package watcher subscribes to the coordination store and, on each
// delivered update, invokes the Command Planner and Reconciler.
package watcher

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/cuemby/heron-executor/pkg/command"
	"github.com/cuemby/heron-executor/pkg/config"
	"github.com/cuemby/heron-executor/pkg/execerr"
	"github.com/cuemby/heron-executor/pkg/log"
	"github.com/cuemby/heron-executor/pkg/metrics"
	"github.com/cuemby/heron-executor/pkg/plan"
	"github.com/cuemby/heron-executor/pkg/store"
)

// Reconciler is the subset of *reconciler.Reconciler the Watcher
// drives, declared here so tests can substitute a fake.
type Reconciler interface {
	Reconcile(desired command.Set) error
}

// Watcher subscribes to a PlanStore and reconciles on every delivered
// packing-plan update. Delivery is edge-triggered upstream, but the
// Watcher re-checks equality itself so it stays idempotent under
// redelivery of a value the store already considered a change.
type Watcher struct {
	ctx        *config.ContainerContext
	reconciler Reconciler

	mu        sync.Mutex
	installed plan.PackingPlan

	// Fatal receives at most one error when the Command Planner rejects
	// an installed plan. Planner failures imply a broken contract with
	// the controller and terminate the executor, unlike malformed wire
	// payloads, which are dropped.
	Fatal chan error

	logger zerolog.Logger
}

// New builds a Watcher for ctx, driving reconciler on every plan change.
func New(ctx *config.ContainerContext, reconciler Reconciler) *Watcher {
	return &Watcher{
		ctx:        ctx,
		reconciler: reconciler,
		installed:  plan.PackingPlan{},
		Fatal:      make(chan error, 1),
		logger:     log.WithComponent("watcher"),
	}
}

// Subscribe registers the Watcher against st for the context's
// topology. The store invokes onUpdate once synchronously before
// Subscribe returns, so when the store already holds a plan the initial
// reconcile happens before this call returns; an empty initial value
// reconciles nothing.
func (w *Watcher) Subscribe(st store.PlanStore) error {
	return st.Subscribe(w.ctx.Topology.Name, w.onUpdate)
}

func (w *Watcher) onUpdate(wireDistribution string) {
	metrics.PlanUpdatesTotal.Inc()

	parsed, err := plan.ParseInstanceDistribution(wireDistribution)
	if err != nil {
		malformed := &execerr.MalformedPlan{Cause: err}
		w.logger.Warn().Err(malformed).Msg("dropping malformed packing plan update")
		metrics.PlanMalformedTotal.Inc()
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if parsed.Equal(w.installed) {
		metrics.PlanNoopTotal.Inc()
		return
	}

	w.installed = parsed

	desired, err := command.Plan(w.ctx, parsed)
	if err != nil {
		w.logger.Error().Err(err).Msg("command planner rejected packing plan")
		select {
		case w.Fatal <- err:
		default:
		}
		return
	}

	if err := w.reconciler.Reconcile(desired); err != nil {
		w.logger.Error().Err(err).Msg("reconciliation failed")
	}
}
