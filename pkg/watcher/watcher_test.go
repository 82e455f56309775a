package watcher

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/heron-executor/pkg/command"
	"github.com/cuemby/heron-executor/pkg/config"
)

type fakeReconciler struct {
	mu    sync.Mutex
	calls int
	last  command.Set
	err   error
}

func (f *fakeReconciler) Reconcile(desired command.Set) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = desired
	return f.err
}

func (f *fakeReconciler) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testContext() *config.ContainerContext {
	return &config.ContainerContext{
		ShardID: 1,
		Topology: config.TopologyIdentity{
			Name: "my-topology",
		},
		ComponentRAM: map[string]int64{
			"S": 300 * 1024 * 1024,
		},
	}
}

func TestWatcherReconcilesOnFirstUpdate(t *testing.T) {
	fake := &fakeReconciler{}
	w := New(testContext(), fake)

	w.onUpdate("1:S:10:0")

	assert.Equal(t, 1, fake.callCount())
	assert.Contains(t, fake.last, "container_1_S_10")
}

func TestWatcherIgnoresRedeliveredSamePlan(t *testing.T) {
	fake := &fakeReconciler{}
	w := New(testContext(), fake)

	w.onUpdate("1:S:10:0")
	w.onUpdate("1:S:10:0")

	assert.Equal(t, 1, fake.callCount(), "identical redelivery must not trigger a second reconcile")
}

func TestWatcherReconcilesOnPlanChange(t *testing.T) {
	fake := &fakeReconciler{}
	w := New(testContext(), fake)

	w.onUpdate("1:S:10:0")
	w.onUpdate("1:S:10:0:S:11:1")

	assert.Equal(t, 2, fake.callCount())
	assert.Contains(t, fake.last, "container_1_S_11")
}

func TestWatcherDropsMalformedUpdateWithoutCrashing(t *testing.T) {
	fake := &fakeReconciler{}
	w := New(testContext(), fake)

	assert.NotPanics(t, func() {
		w.onUpdate("this is not a valid distribution")
	})
	assert.Equal(t, 0, fake.callCount())
}

func TestWatcherContinuesAfterMalformedUpdate(t *testing.T) {
	fake := &fakeReconciler{}
	w := New(testContext(), fake)

	w.onUpdate("not valid at all::::")
	w.onUpdate("1:S:10:0")

	assert.Equal(t, 1, fake.callCount())
}

func TestWatcherEmptyInitialDistributionMeansNoPlanYet(t *testing.T) {
	fake := &fakeReconciler{}
	w := New(testContext(), fake)

	w.onUpdate("")
	require.Equal(t, 0, fake.callCount(), "nothing launches until the store holds a plan")

	w.onUpdate("1:S:10:0")
	assert.Equal(t, 1, fake.callCount())
}

func TestWatcherPlannerRejectionIsFatal(t *testing.T) {
	fake := &fakeReconciler{}
	ctx := testContext()
	ctx.ComponentRAM = map[string]int64{} // no entry for S
	w := New(ctx, fake)

	w.onUpdate("1:S:10:0")

	assert.Equal(t, 0, fake.callCount())
	select {
	case err := <-w.Fatal:
		require.Error(t, err)
	default:
		t.Fatal("expected a fatal planner error")
	}
}
