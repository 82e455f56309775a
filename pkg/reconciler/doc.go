/*
Package reconciler diffs the desired command set produced by the
Command Planner against the set of children the Supervisor currently
runs, and drives Supervisor.Kill followed by Supervisor.Start.

# Set algebra

	keep  = current ∩ desired, argv equal, name != heron-tmaster
	kill  = current \ keep
	start = desired \ keep

The topology master is the one name excluded from keep: it holds an
in-memory view of stream-manager membership that must be rebuilt on
every reconciliation pass, even when its own argv hasn't changed.

# Ordering

Reconcile holds a single mutex for the duration of one pass: it reads
the Supervisor's current set, computes the diff, kills everything in
kill, then starts everything in start. Kill always completes before
start so that a like-named successor never collides with the process
it's replacing. No two passes are allowed to interleave.
*/
package reconciler
