// Package execerr defines the typed error taxonomy the executor uses to
// decide whether a failure is fatal, logged-and-continue, or retried
// under the restart cap.
package execerr

import "fmt"

// ArgumentError means the process was invoked with the wrong argv shape.
// It is always fatal: print usage, exit 1.
type ArgumentError struct {
	Usage string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument error: %s", e.Usage)
}

// ConfigurationError means the container context could not be built, or
// a derived configuration (component RAM budget, internals file) is
// invalid. Fatal before any child is started.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// MalformedPlan means a packing-plan update failed to parse. Never
// fatal: the watcher logs it and keeps the previously installed plan.
type MalformedPlan struct {
	Cause error
}

func (e *MalformedPlan) Error() string {
	return fmt.Sprintf("malformed packing plan: %v", e.Cause)
}

func (e *MalformedPlan) Unwrap() error {
	return e.Cause
}

// SpawnFailure means a child process failed to start. It counts as one
// supervision attempt and is retried under the same restart cap.
type SpawnFailure struct {
	Name  string
	Cause error
}

func (e *SpawnFailure) Error() string {
	return fmt.Sprintf("spawn failure for %s: %v", e.Name, e.Cause)
}

func (e *SpawnFailure) Unwrap() error {
	return e.Cause
}

// SupervisionExhausted means a child used up its max_runs runs. Fatal:
// the executor exits 1, signalling the host scheduler to re-place this
// container.
type SupervisionExhausted struct {
	Name string
}

func (e *SupervisionExhausted) Error() string {
	return fmt.Sprintf("supervision exhausted for %s", e.Name)
}

// StoreDisconnect means the coordination-store watch callback raised.
// Never fatal: logged, and the external client is expected to
// re-deliver on reconnect.
type StoreDisconnect struct {
	Cause error
}

func (e *StoreDisconnect) Error() string {
	return fmt.Sprintf("coordination store disconnected: %v", e.Cause)
}

func (e *StoreDisconnect) Unwrap() error {
	return e.Cause
}
