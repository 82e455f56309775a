// Package supervisor owns the live set of supervised child processes:
// it starts them, kills them, and reaps them, enforcing the bounded
// restart policy.
package supervisor

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/heron-executor/pkg/atomicfile"
	"github.com/cuemby/heron-executor/pkg/command"
	"github.com/cuemby/heron-executor/pkg/execerr"
	"github.com/cuemby/heron-executor/pkg/log"
	"github.com/cuemby/heron-executor/pkg/metrics"
	"github.com/cuemby/heron-executor/pkg/process"
)

// ChildRecord is the per-child supervision state: its process handle,
// stable name, argv used to launch it, and attempt count. attempts
// starts at 1 on first launch and increments on each restart.
type ChildRecord struct {
	Handle   *process.Handle
	Name     string
	Argv     []string
	Attempts int
}

// Supervisor owns the SupervisionTable (pid -> ChildRecord) under a
// single mutex: the table is mutated by the reap loop
// (insert-after-restart, remove-on-terminal-failure) and by
// Kill/Start (remove-on-kill, insert-on-start), and no operation may
// interleave with another.
type Supervisor struct {
	mu    sync.Mutex
	table map[int]*ChildRecord // pid -> record
	names map[string]int       // name -> pid, for Kill/Start lookups

	logDir   string
	maxRuns  int
	interval time.Duration

	exitCh chan process.ExitResult
	// Fatal receives at most one error, once a child has used up its
	// maxRuns runs (crashes and failed spawns both count); the caller
	// (cmd/executor) is expected to exit(1) on receipt.
	Fatal chan error

	log zerolog.Logger
}

// New builds a Supervisor whose children's stdout/stderr/pid files live
// under logDir. A child may run at most maxRuns times, with interval
// between relaunches.
func New(logDir string, maxRuns int, interval time.Duration) *Supervisor {
	return &Supervisor{
		table:    map[int]*ChildRecord{},
		names:    map[string]int{},
		logDir:   logDir,
		maxRuns:  maxRuns,
		interval: interval,
		exitCh:   make(chan process.ExitResult, 16),
		Fatal:    make(chan error, 1),
		log:      log.WithComponent("supervisor"),
	}
}

// Start launches every (name, argv) pair in commands: spawns the child
// with stdout/stderr piped to files, inserts a ChildRecord{Attempts: 1}
// into the table, and atomically persists its pid to <name>.pid. A
// spawn failure does not abort the batch; the failed child is retried
// under the restart cap, and the first failure is reported to the
// caller.
func (s *Supervisor) Start(commands command.Set) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for name, argv := range commands {
		if err := s.startLocked(name, argv, 1); err != nil {
			s.log.Error().Err(err).Str("child_name", name).Msg("spawn failed, scheduling retry")
			s.scheduleRetry(name, argv, 2)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// scheduleRetry re-attempts a spawn after the restart interval, giving
// up through Fatal once attempts exceeds the cap. The retry aborts if a
// like-named child appears in the table meanwhile.
func (s *Supervisor) scheduleRetry(name string, argv []string, attempts int) {
	if attempts > s.maxRuns {
		metrics.SupervisionExhaustedTotal.WithLabelValues(name).Inc()
		select {
		case s.Fatal <- &execerr.SupervisionExhausted{Name: name}:
		default:
		}
		return
	}

	time.AfterFunc(s.interval, func() {
		s.mu.Lock()
		if _, exists := s.names[name]; exists {
			s.mu.Unlock()
			return
		}
		err := s.startLocked(name, argv, attempts)
		s.mu.Unlock()

		if err != nil {
			s.log.Error().Err(err).Str("child_name", name).Int("attempts", attempts).Msg("spawn retry failed")
			s.scheduleRetry(name, argv, attempts+1)
			return
		}
		metrics.RestartsTotal.WithLabelValues(name).Inc()
	})
}

func (s *Supervisor) startLocked(name string, argv []string, attempts int) error {
	handle, err := process.Spawn(name, argv, s.logDir)
	if err != nil {
		metrics.SpawnFailuresTotal.WithLabelValues(name).Inc()
		return &execerr.SpawnFailure{Name: name, Cause: err}
	}

	record := &ChildRecord{Handle: handle, Name: name, Argv: argv, Attempts: attempts}
	s.table[handle.Pid] = record
	s.names[name] = handle.Pid

	if err := atomicfile.WritePidFile(s.logDir, name, handle.Pid); err != nil {
		s.log.Error().Err(err).Str("child_name", name).Msg("failed to persist pid file")
	}

	metrics.SupervisionTableSize.Set(float64(len(s.table)))
	s.log.Info().Str("child_name", name).Int("pid", handle.Pid).Int("attempts", attempts).Msg("child started")

	go func() {
		s.exitCh <- handle.Wait()
	}()

	return nil
}

// Kill removes each named child's record from the table and then sends
// it a terminate signal, in that order, so the reap loop does not
// attempt to restart a deliberately killed child.
func (s *Supervisor) Kill(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range names {
		pid, ok := s.names[name]
		if !ok {
			continue
		}
		record := s.table[pid]

		delete(s.table, pid)
		delete(s.names, name)
		metrics.SupervisionTableSize.Set(float64(len(s.table)))

		if record != nil {
			if err := record.Handle.Terminate(); err != nil {
				s.log.Warn().Err(err).Str("child_name", name).Int("pid", pid).Msg("failed to signal child")
			}
		}
		s.log.Info().Str("child_name", name).Int("pid", pid).Msg("child killed")
	}
}

// ReapLoop blocks forever, processing child exits as they arrive. It
// returns only if exitCh is closed, which nothing in this package does.
func (s *Supervisor) ReapLoop() {
	for result := range s.exitCh {
		s.reap(result)
	}
}

func (s *Supervisor) reap(result process.ExitResult) {
	s.mu.Lock()
	record, ok := s.table[result.Pid]
	s.mu.Unlock()

	if !ok {
		// Deliberate kill: nothing to do.
		return
	}

	chmodCoreDump(".", result.Pid)

	childLog := s.log.With().Str("child_name", record.Name).Int("pid", result.Pid).Logger()
	childLog.Warn().Int("exit_code", result.ExitCode).Int("attempts", record.Attempts).Msg("child exited")
	s.drainOutput(childLog, record.Name)
	metrics.ChildExitsTotal.WithLabelValues(record.Name).Inc()

	// The child has run record.Attempts times; relaunching would exceed
	// the cap on total runs.
	if record.Attempts >= s.maxRuns {
		s.mu.Lock()
		delete(s.table, result.Pid)
		delete(s.names, record.Name)
		metrics.SupervisionTableSize.Set(float64(len(s.table)))
		s.mu.Unlock()

		childLog.Error().Msg("child exceeded max restart attempts")
		metrics.SupervisionExhaustedTotal.WithLabelValues(record.Name).Inc()
		select {
		case s.Fatal <- &execerr.SupervisionExhausted{Name: record.Name}:
		default:
		}
		return
	}

	time.Sleep(s.interval)

	// The dead child's entry stayed in the table during the sleep, so a
	// reconciler kill issued meanwhile removes it and cancels this
	// restart. The old pid entry is removed before the new one is
	// inserted.
	s.mu.Lock()
	if s.table[result.Pid] != record {
		s.mu.Unlock()
		childLog.Info().Msg("child killed during restart backoff, not relaunching")
		return
	}
	delete(s.table, result.Pid)
	delete(s.names, record.Name)
	metrics.SupervisionTableSize.Set(float64(len(s.table)))

	err := s.startLocked(record.Name, record.Argv, record.Attempts+1)
	s.mu.Unlock()

	if err != nil {
		// A failed spawn counts as one attempt under the same cap as
		// a crash.
		childLog.Error().Err(err).Msg("restart failed, scheduling retry")
		s.scheduleRetry(record.Name, record.Argv, record.Attempts+2)
		return
	}
	metrics.RestartsTotal.WithLabelValues(record.Name).Inc()
}

// Names returns the set of currently supervised child names. Used by
// the Reconciler to compute the current CommandSet.
func (s *Supervisor) Names() command.Set {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := command.Set{}
	for name, pid := range s.names {
		record := s.table[pid]
		if record == nil {
			continue
		}
		current[name] = record.Argv
	}
	return current
}
