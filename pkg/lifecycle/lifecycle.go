// Package lifecycle owns process-group leadership, stdout/stderr
// redirection, and signal-driven shutdown. Constructing a Lifecycle
// does not install the signal handler; HandleSignals does, as a
// separate call. Calling Cleanup, guaranteed on every
// exit path normal or signalled, broadcasts termination to the whole
// process group.
package lifecycle

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/cuemby/heron-executor/pkg/log"
)

// Lifecycle is a scoped-acquisition object: New() acquires process
// group leadership, HandleSignals() installs the signal handler, and
// Cleanup() releases
// by broadcasting SIGTERM to the group. Callers must defer Cleanup()
// immediately after a successful New() and additionally ensure it runs
// from the signal handler, since a signal bypasses a deferred call in
// the normal control-flow sense.
type Lifecycle struct {
	pid int

	sigCh       chan os.Signal
	cleanupOnce sync.Once

	stdout *os.File
	stderr *os.File

	logger zerolog.Logger
}

// New redirects stdout/stderr to append-mode files under logDir and
// makes this process the leader of a new process group, so that every
// transitively spawned child (which inherits the group by default)
// receives the group-wide signal Cleanup sends.
func New(logDir string) (*Lifecycle, error) {
	stdout, err := redirectAppend(logDir, "heron-executor.stdout", syscall.Stdout)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: redirect stdout: %w", err)
	}
	stderr, err := redirectAppend(logDir, "heron-executor.stderr", syscall.Stderr)
	if err != nil {
		stdout.Close()
		return nil, fmt.Errorf("lifecycle: redirect stderr: %w", err)
	}

	if err := syscall.Setpgid(0, 0); err != nil {
		return nil, fmt.Errorf("lifecycle: become process group leader: %w", err)
	}

	l := &Lifecycle{
		pid:    os.Getpid(),
		sigCh:  make(chan os.Signal, 1),
		stdout: stdout,
		stderr: stderr,
		logger: log.WithComponent("lifecycle"),
	}

	return l, nil
}

func redirectAppend(logDir, name string, fd int) (*os.File, error) {
	f, err := os.OpenFile(logDir+"/"+name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	if err := unix.Dup3(int(f.Fd()), fd, 0); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// HandleSignals installs a handler for SIGTERM/SIGINT and runs it in a
// background goroutine: on receipt it calls Cleanup and exits with the
// signal number. It returns immediately; it does not block.
func (l *Lifecycle) HandleSignals() {
	signal.Notify(l.sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-l.sigCh
		l.logger.Info().Str("signal", sig.String()).Msg("received termination signal")
		l.Cleanup()

		if signum, ok := sig.(syscall.Signal); ok {
			os.Exit(int(signum))
		}
		os.Exit(1)
	}()
}

// Cleanup broadcasts a terminate signal to the whole process group
// (kill to -pid, the group this process leads, reaching this process
// and every descendant unless one has detached). It is idempotent and safe to call from both a deferred
// normal-exit path and the signal handler.
func (l *Lifecycle) Cleanup() {
	l.cleanupOnce.Do(func() {
		// The broadcast reaches this process too; ignore it so the
		// exit code stays whichever path triggered the cleanup.
		signal.Ignore(syscall.SIGTERM)

		l.logger.Info().Msg("broadcasting termination to process group")
		if err := syscall.Kill(-l.pid, syscall.SIGTERM); err != nil {
			l.logger.Warn().Err(err).Msg("failed to signal process group")
		}
		l.stdout.Close()
		l.stderr.Close()
	})
}
