// Command executor is the per-container process supervisor for a
// topology: given the fixed 31-argument invocation contract, it plans,
// launches, and supervises the container's child processes, and
// reconciles them against packing-plan updates from the coordination
// store.
package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/cuemby/heron-executor/pkg/atomicfile"
	"github.com/cuemby/heron-executor/pkg/config"
	"github.com/cuemby/heron-executor/pkg/execerr"
	"github.com/cuemby/heron-executor/pkg/lifecycle"
	"github.com/cuemby/heron-executor/pkg/log"
	"github.com/cuemby/heron-executor/pkg/metrics"
	"github.com/cuemby/heron-executor/pkg/reconciler"
	"github.com/cuemby/heron-executor/pkg/store"
	"github.com/cuemby/heron-executor/pkg/supervisor"
	"github.com/cuemby/heron-executor/pkg/watcher"
)

var (
	logLevel    string
	logJSON     bool
	metricsAddr string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var argErr *execerr.ArgumentError
		if errors.As(err, &argErr) {
			fmt.Fprintln(os.Stderr, argErr.Usage)
		} else {
			log.Error(err.Error())
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:                   "heron-executor <31 positional arguments>",
	Short:                 "Supervises a topology container's child processes",
	Args:                  cobra.ExactArgs(config.NumPositionalArgs),
	DisableFlagsInUseLine: true,
	SilenceUsage:          true,
	SilenceErrors:         true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", true, "Output logs in JSON format")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Address to serve Prometheus metrics on (empty disables)")
	cobra.OnInitialize(initLogging)
}

func initLogging() {
	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
		Output:     os.Stdout,
	})
}

// run parses the invocation, prepares the container's filesystem and
// process group, subscribes to packing-plan updates, and blocks until
// a child exceeds its restart budget or the planner rejects a plan.
func run(args []string) error {
	log.Info("heron executor starting")

	// Construct the container context from the positional arguments.
	ctx, err := config.ParseArgs(args)
	if err != nil {
		return err
	}

	internals, err := config.LoadInternals(ctx.Binaries.HeronInternalsConfigFile)
	if err != nil {
		return err
	}
	ctx.LogDir = internals.LogDir

	// Create the log directory and set executable bits on binaries.
	if err := os.MkdirAll(ctx.LogDir, 0o755); err != nil {
		return &execerr.ConfigurationError{Reason: fmt.Sprintf("create log dir: %v", err)}
	}
	if err := config.ExtractIfTar(ctx.Package, "."); err != nil {
		return err
	}
	if err := config.MakeExecutable(
		ctx.Binaries.TMasterBinary,
		ctx.Binaries.StmgrBinary,
		ctx.Binaries.HeronShellBinary,
		ctx.Binaries.PythonInstanceBinary,
		ctx.Binaries.CppInstanceBinary,
	); err != nil {
		return &execerr.ConfigurationError{Reason: err.Error()}
	}

	life, err := lifecycle.New(ctx.LogDir)
	if err != nil {
		return &execerr.ConfigurationError{Reason: err.Error()}
	}
	life.HandleSignals()
	defer life.Cleanup()

	// Record our own pid to heron-executor-<shard>.pid.
	if err := atomicfile.WritePidFile(ctx.LogDir, fmt.Sprintf("heron-executor-%d", ctx.ShardID), os.Getpid()); err != nil {
		log.Logger.Warn().Err(err).Msg("failed to persist executor pid file")
	}

	planStore, err := store.NewBoltPlanStore(ctx.LogDir)
	if err != nil {
		return &execerr.ConfigurationError{Reason: err.Error()}
	}
	defer planStore.Close()

	sup := supervisor.New(ctx.LogDir, internals.MaxRuns, internals.IntervalBetweenRuns())
	recon := reconciler.New(sup)
	watch := watcher.New(ctx, recon)

	// Start metrics HTTP server in background when configured.
	if metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				log.Logger.Warn().Err(err).Str("addr", metricsAddr).Msg("metrics server failed")
			}
		}()
	}

	// Subscribing the watcher triggers the initial reconcile when the
	// store already holds a plan.
	if err := watch.Subscribe(planStore); err != nil {
		return &execerr.ConfigurationError{Reason: fmt.Sprintf("subscribe to coordination store: %v", err)}
	}

	shardLogger := log.WithShard(ctx.ShardID)
	shardLogger.Info().Msg("executor started")

	// The reap loop never returns under normal operation, so it runs on
	// its own goroutine; this one blocks until either a child exceeds
	// the restart cap or the planner rejects an installed plan.
	go sup.ReapLoop()

	var fatal error
	select {
	case fatal = <-sup.Fatal:
	case fatal = <-watch.Fatal:
	}

	var exhausted *execerr.SupervisionExhausted
	if errors.As(fatal, &exhausted) {
		log.Logger.Error().Str("child_name", exhausted.Name).Msg("supervision exhausted")
	}
	return fatal
}
