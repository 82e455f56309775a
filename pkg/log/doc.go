/*
Package log provides structured logging for the executor using zerolog.

The log package wraps zerolog to provide JSON or console-pretty logging
with component-specific child loggers, a configurable level, and helper
functions for the common case of a one-line message with no extra
fields.

# Usage

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

	log.Info("executor starting")

	superLog := log.WithComponent("supervisor").With().
		Int("shard_id", ctx.ShardID).Logger()
	superLog.Info().Str("child_name", name).Msg("child started")

Context loggers (WithComponent, WithShard) attach a single field and
return a plain zerolog.Logger that can be further extended with
.With(). Each long-lived component (Supervisor,
Reconciler, Watcher, Lifecycle) builds its child logger once at
construction and never touches the global Logger directly.

# Log Levels

Debug is for development tracing, Info is the default production
level, Warn marks recoverable anomalies (a malformed plan update,
a dropped reconnect), and Error/Fatal mark operations that failed
outright. Fatal exits the process — only used for startup conditions
equivalent to ArgumentError/ConfigurationError where no child has
started yet.
*/
package log
