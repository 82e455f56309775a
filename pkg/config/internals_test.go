package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInternals(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "heron_internals.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadInternalsDefaults(t *testing.T) {
	path := writeInternals(t, "heron.logging.directory: /var/log/heron\n")

	in, err := LoadInternals(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/log/heron", in.LogDir)
	assert.Equal(t, DefaultMaxRuns, in.MaxRuns)
	assert.Equal(t, time.Duration(DefaultIntervalBetweenRunsSecs)*time.Second, in.IntervalBetweenRuns())
}

func TestLoadInternalsOverrides(t *testing.T) {
	path := writeInternals(t, `
heron.logging.directory: /var/log/heron
heron.executor.max.runs: 5
heron.executor.interval.between.runs.secs: 30
`)

	in, err := LoadInternals(path)
	require.NoError(t, err)

	assert.Equal(t, 5, in.MaxRuns)
	assert.Equal(t, 30*time.Second, in.IntervalBetweenRuns())
}

func TestLoadInternalsMissingLogDir(t *testing.T) {
	path := writeInternals(t, "heron.executor.max.runs: 5\n")

	_, err := LoadInternals(path)
	require.Error(t, err)
}

func TestLoadInternalsMissingFile(t *testing.T) {
	_, err := LoadInternals(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}

func TestLoadInternalsNegativeOverridesFallBackToDefault(t *testing.T) {
	path := writeInternals(t, `
heron.logging.directory: /var/log/heron
heron.executor.max.runs: -1
`)

	in, err := LoadInternals(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxRuns, in.MaxRuns)
}
