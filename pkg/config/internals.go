package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Internals is the subset of heron_internals.yaml the executor itself
// consumes. Everything else in that file is read by collaborators the
// executor never parses.
type Internals struct {
	LogDir                  string `yaml:"heron.logging.directory"`
	MaxRuns                 int    `yaml:"heron.executor.max.runs"`
	IntervalBetweenRunsSecs int    `yaml:"heron.executor.interval.between.runs.secs"`
}

// DefaultMaxRuns and DefaultIntervalBetweenRunsSecs are the restart
// policy when the internals file doesn't override them.
const (
	DefaultMaxRuns                 = 100
	DefaultIntervalBetweenRunsSecs = 10
)

// IntervalBetweenRuns is the sleep between restart attempts of a
// failed child.
func (in *Internals) IntervalBetweenRuns() time.Duration {
	return time.Duration(in.IntervalBetweenRunsSecs) * time.Second
}

// LoadInternals reads and validates the internals config file,
// defaulting the restart policy when absent.
func LoadInternals(path string) (*Internals, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configurationError(fmt.Sprintf("read internals config %s: %v", path, err))
	}

	in := &Internals{
		MaxRuns:                 DefaultMaxRuns,
		IntervalBetweenRunsSecs: DefaultIntervalBetweenRunsSecs,
	}
	if err := yaml.Unmarshal(data, in); err != nil {
		return nil, configurationError(fmt.Sprintf("parse internals config %s: %v", path, err))
	}

	if in.LogDir == "" {
		return nil, configurationError("internals config missing heron.logging.directory")
	}
	if in.MaxRuns <= 0 {
		in.MaxRuns = DefaultMaxRuns
	}
	if in.IntervalBetweenRunsSecs <= 0 {
		in.IntervalBetweenRunsSecs = DefaultIntervalBetweenRunsSecs
	}

	return in, nil
}
