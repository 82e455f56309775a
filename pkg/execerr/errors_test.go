package execerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "argument error: usage: ...", (&ArgumentError{Usage: "usage: ..."}).Error())
	assert.Equal(t, "configuration error: bad ram map", (&ConfigurationError{Reason: "bad ram map"}).Error())
	assert.Equal(t, "supervision exhausted for stmgr-1", (&SupervisionExhausted{Name: "stmgr-1"}).Error())

	cause := errors.New("boom")
	assert.Equal(t, "malformed packing plan: boom", (&MalformedPlan{Cause: cause}).Error())
	assert.Equal(t, "spawn failure for stmgr-1: boom", (&SpawnFailure{Name: "stmgr-1", Cause: cause}).Error())
	assert.Equal(t, "coordination store disconnected: boom", (&StoreDisconnect{Cause: cause}).Error())
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("underlying failure")

	wrapped := fmt.Errorf("wrapping: %w", &MalformedPlan{Cause: cause})
	assert.True(t, errors.Is(wrapped, cause))

	var mp *MalformedPlan
	assert.True(t, errors.As(wrapped, &mp))
	assert.Equal(t, cause, mp.Cause)
}

func TestErrorsAsDistinguishesTypes(t *testing.T) {
	var err error = &SpawnFailure{Name: "x", Cause: errors.New("e")}

	var spawnErr *SpawnFailure
	assert.True(t, errors.As(err, &spawnErr))

	var confErr *ConfigurationError
	assert.False(t, errors.As(err, &confErr))
}
