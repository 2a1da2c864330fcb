package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tinyg-go/cncmotion/internal/status"
)

func TestSignalContinuationNoopWhenFlagClear(t *testing.T) {
	s := &Signals{}
	sc := &SignalContinuation{Flag: &s.Kill, Action: func() status.Code { return status.Ok }}
	assert.Equal(t, status.Noop, sc.Poll())
}

func TestSignalContinuationClearsFlagAndRunsAction(t *testing.T) {
	s := &Signals{}
	s.Kill.Store(true)
	ran := false
	sc := &SignalContinuation{Flag: &s.Kill, Action: func() status.Code { ran = true; return status.Ok }}

	code := sc.Poll()
	assert.Equal(t, status.Ok, code)
	assert.True(t, ran)
	assert.False(t, s.Kill.Load())
}

func TestSignalContinuationDoesNotRetrigger(t *testing.T) {
	s := &Signals{}
	s.Pause.Store(true)
	calls := 0
	sc := &SignalContinuation{Flag: &s.Pause, Action: func() status.Code { calls++; return status.Ok }}

	sc.Poll()
	sc.Poll()
	assert.Equal(t, 1, calls)
}
