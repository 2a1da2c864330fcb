// Package sched implements the cooperative superloop: continuations are
// polled in strict priority order each pass, and a continuation
// reporting Again aborts the remainder of the pass instead of letting
// lower-priority work run.
package sched

import "github.com/tinyg-go/cncmotion/internal/status"

// Continuation is one non-blocking unit of work polled once per scheduler
// pass.
type Continuation interface {
	Poll() status.Code
}

// ContinuationFunc adapts a plain function to Continuation.
type ContinuationFunc func() status.Code

func (f ContinuationFunc) Poll() status.Code { return f() }

// Scheduler runs a fixed, ordered list of continuations. The order is the
// priority list: limit handler, kill, pause, resume,
// segment generator, machine cycles, prompt, command reader.
type Scheduler struct {
	Stages []Continuation
}

// New builds a scheduler over the given stages, highest priority first.
func New(stages ...Continuation) *Scheduler {
	return &Scheduler{Stages: stages}
}

// RunOnce executes stages in order. A stage returning Again aborts the
// remainder of this pass — RunOnce returns Again
// itself so the caller's loop restarts from stage 0. A stage returning
// Quit or Eof is surfaced immediately to the caller. Complete is folded
// into Ok by callers whose nested state machines use it internally;
// RunOnce treats it the same as Ok/Noop (fall through).
func (s *Scheduler) RunOnce() status.Code {
	for _, stage := range s.Stages {
		code := stage.Poll()
		switch code {
		case status.Again:
			return status.Again
		case status.Quit, status.Eof:
			return code
		}
	}
	return status.Ok
}

// Run loops RunOnce until a terminal code (Quit or Eof) is returned,
// which it returns to the caller. The superloop never sleeps while work
// is pending; entering low-power wait on an all-Noop pass is left to the
// caller.
func (s *Scheduler) Run() status.Code {
	for {
		switch code := s.RunOnce(); code {
		case status.Quit, status.Eof:
			return code
		}
	}
}
