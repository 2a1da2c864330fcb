package sched

import (
	"sync/atomic"

	"github.com/tinyg-go/cncmotion/internal/status"
)

// Signals holds the single-bit flags written by ISRs (or, in this
// simulated environment, by the line-trapping layer beneath the reader)
// and polled by the scheduler. sync/atomic.Bool gives the
// same single-writer/many-reader guarantee without a mutex.
type Signals struct {
	Kill   atomic.Bool
	Pause  atomic.Bool
	Resume atomic.Bool
	Limit  atomic.Bool
}

// SignalContinuation wraps one flag and its handler into a Continuation:
// Noop if the flag isn't set, otherwise clear it and run Action.
type SignalContinuation struct {
	Flag   *atomic.Bool
	Action func() status.Code
}

func (s *SignalContinuation) Poll() status.Code {
	if !s.Flag.CompareAndSwap(true, false) {
		return status.Noop
	}
	return s.Action()
}
