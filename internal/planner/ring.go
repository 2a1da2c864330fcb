package planner

import "github.com/tinyg-go/cncmotion/internal/vector"

// RingSize is the planner buffer ring capacity. One aline call queues at
// most three buffers; a handful of queued moves ahead of that keeps the
// segment generator fed without the reader stalling on every call.
const RingSize = 48

// Ring is the index-based planner buffer ring. w is
// the next slot to write, q the next to queue, r the next to run; all
// three advance monotonically mod RingSize.
type Ring struct {
	buf [RingSize]Buffer
	w   int
	q   int
	r   int
}

// NewRing builds a ring with every slot linked into a circular next/prev
// chain and marked empty.
func NewRing() *Ring {
	rg := &Ring{}
	for i := range rg.buf {
		rg.buf[i].next = (i + 1) % RingSize
		rg.buf[i].prev = (i - 1 + RingSize) % RingSize
	}
	return rg
}

// BuffersFree reports whether n consecutive write slots starting at w are
// empty.
func (rg *Ring) BuffersFree(n int) bool {
	idx := rg.w
	for i := 0; i < n; i++ {
		if rg.buf[idx].BufferState != BufferEmpty {
			return false
		}
		idx = rg.buf[idx].next
	}
	return true
}

// GetWrite zeroes and claims the next empty slot, transitioning
// empty -> loading, and advances w. Returns nil if the slot is not empty
// (callers must check BuffersFree first).
func (rg *Ring) GetWrite() *Buffer {
	b := &rg.buf[rg.w]
	if b.BufferState != BufferEmpty {
		return nil
	}
	b.reset()
	b.BufferState = BufferLoading
	rg.w = b.next
	return b
}

// QueueWrite transitions the buffer at q from loading to queued and
// advances q. moveType is stamped onto the buffer.
func (rg *Ring) QueueWrite(moveType MoveType) {
	b := &rg.buf[rg.q]
	b.MoveType = moveType
	b.BufferState = BufferQueued
	rg.q = b.next
}

// GetRun promotes the buffer at r from queued to running (idempotent:
// repeated calls return the same buffer until EndRun is called) and
// returns it, or nil if nothing is queued.
func (rg *Ring) GetRun() *Buffer {
	b := &rg.buf[rg.r]
	switch b.BufferState {
	case BufferRunning:
		return b
	case BufferQueued:
		b.BufferState = BufferRunning
		return b
	default:
		return nil
	}
}

// EndRun releases the buffer at r back to empty and advances r.
func (rg *Ring) EndRun() {
	b := &rg.buf[rg.r]
	b.BufferState = BufferEmpty
	rg.r = b.next
}

// GetPrevious returns the most-recently-queued buffer (w.prev), used by
// aline for look-behind retro-editing.
func (rg *Ring) GetPrevious() *Buffer {
	prevIdx := rg.buf[rg.w].prev
	return &rg.buf[prevIdx]
}

// Reset discards every queued/running buffer and resets cursors, used by
// the kill signal handler.
func (rg *Ring) Reset() {
	for i := range rg.buf {
		rg.buf[i].reset()
	}
	rg.w, rg.q, rg.r = 0, 0, 0
}

// State bundles the planner's master (non-ring) bookkeeping.
type State struct {
	Position      vector.Vector // authoritative end-of-queue position
	PositionInter vector.Vector // end of last segment emitted

	PreviousVelocity float64
	AngularJerk      float64
}

// IsBusy reports whether the planner still has queued or running work,
// used by homing to gate advancing to the next sub-state.
func (rg *Ring) IsBusy() bool {
	return rg.buf[rg.r].BufferState != BufferEmpty
}
