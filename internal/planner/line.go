package planner

import (
	"github.com/tinyg-go/cncmotion/internal/config"
	"github.com/tinyg-go/cncmotion/internal/status"
	"github.com/tinyg-go/cncmotion/internal/vector"
)

// Line queues a single constant-velocity line sub-move with no jerk
// shaping, the planner entry point the canonical machine uses when
// acceleration management is disabled (accel_enabled == false). One
// buffer, one region, velocity implied by the caller's time budget.
func Line(ps *State, ring *Ring, cfg *config.MachineConfig, target vector.Vector, minutes float64) (status.Code, error) {
	delta := target.Sub(ps.Position)
	length := delta.LinearLength()
	if length < cfg.MinSegmentLenMM {
		return status.ZeroLength, nil
	}
	if minutes <= 0 {
		return status.ErrFloatingPoint, errMoveNonPositiveTime
	}

	b := ring.GetWrite()
	if b == nil {
		return status.BufferFullFatal, nil
	}
	b.UnitVector = delta.Unit(length)
	b.Target = target
	b.Length = length
	b.Time = minutes
	b.Microseconds = minutes * 60e6
	v := length / minutes
	b.InitialVelocity = v
	b.TargetVelocity = v
	ring.QueueWrite(MoveLine)

	ps.Position = target
	ps.PreviousVelocity = v
	return status.Ok, nil
}
