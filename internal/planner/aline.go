package planner

import (
	"math"

	"github.com/tinyg-go/cncmotion/internal/config"
	"github.com/tinyg-go/cncmotion/internal/status"
	"github.com/tinyg-go/cncmotion/internal/vector"
)

// pathMode is the resolved path-control mode for one aline call, a
// superset of config.PathControlMode that also distinguishes the
// arc-continuation case.
type pathMode int

const (
	pathExactStop pathMode = iota
	pathExactPath
	pathContinuous
	pathContinuousFromArc
)

// jerkLength returns the length of a jerk-limited region that changes
// velocity by deltaV:
// L = deltaV * sqrt(deltaV / max_linear_jerk).
func jerkLength(deltaV, maxJerk float64) float64 {
	deltaV = math.Abs(deltaV)
	if maxJerk <= 0 || deltaV <= 0 {
		return 0
	}
	return deltaV * math.Sqrt(deltaV/maxJerk)
}

// Aline is the jerk-limited trajectory planner entry point.
// Precondition: the caller has already verified three free write slots via
// Ring.BuffersFree(3). Aline appends one to three planner buffers for the
// move, plus one more when recomputePreviousTail splits a new tail off the
// previous move, and advances ps.Position to target.
func Aline(ps *State, ring *Ring, cfg *config.MachineConfig, target vector.Vector, minutes float64) (status.Code, error) {
	delta := target.Sub(ps.Position)
	length := delta.LinearLength()
	if length < cfg.MinSegmentLenMM {
		return status.ZeroLength, nil
	}
	if minutes <= 0 {
		return status.ErrFloatingPoint, errMoveNonPositiveTime
	}

	unit := delta.Unit(length)
	prev := ring.GetPrevious()

	var mode pathMode
	var Vp float64
	switch {
	case prev.MoveType == MoveArc:
		mode = pathContinuousFromArc
		Vp = prev.TargetVelocity
	default:
		Vp = prev.InitialVelocity
		switch cfg.GCodePathControl {
		case config.PathExactStop:
			mode = pathExactStop
		case config.PathExactPath:
			mode = pathExactPath
		default:
			mode = pathContinuous
		}
	}

	aj := 0.0
	if prev.BufferState != BufferEmpty {
		aj = vector.AngularJerk(prev.UnitVector, unit)
	}
	ps.AngularJerk = aj

	// Downgrade path mode by direction change. Arc continuation bypasses
	// the downgrade ladder; it is already known to be continuous.
	if mode != pathContinuousFromArc {
		if prev.BufferState == BufferEmpty || prev.BufferState == BufferRunning {
			mode = pathExactStop
		} else if mode == pathContinuous && aj > cfg.AngularJerkLower {
			mode = pathExactPath
		}
		if mode == pathExactPath && aj > cfg.AngularJerkUpper {
			mode = pathExactStop
		}
	}

	Vt := length / minutes // target velocity implied by the caller's time budget

	var Vi float64
	switch mode {
	case pathExactStop:
		Vi = 0
	case pathContinuousFromArc:
		Vi = Vp
	default:
		if Vt > Vp {
			Vi = Vp // accelerating join
		} else {
			Vi = Vt // decelerating or cruising join
		}
		if mode == pathExactPath {
			// aj is the fractional direction change, not its
			// complement, so a sharper corner scales Vi *up*.
			// Integrators depend on this; see DESIGN.md.
			Vi *= aj
		}
	}

	head := jerkLength(Vt-Vi, cfg.MaxLinearJerk)
	tail := jerkLength(Vt, cfg.MaxLinearJerk)

	regions := 3
	if length <= head+tail {
		converged := false
		iterCap := cfg.ShortLineIterCap
		if iterCap <= 0 {
			iterCap = 40
		}
		eps := cfg.ShortLineEpsilonMM
		if eps <= 0 {
			eps = 0.002
		}
		for i := 0; i < iterCap; i++ {
			h := jerkLength(Vt-Vi, cfg.MaxLinearJerk)
			tl := jerkLength(Vt, cfg.MaxLinearJerk)
			diff := length - (h + tl)
			if math.Abs(diff) < eps {
				converged = true
				break
			}
			if h+tl <= 0 {
				break
			}
			Vt *= length / (h + tl)
			if Vt < 0 {
				Vt = 0
			}
		}
		if !converged {
			return status.ErrConvergenceFailure, errShortLineNoConverge
		}
		head = jerkLength(Vt-Vi, cfg.MaxLinearJerk)
		tail = jerkLength(Vt, cfg.MaxLinearJerk)
		if Vt < Vi {
			Vi = Vt
			regions = 1
		} else if head <= 0 {
			regions = 2
		} else {
			regions = 2
		}
	}

	accelerating := Vt > Vi

	recomputePreviousTail(ring, prev, cfg, Vp, Vi)

	switch {
	case regions == 1:
		emitTail(ring, unit, target, length, Vi, 0, MoveLinearDecel)
	case accelerating:
		bodyLen := length - head - tail
		switch {
		case regions >= 3 && bodyLen > 0:
			emitHead(ring, ps, unit, length, head, Vi, Vt)
			emitBody(ring, unit, target, bodyLen, Vt, length, head, tail)
			emitTail(ring, unit, target, tail, Vt, 0, MoveDecel)
		default:
			emitHead(ring, ps, unit, length, head, Vi, Vt)
			emitTail(ring, unit, target, tail, Vt, 0, MoveDecel)
		}
	default:
		bodyLen := length - tail
		if regions >= 3 && bodyLen > 0 {
			emitBody(ring, unit, target, bodyLen, Vt, length, 0, tail)
			emitTail(ring, unit, target, tail, Vt, 0, MoveDecel)
		} else {
			emitTail(ring, unit, target, length, Vi, 0, MoveDecel)
		}
	}

	ps.Position = target
	ps.PreviousVelocity = Vt
	return status.Ok, nil
}

func emitHead(ring *Ring, ps *State, unit vector.Vector, length, head, Vi, Vt float64) {
	b := ring.GetWrite()
	if b == nil {
		return
	}
	b.UnitVector = unit
	b.Target = ps.Position.Add(unit.Scale(head))
	b.Length = head
	b.InitialVelocity = Vi
	b.TargetVelocity = Vt
	b.MidpointVelocity = (Vi + Vt) / 2
	if b.MidpointVelocity > 0 {
		b.Time = head / b.MidpointVelocity
	}
	b.Microseconds = b.Time * 60e6
	b.State = StateNew
	ring.QueueWrite(MoveAccel)
}

func emitBody(ring *Ring, unit vector.Vector, target vector.Vector, bodyLen, Vt, totalLength, head, tail float64) {
	b := ring.GetWrite()
	if b == nil {
		return
	}
	b.UnitVector = unit
	// Target is the position at the end of the body region: totalLength
	// minus the tail (and minus head, already consumed by the head
	// sub-move's own target).
	b.Target = target.Sub(unit.Scale(totalLength - head - bodyLen))
	b.Length = bodyLen
	b.InitialVelocity = Vt
	b.TargetVelocity = Vt
	if Vt > 0 {
		b.Time = bodyLen / Vt
	}
	b.Microseconds = b.Time * 60e6
	ring.QueueWrite(MoveCruise)
}

func emitTail(ring *Ring, unit vector.Vector, target vector.Vector, length, Vi, Vt float64, kind MoveType) {
	b := ring.GetWrite()
	if b == nil {
		return
	}
	b.UnitVector = unit
	b.Target = target
	b.Length = length
	b.InitialVelocity = Vi
	b.TargetVelocity = Vt
	b.MidpointVelocity = (Vi + Vt) / 2
	if b.MidpointVelocity > 0 {
		b.Time = length / b.MidpointVelocity
	}
	b.Microseconds = b.Time * 60e6
	b.State = StateNew
	ring.QueueWrite(kind)
}

// recomputePreviousTail rewrites a still-queued previous buffer so its
// exit velocity equals the new move's Vi. The tail length uses
// math.Abs(Vp - Vi) so the accelerating-join case (Vi > Vp) still
// produces a nonnegative length.
func recomputePreviousTail(ring *Ring, prev *Buffer, cfg *config.MachineConfig, Vp, Vi float64) {
	if prev.BufferState != BufferQueued {
		return
	}
	if prev.TargetVelocity == Vi {
		return // exit velocity already matches (e.g. exact-stop joins at rest)
	}
	if Vi == Vp {
		prev.MoveType = MoveCruise
		prev.TargetVelocity = Vp
		if Vp > 0 {
			prev.Time = prev.Length / Vp
		}
		return
	}

	newTailLen := jerkLength(math.Abs(Vp-Vi), cfg.MaxLinearJerk)
	if newTailLen >= prev.Length {
		newTailLen = prev.Length
	}
	bodyLen := prev.Length - newTailLen

	oldTarget := prev.Target
	prev.MoveType = MoveCruise
	prev.Length = bodyLen
	prev.TargetVelocity = Vp
	prev.Target = oldTarget.Sub(prev.UnitVector.Scale(newTailLen))
	if Vp > 0 {
		prev.Time = bodyLen / Vp
	}

	newTail := ring.GetWrite()
	if newTail == nil {
		return
	}
	newTail.UnitVector = prev.UnitVector
	newTail.Target = oldTarget
	newTail.Length = newTailLen
	newTail.InitialVelocity = Vp
	newTail.TargetVelocity = Vi
	newTail.MidpointVelocity = (Vp + Vi) / 2
	if newTail.MidpointVelocity > 0 {
		newTail.Time = newTailLen / newTail.MidpointVelocity
	}
	newTail.State = StateNew
	ring.QueueWrite(MoveDecel)
}
