// Package segment implements the dispatcher that walks a running planner
// buffer and emits a stream of short constant-time motor segments, one
// segment per scheduler pass at most.
package segment

import (
	"math"

	"github.com/tinyg-go/cncmotion/internal/config"
	"github.com/tinyg-go/cncmotion/internal/motor"
	"github.com/tinyg-go/cncmotion/internal/planner"
	"github.com/tinyg-go/cncmotion/internal/status"
	"github.com/tinyg-go/cncmotion/internal/vector"
)

// Generator dispatches the currently-running planner buffer into the
// motor segment queue, one motor segment per call at most.
type Generator struct {
	Ring  *planner.Ring
	PS    *planner.State
	Cfg   *config.Store
	Queue *motor.SegmentQueue

	onEnd func() // invoked when an "end" control segment is dispatched
}

// OnEnd registers the callback run when an "end" control segment is
// dispatched. The generator does nothing else for "end": it resets no
// input source and no canonical model itself.
func (g *Generator) OnEnd(fn func()) { g.onEnd = fn }

// Dispatch runs the current running buffer's per-type step function.
// Returns Noop if nothing is running, Again if the motor segment queue
// is full (without advancing sub-move state), Ok on progress, and
// Complete when the buffer finished this call.
func (g *Generator) Dispatch() status.Code {
	b := g.Ring.GetRun()
	if b == nil {
		return status.Noop
	}
	if g.Queue.Full() {
		return status.Again
	}

	var done bool
	switch b.MoveType {
	case planner.MoveLine, planner.MoveCruise:
		done = g.runConstantVelocity(b)
	case planner.MoveAccel, planner.MoveDecel, planner.MoveLinearDecel:
		done = g.runSCurve(b)
	case planner.MoveArc:
		done = g.runArc(b)
	case planner.MoveDwell:
		done = g.runDwell(b)
	case planner.MoveStart:
		g.pushControl(motor.SegmentStart)
		done = true
	case planner.MoveStop:
		g.pushControl(motor.SegmentStop)
		done = true
	case planner.MoveEnd:
		g.pushControl(motor.SegmentEnd)
		if g.onEnd != nil {
			g.onEnd()
		}
		done = true
	default:
		done = true
	}

	if done {
		g.Ring.EndRun()
		return status.Complete
	}
	return status.Ok
}

// stepsFor converts an absolute position to integer motor steps for one
// axis using the axis's steps_per_unit.
func (g *Generator) stepsFor(pos vector.Vector, ax vector.Axis) int64 {
	return int64(math.Round(pos[ax] * g.Cfg.Axes[ax].StepsPerUnit))
}

// pushLineSegment converts a move from ps.PositionInter to target into
// an integer per-axis step delta and queues one line motor segment
// covering durationMin minutes. Disabled and inhibited axes track
// position but emit no steps.
func (g *Generator) pushLineSegment(target vector.Vector, durationMin float64) {
	seg := motor.Segment{Kind: motor.SegmentLine}
	for i := 0; i < vector.Axes; i++ {
		ax := vector.Axis(i)
		mode := g.Cfg.Axes[ax].Mode
		if mode == config.ModeDisabled || mode == config.ModeInhibited {
			continue
		}
		before := g.stepsFor(g.PS.PositionInter, ax)
		after := g.stepsFor(target, ax)
		delta := after - before
		seg.PerMotor[i] = motor.AxisSteps{Steps: int64(math.Abs(float64(delta))), Dir: delta >= 0}
	}
	ticks := uint32(math.Max(1, durationMin*60*motor.TimerFrequencyHz(&g.Cfg.Machine)))
	seg.TimerTicks = ticks
	seg.TimerPeriod = 1 / motor.TimerFrequencyHz(&g.Cfg.Machine)
	g.Queue.Push(seg)
	g.PS.PositionInter = target
}

func (g *Generator) pushControl(kind motor.SegmentKind) {
	g.Queue.Push(motor.Segment{Kind: kind, TimerTicks: 1})
}

// runConstantVelocity handles a line/cruise buffer: one motor segment for
// the entire region.
func (g *Generator) runConstantVelocity(b *planner.Buffer) bool {
	g.pushLineSegment(b.Target, b.Time)
	return true
}

// runSCurve implements the two-phase jerk-limited S-curve.
// On state == New it initializes the phase split; each call thereafter
// advances one segment_time tick of the curve, converts the tick's
// velocity into a micro-displacement along the unit vector, and queues
// one motor segment, until the whole region's segment budget is consumed.
// A linear_decel buffer takes the straight-ramp branch instead of the
// two-phase curve.
func (g *Generator) runSCurve(b *planner.Buffer) bool {
	decelerating := b.TargetVelocity < b.InitialVelocity

	if b.State == planner.StateNew {
		b.MidpointVelocity = (b.InitialVelocity + b.TargetVelocity) / 2
		if b.MidpointVelocity <= 0 {
			return true
		}
		b.Time = b.Length / b.MidpointVelocity
		minSegTimeMin := g.Cfg.Machine.MinSegmentTimeUs / 1e6 / 60
		segs := int(math.Ceil(b.Time / minSegTimeMin))
		if segs < 2 {
			segs = 2
		}
		b.Segments = segs
		b.SegmentTime = b.Time / float64(segs)
		b.LinearJerkDiv2 = g.Cfg.Machine.MaxLinearJerk / 2
		b.MidpointAcceleration = b.Time * b.LinearJerkDiv2
		b.SegmentCount = 0
		b.ElapsedTime = 0
		b.State = planner.StateRunning1
	}

	half := b.Segments / 2
	t := b.ElapsedTime + b.SegmentTime

	var v float64
	switch {
	case b.MoveType == planner.MoveLinearDecel:
		// Straight ramp Vi -> Vt, no jerk shaping.
		v = b.InitialVelocity + (b.TargetVelocity-b.InitialVelocity)*(t/b.Time)
	case b.SegmentCount < half:
		// Phase 1 (concave): v(t) = Vi +/- linear_jerk_div2 * t^2.
		if decelerating {
			v = b.InitialVelocity - b.LinearJerkDiv2*t*t
		} else {
			v = b.InitialVelocity + b.LinearJerkDiv2*t*t
		}
	default:
		// Phase 2 (convex): v(t) = Vmid +/- t*Amid -/+ linear_jerk_div2*t^2.
		if b.State == planner.StateRunning1 {
			b.State = planner.StateRunning2
		}
		tp := t - b.Time/2
		if decelerating {
			v = b.MidpointVelocity - tp*b.MidpointAcceleration + b.LinearJerkDiv2*tp*tp
		} else {
			v = b.MidpointVelocity + tp*b.MidpointAcceleration - b.LinearJerkDiv2*tp*tp
		}
	}
	if v < 0 {
		v = 0
	}

	b.ElapsedTime = t
	b.SegmentCount++
	b.SegmentVelocity = v

	target := g.PS.PositionInter.Add(b.UnitVector.Scale(v * b.SegmentTime))
	if b.SegmentCount >= b.Segments {
		// Land the final segment exactly on the buffer target so the
		// integer step total matches the planned move with no drift.
		target = b.Target
	}

	g.pushLineSegment(target, b.SegmentTime)
	return b.SegmentCount >= b.Segments
}

// runArc advances the running arc buffer's theta by one segment and
// queues the resulting line segment.
func (g *Generator) runArc(b *planner.Buffer) bool {
	b.Theta += b.SegmentTheta
	b.SegmentCount++

	x := b.Center1 + b.Radius*math.Cos(b.Theta)
	y := b.Center2 + b.Radius*math.Sin(b.Theta)

	target := g.PS.PositionInter
	target[b.Axis1] = x
	target[b.Axis2] = y
	if b.AxisLinear != vector.NonAxis {
		target[b.AxisLinear] += b.SegmentLinear
	}
	if b.SegmentCount >= b.Segments {
		target = b.Target
	}

	g.pushLineSegment(target, b.SegmentTime)
	return b.SegmentCount >= b.Segments
}

// runDwell queues one dwell motor segment with ticks derived from the
// configured dwell timer frequency.
func (g *Generator) runDwell(b *planner.Buffer) bool {
	freq := g.Cfg.Machine.DwellFrequencyHz
	if freq <= 0 {
		freq = 10_000
	}
	ticks := uint32(math.Max(1, b.DwellSeconds*freq))
	g.Queue.Push(motor.Segment{Kind: motor.SegmentDwell, TimerTicks: ticks})
	return true
}
