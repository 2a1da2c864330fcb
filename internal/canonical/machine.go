// Package canonical implements the canonical machine: modal G-code
// state translated into planner operations — traverse, feed, arc,
// dwell, stop, end, and the homing hand-off. All unit and distance-mode
// conversion happens here, at the intake boundary.
package canonical

import (
	"math"

	"github.com/pkg/errors"
	"github.com/tinyg-go/cncmotion/internal/config"
	"github.com/tinyg-go/cncmotion/internal/planner"
	"github.com/tinyg-go/cncmotion/internal/status"
	"github.com/tinyg-go/cncmotion/internal/vector"
)

// NextAction is the canonical model's pending-action modal group.
type NextAction int

const (
	ActionNone NextAction = iota
	ActionTraverse
	ActionFeed
	ActionArcCW
	ActionArcCCW
	ActionDwell
	ActionStop
	ActionEnd
	ActionHome
)

// ProgramFlow tracks M0/M1/M2/M30 state.
type ProgramFlow int

const (
	FlowRunning ProgramFlow = iota
	FlowPaused
	FlowStopped
	FlowEnded
)

// Model is the modal G-code state.
type Model struct {
	NextAction NextAction
	MotionMode NextAction
	ProgramFlow ProgramFlow

	Position vector.Vector
	Target   vector.Vector
	Offset   vector.Vector

	FeedRate            float64
	SeekRate            float64
	InverseFeedRateMode bool

	Plane           config.Plane
	InchesMode      bool
	AbsoluteMode    bool
	AbsoluteOverride bool
	PathControlMode config.PathControlMode

	Tool         int
	SpindleMode  bool
	SpindleSpeed float64
	DwellTime    float64
	Radius       float64
}

// Machine is the canonical machine: the only surface that mutates
// persistent tool position.
type Machine struct {
	Cfg   *config.Store
	Ring  *planner.Ring
	PS    *planner.State

	gm Model
	gt Model // shadow, saved across cycles (e.g. homing)
}

// NewMachine builds a canonical machine bound to a configuration store and
// planner ring/state.
func NewMachine(cfg *config.Store, ring *planner.Ring, ps *planner.State) *Machine {
	m := &Machine{Cfg: cfg, Ring: ring, PS: ps}
	m.gm.PathControlMode = cfg.Machine.GCodePathControl
	m.gm.Plane = cfg.Machine.GCodePlane
	m.gm.InchesMode = cfg.Machine.GCodeUnits == config.UnitsInches
	m.gm.AbsoluteMode = true
	return m
}

// Model returns a pointer to the live modal state. Callers read it, and
// the gcode dispatcher also writes fields such as SpindleSpeed and Tool
// through it.
func (m *Machine) Model() *Model { return &m.gm }

// SelectPlane sets the arc plane (G17/G18/G19).
func (m *Machine) SelectPlane(p config.Plane) { m.gm.Plane = p }

// SetOriginOffsets sets the work-offset vector (G92).
func (m *Machine) SetOriginOffsets(v vector.Vector) { m.gm.Offset = v }

// UseLengthUnits selects inches or millimeters for subsequent words.
func (m *Machine) UseLengthUnits(u config.Units) { m.gm.InchesMode = u == config.UnitsInches }

// SetDistanceMode selects absolute or incremental distance mode.
func (m *Machine) SetDistanceMode(absolute bool) { m.gm.AbsoluteMode = absolute }

// SetFeedRate sets the modal feed rate (mm/min, already converted).
func (m *Machine) SetFeedRate(f float64) { m.gm.FeedRate = f }

// SetInverseFeedRateMode toggles G93/G94.
func (m *Machine) SetInverseFeedRateMode(b bool) { m.gm.InverseFeedRateMode = b }

// SetMotionControlMode selects G61/G61.1/G64.
func (m *Machine) SetMotionControlMode(p config.PathControlMode) { m.gm.PathControlMode = p }

// toMillimeters converts one user-unit axis value to millimeters at the
// intake boundary; everything past here is metric.
func (m *Machine) toMillimeters(v float64, ax vector.Axis) float64 {
	if !ax.Linear() {
		return v // rotary axes stay in degrees regardless of inches mode
	}
	if m.gm.InchesMode {
		return v * 25.4
	}
	return v
}

// resolveTarget applies unit conversion and absolute/incremental
// semantics to a caller-supplied vector of per-axis "word present" values.
func (m *Machine) resolveTarget(words vector.Vector, present [vector.Axes]bool) vector.Vector {
	t := m.gm.Position
	for i := 0; i < vector.Axes; i++ {
		if !present[i] {
			continue
		}
		ax := vector.Axis(i)
		mm := m.toMillimeters(words[i], ax)
		if m.gm.AbsoluteMode {
			t[i] = mm + m.gm.Offset[i]
		} else {
			t[i] += mm
		}
	}
	return t
}

// plan queues the move through aline when acceleration management is
// enabled, or through the plain constant-velocity line planner when it
// isn't.
func (m *Machine) plan(target vector.Vector, minutes float64) (status.Code, error) {
	if !m.Cfg.Machine.AccelEnabled {
		return planner.Line(m.PS, m.Ring, &m.Cfg.Machine, target, minutes)
	}
	return planner.Aline(m.PS, m.Ring, &m.Cfg.Machine, target, minutes)
}

// slowestAxisTimeMin computes the move duration bounded by each axis's
// configured max rate: the slowest axis dictates the whole move's time.
func (m *Machine) slowestAxisTimeMin(from, to vector.Vector, maxRate func(vector.Axis) float64) float64 {
	var worst float64
	for i := 0; i < vector.Axes; i++ {
		ax := vector.Axis(i)
		d := math.Abs(to[i] - from[i])
		if d == 0 {
			continue
		}
		rate := maxRate(ax)
		if rate <= 0 {
			continue
		}
		t := d / rate
		if t > worst {
			worst = t
		}
	}
	return worst
}

// StraightTraverse issues a rapid (G0) move to target, using each axis's
// max seek rate for the slowest-axis-limited time.
func (m *Machine) StraightTraverse(words vector.Vector, present [vector.Axes]bool) (status.Code, error) {
	m.gm.NextAction = ActionTraverse
	m.gm.MotionMode = ActionTraverse
	target := m.resolveTarget(words, present)
	t := m.slowestAxisTimeMin(m.gm.Position, target, func(ax vector.Axis) float64 {
		return m.Cfg.Axes[ax].MaxSeekRate
	})
	if t <= 0 {
		return status.ZeroLength, nil
	}
	if !m.Ring.BuffersFree(3) {
		return status.Again, nil
	}
	m.gm.Target = target
	code, err := m.plan(target, t)
	m.syncPosition(code)
	return code, err
}

// StraightFeed issues a controlled feed (G1) move, using the modal feed
// rate (or inverse-time mode), capped by each axis's max feed rate.
func (m *Machine) StraightFeed(words vector.Vector, present [vector.Axes]bool) (status.Code, error) {
	m.gm.NextAction = ActionFeed
	m.gm.MotionMode = ActionFeed
	target := m.resolveTarget(words, present)
	length := target.Sub(m.gm.Position).LinearLength()
	if length == 0 {
		return status.ZeroLength, nil
	}

	var t float64
	if m.gm.InverseFeedRateMode && m.gm.FeedRate > 0 {
		t = 1 / m.gm.FeedRate
	} else if m.gm.FeedRate > 0 {
		t = length / m.gm.FeedRate
	}
	capTime := m.slowestAxisTimeMin(m.gm.Position, target, func(ax vector.Axis) float64 {
		return m.Cfg.Axes[ax].MaxFeedRate
	})
	if capTime > t {
		t = capTime
	}
	if t <= 0 {
		return status.ErrMaxFeedExceeded, errors.New("straight_feed: no feed rate or axis rate available")
	}
	if !m.Ring.BuffersFree(3) {
		return status.Again, nil
	}
	m.gm.Target = target
	code, err := m.plan(target, t)
	m.syncPosition(code)
	return code, err
}

// StraightFeedMM issues a controlled feed move directly to an absolute
// machine-space millimeter target, bypassing unit conversion and work
// offsets. The homing cycle computes its seek and backoff
// targets directly in machine space, so it calls this instead of
// StraightFeed, which expects raw G-code word values.
func (m *Machine) StraightFeedMM(target vector.Vector) (status.Code, error) {
	length := target.Sub(m.gm.Position).LinearLength()
	if length == 0 {
		return status.ZeroLength, nil
	}
	rate := m.slowestAxisTimeMin(m.gm.Position, target, func(ax vector.Axis) float64 {
		return m.Cfg.Axes[ax].MaxFeedRate
	})
	if rate <= 0 {
		rate = length / math.Max(1, m.gm.FeedRate)
	}
	if !m.Ring.BuffersFree(3) {
		return status.Again, nil
	}
	m.gm.Target = target
	code, err := m.plan(target, rate)
	m.syncPosition(code)
	return code, err
}

// StraightFeedMMRate is StraightFeedMM with an explicit rate (mm/min)
// instead of the axis-cap-derived one; the homing cycle uses it so seek
// moves run at homing_rate and backoff moves at homing_close_rate. A
// non-positive rate falls back to the axis-capped time.
func (m *Machine) StraightFeedMMRate(target vector.Vector, rate float64) (status.Code, error) {
	if rate <= 0 {
		return m.StraightFeedMM(target)
	}
	length := target.Sub(m.gm.Position).LinearLength()
	if length == 0 {
		return status.ZeroLength, nil
	}
	if !m.Ring.BuffersFree(3) {
		return status.Again, nil
	}
	m.gm.Target = target
	code, err := m.plan(target, length/rate)
	m.syncPosition(code)
	return code, err
}

// SetSpindle records spindle on/off and direction-agnostic speed state;
// actual spindle control beyond recording is out of scope.
func (m *Machine) SetSpindle(on bool) { m.gm.SpindleMode = on }

// ArcFeed issues a G2/G3 arc move.
func (m *Machine) ArcFeed(words vector.Vector, present [vector.Axes]bool, i, j, radius float64, useRadius, cw bool) (status.Code, error) {
	if cw {
		m.gm.NextAction = ActionArcCW
	} else {
		m.gm.NextAction = ActionArcCCW
	}
	m.gm.MotionMode = m.gm.NextAction
	m.gm.Radius = m.toMillimeters(radius, vector.X)
	target := m.resolveTarget(words, present)
	ax1, ax2, axL := planeAxes(m.gm.Plane)

	length := math.Hypot(target[ax1]-m.gm.Position[ax1], target[ax2]-m.gm.Position[ax2])
	var t float64
	if m.gm.FeedRate > 0 {
		t = length / m.gm.FeedRate
	}
	if t <= 0 {
		t = length / math.Max(1, m.Cfg.Axes[ax1].MaxFeedRate)
	}
	if !m.Ring.BuffersFree(3) {
		return status.Again, nil
	}
	spec := planner.ArcSpec{
		Target: target, OffsetI: m.toMillimeters(i, ax1), OffsetJ: m.toMillimeters(j, ax2),
		Radius: m.toMillimeters(radius, ax1), UseRadius: useRadius, Clockwise: cw,
		Axis1: ax1, Axis2: ax2, AxisLinear: axL, Minutes: t,
	}
	code, err := planner.ArcFeed(m.PS, m.Ring, &m.Cfg.Machine, spec)
	m.syncPosition(code)
	return code, err
}

func planeAxes(p config.Plane) (ax1, ax2, axLinear vector.Axis) {
	switch p {
	case config.PlaneXZ:
		return vector.X, vector.Z, vector.Y
	case config.PlaneYZ:
		return vector.Y, vector.Z, vector.X
	default:
		return vector.X, vector.Y, vector.Z
	}
}

// StraightTraverseMM is StraightFeedMM's rapid-rate counterpart, used by
// the homing cycle's final return-to-zero traverse.
func (m *Machine) StraightTraverseMM(target vector.Vector) (status.Code, error) {
	rate := m.slowestAxisTimeMin(m.gm.Position, target, func(ax vector.Axis) float64 {
		return m.Cfg.Axes[ax].MaxSeekRate
	})
	if rate <= 0 {
		return status.ZeroLength, nil
	}
	if !m.Ring.BuffersFree(3) {
		return status.Again, nil
	}
	m.gm.Target = target
	code, err := m.plan(target, rate)
	m.syncPosition(code)
	return code, err
}

// Dwell queues a dwell sub-move (G4).
func (m *Machine) Dwell(seconds float64) (status.Code, error) {
	m.gm.NextAction = ActionDwell
	m.gm.DwellTime = seconds
	if !m.Ring.BuffersFree(1) {
		return status.Again, nil
	}
	b := m.Ring.GetWrite()
	if b == nil {
		return status.BufferFullFatal, nil
	}
	b.DwellSeconds = seconds
	m.Ring.QueueWrite(planner.MoveDwell)
	return status.Ok, nil
}

// ProgramStop queues an M0/M1 stop marker.
func (m *Machine) ProgramStop() status.Code {
	m.gm.ProgramFlow = FlowStopped
	return m.queueControl(planner.MoveStop)
}

// ProgramEnd queues an M2/M30 end marker. When the segment generator
// reaches it, the generator runs its OnEnd callback (the controller binary
// resets the canonical model there); no input source is switched or reset.
func (m *Machine) ProgramEnd() status.Code {
	m.gm.ProgramFlow = FlowEnded
	return m.queueControl(planner.MoveEnd)
}

func (m *Machine) queueControl(kind planner.MoveType) status.Code {
	if !m.Ring.BuffersFree(1) {
		return status.Again
	}
	if m.Ring.GetWrite() == nil {
		return status.BufferFullFatal
	}
	m.Ring.QueueWrite(kind)
	return status.Ok
}

// Reset clears the modal state back to power-on defaults.
func (m *Machine) Reset() {
	m.gm = Model{
		PathControlMode: m.Cfg.Machine.GCodePathControl,
		Plane:           m.Cfg.Machine.GCodePlane,
		InchesMode:      m.Cfg.Machine.GCodeUnits == config.UnitsInches,
		AbsoluteMode:    true,
	}
}

// SaveShadow copies gm into gt, used by the homing cycle before it takes
// over motion.
func (m *Machine) SaveShadow() { m.gt = m.gm }

// RestoreShadow restores the saved modal G-code state (units, feed rate,
// distance mode, plane, path control, and similar) after a cycle such as
// homing completes, resuming whatever a program in progress had selected
// before the cycle took over. Position, Target, and Offset are left alone:
// they reflect real physical progress made during the cycle (e.g. the
// per-axis positions homing just recorded), not modal selections to roll
// back.
func (m *Machine) RestoreShadow() {
	pos, target, offset := m.gm.Position, m.gm.Target, m.gm.Offset
	m.gm = m.gt
	m.gm.Position, m.gm.Target, m.gm.Offset = pos, target, offset
}

// syncPosition applies the recovery policy: position only ever
// mutates on Ok or Again; any other (error) code leaves it untouched so
// retries are well defined.
func (m *Machine) syncPosition(code status.Code) {
	if code == status.Ok || code == status.Again {
		m.gm.Position = m.PS.Position
	}
}

// SetPosition forces the logical position without queuing a move, used by
// the homing cycle's final "record position" step.
func (m *Machine) SetPosition(v vector.Vector) {
	m.gm.Position = v
	m.PS.Position = v
	m.PS.PositionInter = v
}

// SetAxisPosition redefines a single axis's logical position in place,
// used after a homing backoff move completes: the current physical
// location is declared to be homing_offset + homing_backoff without
// queuing any motion.
func (m *Machine) SetAxisPosition(ax vector.Axis, value float64) {
	m.gm.Position[ax] = value
	m.PS.Position[ax] = value
	m.PS.PositionInter[ax] = value
}
