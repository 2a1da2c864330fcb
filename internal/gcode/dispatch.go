package gcode

import (
	"github.com/tinyg-go/cncmotion/internal/canonical"
	"github.com/tinyg-go/cncmotion/internal/config"
	"github.com/tinyg-go/cncmotion/internal/status"
	"github.com/tinyg-go/cncmotion/internal/vector"
)

// motionGroup is the closed set of motion-mode G-codes; modal-group
// violations (more than one of these on a line) are rejected before any
// side effect.
var motionGroup = []float64{0, 1, 2, 3, 4, 28, 92, 80}

// Dispatcher binds a parsed line to the canonical machine it drives, plus
// an optional homing trigger for G28.
type Dispatcher struct {
	Machine *canonical.Machine
	Home    func() status.Code
}

// axisLetters maps G-code axis letters to vector.Axis, in the order
// traversed to build a target vector.
var axisLetters = []struct {
	letter byte
	axis   vector.Axis
}{
	{'X', vector.X}, {'Y', vector.Y}, {'Z', vector.Z},
	{'A', vector.A}, {'B', vector.B}, {'C', vector.C},
}

func axisWords(w Words) (vector.Vector, [vector.Axes]bool) {
	var v vector.Vector
	var present [vector.Axes]bool
	for _, al := range axisLetters {
		if val, ok := w.Get(al.letter); ok {
			v[al.axis] = val
			present[al.axis] = true
		}
	}
	return v, present
}

// Dispatch applies one parsed line to the canonical machine in the NIST
// order RS-274/NGC mandates: feed-rate mode, feed rate, spindle speed,
// tool, plane, length units, path control, distance mode, motion mode,
// program flow. G and M words outside those groups (cutter comp and
// coordinate-system selection among them) are accepted and have no
// effect; no unsupported-statement status is returned for them.
func (d *Dispatcher) Dispatch(w Words) (status.Code, error) {
	if err := checkModalGroups(w); err != nil {
		return status.ParseModalGroupViolation, err
	}

	m := d.Machine

	// Feed-rate mode (G93/G94).
	if w.HasG(93) {
		m.SetInverseFeedRateMode(true)
	}
	if w.HasG(94) {
		m.SetInverseFeedRateMode(false)
	}

	// Feed rate (F).
	if f, ok := w.Get('F'); ok {
		m.SetFeedRate(f)
	}

	// Spindle (S, M3/M4/M5) and tool (T) are recorded only; nothing
	// drives a physical spindle or changer from here.
	if s, ok := w.Get('S'); ok {
		m.Model().SpindleSpeed = s
	}
	if t, ok := w.Get('T'); ok {
		m.Model().Tool = int(t)
	}
	switch {
	case w.HasM(3), w.HasM(4):
		m.SetSpindle(true)
	case w.HasM(5):
		m.SetSpindle(false)
	}

	// Plane (G17/G18/G19).
	switch {
	case w.HasG(17):
		m.SelectPlane(config.PlaneXY)
	case w.HasG(18):
		m.SelectPlane(config.PlaneXZ)
	case w.HasG(19):
		m.SelectPlane(config.PlaneYZ)
	}

	// Length units (G20/G21).
	switch {
	case w.HasG(20):
		m.UseLengthUnits(config.UnitsInches)
	case w.HasG(21):
		m.UseLengthUnits(config.UnitsMM)
	}

	// Path control mode (G61/G61.1/G64).
	switch {
	case w.HasG(61.1):
		m.SetMotionControlMode(config.PathExactPath)
	case w.HasG(61):
		m.SetMotionControlMode(config.PathExactStop)
	case w.HasG(64):
		m.SetMotionControlMode(config.PathContinuous)
	}

	// Distance mode (G90/G91).
	switch {
	case w.HasG(90):
		m.SetDistanceMode(true)
	case w.HasG(91):
		m.SetDistanceMode(false)
	}

	words, present := axisWords(w)

	// Motion mode (G0/G1/G2/G3/G4/G28/G92/G80).
	code, err := d.dispatchMotion(w, words, present)
	if err != nil || code.IsError() {
		return code, err
	}

	// Program flow (M0/M1/M2/M30).
	switch {
	case w.HasM(0), w.HasM(1):
		m.ProgramStop()
	case w.HasM(2), w.HasM(30):
		m.ProgramEnd()
	}

	return code, nil
}

func (d *Dispatcher) dispatchMotion(w Words, words vector.Vector, present [vector.Axes]bool) (status.Code, error) {
	m := d.Machine
	switch {
	case w.HasG(0):
		return m.StraightTraverse(words, present)
	case w.HasG(1):
		return m.StraightFeed(words, present)
	case w.HasG(2), w.HasG(3):
		i, _ := w.Get('I')
		j, _ := w.Get('J')
		r, hasR := w.Get('R')
		return m.ArcFeed(words, present, i, j, r, hasR, w.HasG(2))
	case w.HasG(4):
		p, _ := w.Get('P')
		return m.Dwell(p)
	case w.HasG(92):
		m.SetOriginOffsets(words)
		return status.Ok, nil
	case w.HasG(28):
		if d.Home == nil {
			return status.ParseUnsupportedStatement, errUnsupportedStatement
		}
		return d.Home(), nil
	case w.HasG(80):
		return status.Ok, nil // cancel canned cycle: no canned cycles are implemented
	default:
		return status.Ok, nil // no motion word on this line
	}
}

func checkModalGroups(w Words) error {
	count := 0
	for _, g := range motionGroup {
		if w.HasG(g) {
			count++
		}
	}
	if count > 1 {
		return errModalGroupViolation
	}
	return nil
}
