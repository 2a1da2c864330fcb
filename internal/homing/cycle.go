// Package homing implements the homing cycle: a nested continuation
// state machine that coordinates per-axis seek-to-limit moves, polled
// by the scheduler like any other stage.
package homing

import (
	"go.uber.org/multierr"

	"github.com/tinyg-go/cncmotion/internal/canonical"
	"github.com/tinyg-go/cncmotion/internal/config"
	"github.com/tinyg-go/cncmotion/internal/planner"
	"github.com/tinyg-go/cncmotion/internal/status"
	"github.com/tinyg-go/cncmotion/internal/vector"
)

// LimitSwitches exposes the debounced "thrown" signal per axis.
type LimitSwitches interface {
	Thrown(axis vector.Axis) bool
}

type state int

const (
	stateOff state = iota
	stateNew
	statePreBackoffWait
	stateAxisStart
	stateAxisSeekWait
	stateAxisBackoffWait
	stateRTZStart
	stateRTZWait
)

// homeOrder is the fixed per-axis homing sequence: x, y, z, a. Rotary
// b/c do not home.
var homeOrder = []vector.Axis{vector.X, vector.Y, vector.Z, vector.A}

// Cycle is the homing continuation, polled once per scheduler pass like
// any other sched.Continuation.
type Cycle struct {
	Machine *canonical.Machine
	Ring    *planner.Ring
	Cfg     *config.Store
	Limits  LimitSwitches

	st      state
	axes    []vector.Axis
	axisIdx int
	err     error
}

// Start arms the cycle from idle; Poll is a no-op until Start is called.
func (c *Cycle) Start() {
	if c.st == stateOff {
		c.st = stateNew
	}
}

// Active reports whether a homing cycle is in progress.
func (c *Cycle) Active() bool { return c.st != stateOff }

// Err returns the aggregated per-axis errors collected during the run
// (go.uber.org/multierr, so a cycle that fails on more than one axis
// reports all of them instead of only the first).
func (c *Cycle) Err() error { return c.err }

func (c *Cycle) enabledAxes() []vector.Axis {
	var axes []vector.Axis
	for _, ax := range homeOrder {
		if c.Cfg.Axes[ax].HomingEnable {
			axes = append(axes, ax)
		}
	}
	return axes
}

// Poll advances the homing cycle by at most one queued move per scheduler
// iteration, never advancing until the planner queue is idle.
func (c *Cycle) Poll() status.Code {
	switch c.st {
	case stateOff:
		return status.Noop

	case stateNew:
		c.Machine.SaveShadow()
		c.axes = c.enabledAxes()
		c.axisIdx = 0
		c.err = nil
		if len(c.axes) == 0 {
			c.st = stateRTZStart
			return status.Ok
		}
		if c.Limits != nil && c.Limits.Thrown(c.axes[0]) {
			c.issueBackoff(c.axes[0])
			c.st = statePreBackoffWait
		} else {
			c.st = stateAxisStart
		}
		return status.Ok

	case statePreBackoffWait:
		if c.Ring.IsBusy() {
			return status.Again
		}
		c.recordAxis(c.axes[0])
		c.axisIdx = 1
		c.st = stateAxisStart
		return status.Ok

	case stateAxisStart:
		if c.axisIdx >= len(c.axes) {
			c.st = stateRTZStart
			return status.Ok
		}
		if c.Ring.IsBusy() {
			return status.Again
		}
		ax := c.axes[c.axisIdx]
		axCfg := &c.Cfg.Axes[ax]
		target := c.Machine.Model().Position
		target[ax] -= axCfg.TravelMax
		_, err := c.Machine.StraightFeedMMRate(target, axCfg.HomingRate)
		if err != nil {
			c.err = multierr.Append(c.err, err)
		}
		c.st = stateAxisSeekWait
		return status.Ok

	case stateAxisSeekWait:
		ax := c.axes[c.axisIdx]
		if c.Limits != nil && c.Limits.Thrown(ax) {
			c.issueBackoff(ax)
			c.st = stateAxisBackoffWait
			return status.Ok
		}
		if c.Ring.IsBusy() {
			return status.Again
		}
		c.issueBackoff(ax)
		c.st = stateAxisBackoffWait
		return status.Ok

	case stateAxisBackoffWait:
		if c.Ring.IsBusy() {
			return status.Again
		}
		c.recordAxis(c.axes[c.axisIdx])
		c.axisIdx++
		c.st = stateAxisStart
		return status.Ok

	case stateRTZStart:
		if c.Ring.IsBusy() {
			return status.Again
		}
		c.Machine.RestoreShadow()
		var zero vector.Vector
		_, err := c.Machine.StraightTraverseMM(zero)
		if err != nil {
			c.err = multierr.Append(c.err, err)
		}
		c.st = stateRTZWait
		return status.Ok

	case stateRTZWait:
		if c.Ring.IsBusy() {
			return status.Again
		}
		c.st = stateOff
		return status.Complete

	default:
		return status.Noop
	}
}

// issueBackoff retreats off the switch at the slower close rate, so the
// re-approach (or the position record that follows) starts from a
// gently-released switch rather than a coasting stop.
func (c *Cycle) issueBackoff(ax vector.Axis) {
	axCfg := &c.Cfg.Axes[ax]
	target := c.Machine.Model().Position
	target[ax] += axCfg.HomingBackoff
	_, err := c.Machine.StraightFeedMMRate(target, axCfg.HomingCloseRate)
	if err != nil {
		c.err = multierr.Append(c.err, err)
	}
}

func (c *Cycle) recordAxis(ax vector.Axis) {
	axCfg := &c.Cfg.Axes[ax]
	c.Machine.SetAxisPosition(ax, axCfg.HomingOffset+axCfg.HomingBackoff)
}
