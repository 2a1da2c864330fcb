// Package config holds the typed per-axis and machine configuration
// records consumed by every other package, plus the mnemonic-keyed CLI
// surface and the persistent-storage record format behind it.
package config

import "github.com/tinyg-go/cncmotion/internal/vector"

// AxisMode selects how an axis participates in motion.
type AxisMode int

const (
	ModeDisabled AxisMode = iota
	ModeStandard
	ModeInhibited
	ModeRadius
	ModeSlaveX
	ModeSlaveY
	ModeSlaveZ
	ModeSlaveXY
	ModeSlaveXZ
	ModeSlaveYZ
	ModeSlaveXYZ
)

// PowerMode controls motor idle behavior.
type PowerMode int

const (
	PowerAlwaysOn PowerMode = iota
	PowerIdleDisable
)

// AxisConfig is the per-axis configuration record.
type AxisConfig struct {
	MapAxis  vector.Axis
	Mode     AxisMode
	Polarity uint8

	StepAngle    float64 // deg/full-step
	TravelPerRev float64 // mm/rev (or deg/rev for rotary radius mode)
	Microsteps   int     // 1, 2, 4, or 8
	StepsPerUnit float64 // derived

	MaxSeekRate float64 // mm/min
	MaxFeedRate float64 // mm/min
	SeekSteps   float64 // whole steps/s
	FeedSteps   float64 // whole steps/s

	TravelMax float64 // mm
	Radius    float64 // mm/radian, rotary axes only

	Power     PowerMode
	LimitMode int

	HomingEnable    bool
	HomingRate      float64
	HomingCloseRate float64
	HomingOffset    float64
	HomingBackoff   float64
}

// RecomputeDerived recomputes StepsPerUnit and the whole-steps/s rate
// fields that must stay mutually consistent with the rate settings:
// steps_per_unit == 360 / (step_angle/microsteps) / travel_per_rev.
func (a *AxisConfig) RecomputeDerived() {
	if a.Microsteps <= 0 {
		a.Microsteps = 1
	}
	if a.TravelPerRev == 0 {
		a.StepsPerUnit = 0
	} else {
		a.StepsPerUnit = 360.0 / (a.StepAngle / float64(a.Microsteps)) / a.TravelPerRev
	}
	a.SeekSteps = a.MaxSeekRate / 60.0 * a.StepsPerUnit
	a.FeedSteps = a.MaxFeedRate / 60.0 * a.StepsPerUnit
}

// DefaultAxisConfig returns compiled-in defaults for one axis.
func DefaultAxisConfig(ax vector.Axis) AxisConfig {
	c := AxisConfig{
		MapAxis:         ax,
		Mode:            ModeStandard,
		StepAngle:       1.8,
		TravelPerRev:    5.0,
		Microsteps:      8,
		MaxSeekRate:     1500,
		MaxFeedRate:     800,
		TravelMax:       300,
		Power:           PowerIdleDisable,
		HomingRate:      500,
		HomingCloseRate: 100,
		HomingBackoff:   5,
	}
	if !ax.Linear() {
		c.TravelPerRev = 360
		c.Radius = 1
	}
	c.RecomputeDerived()
	return c
}
