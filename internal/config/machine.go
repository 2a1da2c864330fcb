package config

import "github.com/tinyg-go/cncmotion/internal/vector"

// Plane selects the two axes an arc is drawn in plus the out-of-plane
// linear axis (G17-G19).
type Plane int

const (
	PlaneXY Plane = iota
	PlaneXZ
	PlaneYZ
)

// Units selects the G-code word's length unit.
type Units int

const (
	UnitsMM Units = iota
	UnitsInches
)

// PathControlMode is the RS-274 path-control mode (G61/G61.1/G64).
type PathControlMode int

const (
	PathExactStop PathControlMode = iota
	PathExactPath
	PathContinuous
)

// HomingMode is one machine-wide switch: HomingAuto runs the homing cycle
// at startup, HomingManual does not. It does not select axes; each axis's
// own homing-enable setting does.
type HomingMode int

const (
	HomingManual HomingMode = iota
	HomingAuto
)

// MachineConfig is the machine-wide configuration record.
//
// ShortLineIterCap and ShortLineEpsilonMM are the tuning parameters for
// aline's short-line velocity reduction loop, exposed as configuration
// rather than hard-coded.
type MachineConfig struct {
	MaxLinearJerk     float64 // mm/min^3
	AngularJerkUpper  float64 // [0,1]
	AngularJerkLower  float64 // [0,1]
	MinSegmentLenMM   float64
	MinSegmentTimeUs  float64
	MMPerArcSegment   float64
	AccelEnabled      bool
	HomingMode        HomingMode
	GCodePlane        Plane
	GCodeUnits        Units
	GCodePathControl  PathControlMode
	GCodeFeedRate     float64
	GCodeSpindleSpeed float64
	GCodeTool         int

	ShortLineIterCap   int
	ShortLineEpsilonMM float64

	DDAFrequencyHz   float64
	DwellFrequencyHz float64
}

// DefaultMachineConfig returns compiled-in machine defaults.
func DefaultMachineConfig() MachineConfig {
	return MachineConfig{
		MaxLinearJerk:      50_000_000,
		AngularJerkUpper:   0.8,
		AngularJerkLower:   0.1,
		MinSegmentLenMM:    0.02,
		MinSegmentTimeUs:   10_000,
		MMPerArcSegment:    0.1,
		AccelEnabled:       true,
		HomingMode:         HomingAuto,
		GCodePlane:         PlaneXY,
		GCodeUnits:         UnitsMM,
		GCodePathControl:   PathContinuous,
		ShortLineIterCap:   40,
		ShortLineEpsilonMM: 0.002,
		DDAFrequencyHz:     50_000,
		DwellFrequencyHz:   10_000,
	}
}

// Store bundles the machine record with one AxisConfig per axis, the unit
// consumed by internal/config's persistence layer and by the $ CLI surface.
type Store struct {
	Machine MachineConfig
	Axes    [vector.Axes]AxisConfig
}

// NewDefaultStore builds a Store from compiled-in defaults for every axis.
func NewDefaultStore() *Store {
	s := &Store{Machine: DefaultMachineConfig()}
	for i := 0; i < vector.Axes; i++ {
		s.Axes[i] = DefaultAxisConfig(vector.Axis(i))
	}
	return s
}
