package config

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/tinyg-go/cncmotion/internal/vector"
)

// Mnemonic is one of the closed two-character setting tokens.
type Mnemonic string

// The closed mnemonic set.
const (
	MnemSeekRate        Mnemonic = "SR"
	MnemFeedRate        Mnemonic = "FR"
	MnemStepAngle       Mnemonic = "SA"
	MnemMicrosteps      Mnemonic = "MI"
	MnemTravelPerRev    Mnemonic = "TR"
	MnemTravelMax       Mnemonic = "TM"
	MnemHomingEnable    Mnemonic = "HE"
	MnemHomingRate      Mnemonic = "HR"
	MnemHomingOffset    Mnemonic = "HO"
	MnemHomingBackoff   Mnemonic = "HB"
	MnemPlane           Mnemonic = "GL"
	MnemUnits           Mnemonic = "GU"
	MnemPathControl     Mnemonic = "GP"
	MnemMaxLinearJerk   Mnemonic = "JM"
	MnemAngularJerkUp   Mnemonic = "JU"
	MnemAngularJerkLow  Mnemonic = "JL"
	MnemMinSegmentTime  Mnemonic = "MT"
	MnemMinSegmentLen   Mnemonic = "MM"
	MnemAccelEnable     Mnemonic = "EA"
	MnemHomingModeToken Mnemonic = "HM"
)

// Get reads one setting, per-axis when axis != vector.NonAxis and
// mnemonic-only otherwise.
func (s *Store) Get(axis vector.Axis, m Mnemonic) (float64, error) {
	if axis == vector.NonAxis {
		switch m {
		case MnemMaxLinearJerk:
			return s.Machine.MaxLinearJerk, nil
		case MnemAngularJerkUp:
			return s.Machine.AngularJerkUpper, nil
		case MnemAngularJerkLow:
			return s.Machine.AngularJerkLower, nil
		case MnemMinSegmentTime:
			return s.Machine.MinSegmentTimeUs, nil
		case MnemMinSegmentLen:
			return s.Machine.MinSegmentLenMM, nil
		case MnemAccelEnable:
			return boolToFloat(s.Machine.AccelEnabled), nil
		case MnemHomingModeToken:
			return float64(s.Machine.HomingMode), nil
		case MnemPlane:
			return float64(s.Machine.GCodePlane), nil
		case MnemUnits:
			return float64(s.Machine.GCodeUnits), nil
		case MnemPathControl:
			return float64(s.Machine.GCodePathControl), nil
		default:
			return 0, errors.Wrapf(errNotFound, "mnemonic %q", m)
		}
	}
	if int(axis) < 0 || int(axis) >= vector.Axes {
		return 0, errors.Errorf("axis index %d out of range", axis)
	}
	a := &s.Axes[axis]
	switch m {
	case MnemSeekRate:
		return a.MaxSeekRate, nil
	case MnemFeedRate:
		return a.MaxFeedRate, nil
	case MnemStepAngle:
		return a.StepAngle, nil
	case MnemMicrosteps:
		return float64(a.Microsteps), nil
	case MnemTravelPerRev:
		return a.TravelPerRev, nil
	case MnemTravelMax:
		return a.TravelMax, nil
	case MnemHomingEnable:
		return boolToFloat(a.HomingEnable), nil
	case MnemHomingRate:
		return a.HomingRate, nil
	case MnemHomingOffset:
		return a.HomingOffset, nil
	case MnemHomingBackoff:
		return a.HomingBackoff, nil
	default:
		return 0, errors.Wrapf(errNotFound, "axis mnemonic %q", m)
	}
}

// Set writes one setting and recomputes derived axis fields so
// steps_per_unit and the *_steps rates stay consistent.
func (s *Store) Set(axis vector.Axis, m Mnemonic, value float64) error {
	if axis == vector.NonAxis {
		switch m {
		case MnemMaxLinearJerk:
			s.Machine.MaxLinearJerk = value
		case MnemAngularJerkUp:
			s.Machine.AngularJerkUpper = value
		case MnemAngularJerkLow:
			s.Machine.AngularJerkLower = value
		case MnemMinSegmentTime:
			s.Machine.MinSegmentTimeUs = value
		case MnemMinSegmentLen:
			s.Machine.MinSegmentLenMM = value
		case MnemAccelEnable:
			s.Machine.AccelEnabled = value != 0
		case MnemHomingModeToken:
			s.Machine.HomingMode = HomingMode(int(value))
		case MnemPlane:
			s.Machine.GCodePlane = Plane(int(value))
		case MnemUnits:
			s.Machine.GCodeUnits = Units(int(value))
		case MnemPathControl:
			s.Machine.GCodePathControl = PathControlMode(int(value))
		default:
			return errors.Wrapf(errNotFound, "mnemonic %q", m)
		}
		return nil
	}
	if int(axis) < 0 || int(axis) >= vector.Axes {
		return errors.Errorf("axis index %d out of range", axis)
	}
	a := &s.Axes[axis]
	switch m {
	case MnemSeekRate:
		a.MaxSeekRate = value
	case MnemFeedRate:
		a.MaxFeedRate = value
	case MnemStepAngle:
		a.StepAngle = value
	case MnemMicrosteps:
		a.Microsteps = int(value)
	case MnemTravelPerRev:
		a.TravelPerRev = value
	case MnemTravelMax:
		a.TravelMax = value
	case MnemHomingEnable:
		a.HomingEnable = value != 0
	case MnemHomingRate:
		a.HomingRate = value
	case MnemHomingOffset:
		a.HomingOffset = value
	case MnemHomingBackoff:
		a.HomingBackoff = value
	default:
		return errors.Wrapf(errNotFound, "axis mnemonic %q", m)
	}
	a.RecomputeDerived()
	return nil
}

var errNotFound = errors.New("setting not found")

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// FormatHelp renders the $h help text.
func FormatHelp() string {
	return fmt.Sprintf(`configuration mnemonics:
  %s seek rate       %s feed rate       %s step angle
  %s microsteps      %s travel/rev      %s travel max
  %s homing enable   %s homing rate     %s homing offset
  %s homing backoff  %s plane           %s units
  %s path control    %s max linear jerk %s angular jerk upper
  %s angular jerk lower %s min segment time %s min segment length
  %s accel enable    %s homing mode
`, MnemSeekRate, MnemFeedRate, MnemStepAngle,
		MnemMicrosteps, MnemTravelPerRev, MnemTravelMax,
		MnemHomingEnable, MnemHomingRate, MnemHomingOffset,
		MnemHomingBackoff, MnemPlane, MnemUnits,
		MnemPathControl, MnemMaxLinearJerk, MnemAngularJerkUp,
		MnemAngularJerkLow, MnemMinSegmentTime, MnemMinSegmentLen,
		MnemAccelEnable, MnemHomingModeToken)
}
