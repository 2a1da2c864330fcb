// Package vector holds the fixed-width axis vector used for positions,
// targets, unit vectors, and offsets throughout the planner and canonical
// machine.
package vector

import "math"

// Axes is the compile-time axis count. The first three (X, Y, Z) are
// linear, the last three (A, B, C) are rotary.
const Axes = 6

// Axis indices. NonAxis marks machine-wide (not per-axis) settings.
const (
	X Axis = iota
	Y
	Z
	A
	B
	C
	NonAxis Axis = -1
)

// Axis identifies one of the Axes ordered slots.
type Axis int

// Linear reports whether the axis moves in millimeters rather than degrees.
func (ax Axis) Linear() bool {
	return ax == X || ax == Y || ax == Z
}

func (ax Axis) String() string {
	switch ax {
	case X:
		return "X"
	case Y:
		return "Y"
	case Z:
		return "Z"
	case A:
		return "A"
	case B:
		return "B"
	case C:
		return "C"
	default:
		return "NON_AXIS"
	}
}

// Vector is an ordered tuple of Axes doubles.
type Vector [Axes]float64

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector {
	var r Vector
	for i := range v {
		r[i] = v[i] - o[i]
	}
	return r
}

// Add returns v + o.
func (v Vector) Add(o Vector) Vector {
	var r Vector
	for i := range v {
		r[i] = v[i] + o[i]
	}
	return r
}

// Scale returns v scaled by s.
func (v Vector) Scale(s float64) Vector {
	var r Vector
	for i := range v {
		r[i] = v[i] * s
	}
	return r
}

// LinearLength returns the Euclidean norm over the linear axes (X, Y, Z)
// only; rotary axes never mix into a length computation.
func (v Vector) LinearLength() float64 {
	return math.Sqrt(v[X]*v[X] + v[Y]*v[Y] + v[Z]*v[Z])
}

// Unit returns v scaled to a unit vector using the given length, computed
// separately so callers that already know the length (e.g. aline, which
// derives it once) don't pay for sqrt twice.
func (v Vector) Unit(length float64) Vector {
	if length == 0 {
		return Vector{}
	}
	return v.Scale(1 / length)
}

// AngularJerk estimates the scalar direction-change proxy between two
// unit vectors restricted to the linear axes:
// aj = sqrt(dx^2 + dy^2 + dz^2) / 2, a value in [0, 1].
func AngularJerk(prevUnit, nextUnit Vector) float64 {
	dx := nextUnit[X] - prevUnit[X]
	dy := nextUnit[Y] - prevUnit[Y]
	dz := nextUnit[Z] - prevUnit[Z]
	return math.Sqrt(dx*dx+dy*dy+dz*dz) / 2
}
