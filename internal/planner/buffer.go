// Package planner implements the jerk-limited trajectory planner (aline),
// the arc planner, and the index-based ring of sub-move buffers that sit
// between the canonical machine and the segment generator.
package planner

import "github.com/tinyg-go/cncmotion/internal/vector"

// MoveType is the sub-move kind carried by a planner buffer.
type MoveType int

const (
	MoveNone MoveType = iota
	MoveLine
	MoveCruise
	MoveAccel
	MoveDecel
	MoveLinearDecel
	MoveArc
	MoveDwell
	MoveStart
	MoveStop
	MoveEnd
)

// MoveState is the accel/decel curve sub-phase.
type MoveState int

const (
	StateNew MoveState = iota
	StateRunning1
	StateRunning2
)

// BufferState is the producer/consumer lifecycle state of a ring slot.
type BufferState int

const (
	BufferEmpty BufferState = iota
	BufferLoading
	BufferQueued
	BufferRunning
)

// Buffer is one planner ring element: a queued sub-move.
type Buffer struct {
	MoveType    MoveType
	State       MoveState
	BufferState BufferState

	UnitVector vector.Vector
	Target     vector.Vector
	Steps      [vector.Axes]int64

	Length        float64 // mm
	Time          float64 // min
	Microseconds  float64

	InitialVelocity       float64
	TargetVelocity        float64
	MidpointVelocity      float64
	MidpointAcceleration  float64
	LinearJerkDiv2        float64

	// Segmenter working set.
	Segments       int
	SegmentCount   int
	SegmentTime    float64
	SegmentLength  float64
	SegmentVelocity float64
	ElapsedTime    float64

	// Arc extras.
	Theta         float64
	Radius        float64
	Center1       float64
	Center2       float64
	SegmentTheta  float64
	SegmentLinear float64
	Axis1         vector.Axis
	Axis2         vector.Axis
	AxisLinear    vector.Axis

	// Dwell.
	DwellSeconds float64

	next, prev int
}

func (b *Buffer) reset() {
	*b = Buffer{next: b.next, prev: b.prev}
}
