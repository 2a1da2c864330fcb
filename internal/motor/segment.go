// Package motor implements the motor segment queue and the timer-driven
// DDA (Digital Differential Analyzer) that turns queued segments into
// per-axis step pulses.
package motor

import "github.com/tinyg-go/cncmotion/internal/vector"

// SegmentKind selects what the DDA does with a dequeued segment.
type SegmentKind int

const (
	SegmentLine SegmentKind = iota
	SegmentDwell
	SegmentStart
	SegmentStop
	SegmentEnd
)

// AxisSteps is one motor's step count and direction for a single segment.
type AxisSteps struct {
	Steps int64
	Dir   bool // true = positive direction
}

// Segment is one motor segment buffer: a constant-time slice of
// motion with an integer step count per motor, or a dwell/control marker.
type Segment struct {
	Kind        SegmentKind
	TimerPeriod float64 // DDA timer period implied by this segment
	TimerTicks  uint32  // ticks_left at load time
	PerMotor    [vector.Axes]AxisSteps
}
