package planner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyg-go/cncmotion/internal/status"
	"github.com/tinyg-go/cncmotion/internal/vector"
)

func TestThetaQuadrants(t *testing.T) {
	assert.InDelta(t, 0.0, theta(1, 0), 1e-9)
	assert.InDelta(t, math.Pi/2, theta(0, 1), 1e-9)
	assert.InDelta(t, math.Pi, theta(-1, 0), 1e-9)
	assert.InDelta(t, 3*math.Pi/2, theta(0, -1), 1e-9)
}

// A G3 quarter circle from (10,0) to (0,10) about the origin: the
// counterclockwise angular travel is +pi/2, and the per-segment theta
// delta must carry that sign so the segmenter traces the short way.
func TestArcFeedQuarterCircleCounterClockwise(t *testing.T) {
	ring := NewRing()
	ps := &State{Position: vector.Vector{vector.X: 10}}
	ps.PositionInter = ps.Position
	cfg := testMachineConfig()

	spec := ArcSpec{
		Target:     vector.Vector{vector.Y: 10},
		OffsetI:    -10,
		OffsetJ:    0,
		Clockwise:  false,
		Axis1:      vector.X,
		Axis2:      vector.Y,
		AxisLinear: vector.Z,
		Minutes:    1.0,
	}
	code, err := ArcFeed(ps, ring, cfg, spec)
	require.NoError(t, err)
	assert.Equal(t, status.Ok, code)
	assert.Equal(t, spec.Target, ps.Position)

	b := &ring.buf[0]
	wantRadius := 10.0
	assert.InDelta(t, wantRadius, b.Radius, 1e-6)
	assert.InDelta(t, math.Pi/2, b.SegmentTheta*float64(b.Segments), 1e-6)
	assert.Greater(t, b.SegmentTheta, 0.0)
}

// The same endpoints traversed clockwise (G2) must go the long way
// around, with theta decreasing: -3pi/2 of signed travel.
func TestArcFeedClockwiseTravelIsNegative(t *testing.T) {
	ring := NewRing()
	ps := &State{Position: vector.Vector{vector.X: 10}}
	ps.PositionInter = ps.Position
	cfg := testMachineConfig()

	spec := ArcSpec{
		Target:     vector.Vector{vector.Y: 10},
		OffsetI:    -10,
		OffsetJ:    0,
		Clockwise:  true,
		Axis1:      vector.X,
		Axis2:      vector.Y,
		AxisLinear: vector.Z,
		Minutes:    1.0,
	}
	code, err := ArcFeed(ps, ring, cfg, spec)
	require.NoError(t, err)
	assert.Equal(t, status.Ok, code)

	b := &ring.buf[0]
	assert.InDelta(t, -3*math.Pi/2, b.SegmentTheta*float64(b.Segments), 1e-6)
}

func TestArcFeedNonRealCenterErrors(t *testing.T) {
	ring := NewRing()
	ps := &State{}
	cfg := testMachineConfig()

	// A radius far too small to reach the target produces an imaginary
	// center: 4*r^2 - (dx^2+dy^2) < 0.
	spec := ArcSpec{
		Target:     vector.Vector{vector.X: 100, vector.Y: 100},
		Radius:     1,
		UseRadius:  true,
		Clockwise:  false,
		Axis1:      vector.X,
		Axis2:      vector.Y,
		AxisLinear: vector.Z,
		Minutes:    1.0,
	}
	code, err := ArcFeed(ps, ring, cfg, spec)
	assert.Error(t, err)
	assert.Equal(t, status.ErrArcSpecification, code)
}

func TestArcFeedTooShortSkipped(t *testing.T) {
	ring := NewRing()
	ps := &State{}
	cfg := testMachineConfig()
	cfg.MMPerArcSegment = 100 // force any realistic arc below this

	spec := ArcSpec{
		Target:     vector.Vector{vector.X: 0.01, vector.Y: 0},
		OffsetI:    0.01,
		OffsetJ:    0,
		Clockwise:  true,
		Axis1:      vector.X,
		Axis2:      vector.Y,
		AxisLinear: vector.Z,
		Minutes:    0.01,
	}
	code, err := ArcFeed(ps, ring, cfg, spec)
	assert.NoError(t, err)
	assert.Equal(t, status.ArcTooShort, code)
}
