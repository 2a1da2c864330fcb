package planner

import (
	"math"

	"github.com/tinyg-go/cncmotion/internal/config"
	"github.com/tinyg-go/cncmotion/internal/status"
	"github.com/tinyg-go/cncmotion/internal/vector"
)

// ArcSpec is the caller-supplied arc description: endpoints
// are implicit (ps.Position -> target), plus either offsets (i, j) or a
// radius, the linear out-of-plane travel, and the rotation sense.
type ArcSpec struct {
	Target      vector.Vector
	OffsetI     float64
	OffsetJ     float64
	Radius      float64
	UseRadius   bool
	Clockwise   bool
	Axis1       vector.Axis // first plane axis (e.g. X for G17)
	Axis2       vector.Axis // second plane axis (e.g. Y for G17)
	AxisLinear  vector.Axis // out-of-plane axis (e.g. Z for G17)
	Minutes     float64
}

// theta is the quadrant-correct angle of (x, y) about the origin, in
// [0, 2pi).
func theta(x, y float64) float64 {
	if x > 0 {
		if y >= 0 {
			return math.Atan(y / x)
		}
		return 2*math.Pi + math.Atan(y/x)
	}
	if x < 0 {
		return math.Pi + math.Atan(y/x)
	}
	if y > 0 {
		return math.Pi / 2
	}
	return 3 * math.Pi / 2
}

// ArcFeed queues a single arc planner buffer covering the whole arc; the
// segment generator walks it one line segment at a time at run time.
func ArcFeed(ps *State, ring *Ring, cfg *config.MachineConfig, spec ArcSpec) (status.Code, error) {
	p1 := axisValue(ps.Position, spec.Axis1)
	p2 := axisValue(ps.Position, spec.Axis2)
	t1 := axisValue(spec.Target, spec.Axis1)
	t2 := axisValue(spec.Target, spec.Axis2)

	var center1, center2, radius float64
	if spec.UseRadius {
		radius = spec.Radius
		x := t1 - p1
		y := t2 - p2
		h2 := 4*radius*radius - (x*x + y*y)
		if h2 < 0 {
			return status.ErrArcSpecification, errArcNonRealCenter
		}
		hDiv := -math.Sqrt(h2) / math.Hypot(x, y)
		if (spec.Clockwise && radius < 0) || (!spec.Clockwise && radius > 0) {
			hDiv = -hDiv
		}
		center1 = (p1+t1)/2 - hDiv*y/2
		center2 = (p2+t2)/2 + hDiv*x/2
	} else {
		center1 = p1 + spec.OffsetI
		center2 = p2 + spec.OffsetJ
		radius = math.Hypot(spec.OffsetI, spec.OffsetJ)
	}
	if math.IsNaN(center1) || math.IsNaN(center2) {
		return status.ErrArcSpecification, errArcNonRealCenter
	}

	// angularTravel is signed: theta grows counterclockwise, so a CW arc
	// travels in the negative direction. The run-time segmenter advances
	// theta by the signed per-segment delta, which is what keeps a G2 and
	// a G3 between the same two endpoints on opposite sides of the circle.
	thetaStart := theta(p1-center1, p2-center2)
	thetaEnd := theta(t1-center1, t2-center2)
	angularTravel := thetaEnd - thetaStart
	if spec.Clockwise {
		if angularTravel >= 0 {
			angularTravel -= 2 * math.Pi
		}
	} else {
		if angularTravel <= 0 {
			angularTravel += 2 * math.Pi
		}
	}

	linearTravel := axisValue(spec.Target, spec.AxisLinear) - axisValue(ps.Position, spec.AxisLinear)
	length := math.Hypot(angularTravel*radius, math.Abs(linearTravel))
	if length < cfg.MMPerArcSegment {
		return status.ArcTooShort, nil
	}

	segmentsByTime := math.Ceil(spec.Minutes * 60 * 1e6 / cfg.MinSegmentTimeUs)
	segmentsByLen := math.Ceil(length / cfg.MMPerArcSegment)
	segments := int(math.Min(segmentsByTime, segmentsByLen))
	if segments < 1 {
		segments = 1
	}

	b := ring.GetWrite()
	if b == nil {
		return status.BufferFullFatal, nil
	}
	b.Target = spec.Target
	b.Length = length
	b.Time = spec.Minutes
	b.Theta = thetaStart
	b.Radius = radius
	b.Center1 = center1
	b.Center2 = center2
	b.SegmentTheta = angularTravel / float64(segments)
	b.SegmentLinear = linearTravel / float64(segments)
	b.SegmentTime = spec.Minutes / float64(segments)
	b.Segments = segments
	b.SegmentCount = 0
	b.Axis1 = spec.Axis1
	b.Axis2 = spec.Axis2
	b.AxisLinear = spec.AxisLinear
	b.InitialVelocity = length / spec.Minutes
	b.TargetVelocity = length / spec.Minutes
	b.State = StateNew
	ring.QueueWrite(MoveArc)

	ps.Position = spec.Target
	return status.Ok, nil
}

func axisValue(v vector.Vector, ax vector.Axis) float64 {
	if ax == vector.NonAxis {
		return 0
	}
	return v[ax]
}
