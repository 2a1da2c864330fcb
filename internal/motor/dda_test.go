package motor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyg-go/cncmotion/internal/vector"
)

func TestDDALoadArmsFromQueuedSegment(t *testing.T) {
	q := NewSegmentQueue(3)
	driver := &RecordingPinDriver{}
	d := NewDDA(q, driver)

	seg := Segment{Kind: SegmentLine, TimerTicks: 10}
	seg.PerMotor[vector.X] = AxisSteps{Steps: 4, Dir: true}
	require.True(t, q.Push(seg))

	d.Load()
	assert.True(t, d.Armed())
}

func TestDDALoadOnEmptyQueueDisarmsAndCallsHook(t *testing.T) {
	q := NewSegmentQueue(3)
	driver := &RecordingPinDriver{}
	d := NewDDA(q, driver)

	called := false
	d.OnEmpty(func() { called = true })
	d.Load()

	assert.False(t, d.Armed())
	assert.True(t, called)
}

// The DDA accumulator is retained across segments so phase error never
// resets at a segment boundary; pulsing across two small
// segments should still produce the same total pulse count as one
// combined segment covering the same step/tick ratio.
func TestDDAAccumulatorPhaseRetainedAcrossSegments(t *testing.T) {
	q := NewSegmentQueue(4)
	driver := &RecordingPinDriver{}
	d := NewDDA(q, driver)

	seg := Segment{Kind: SegmentLine, TimerTicks: 4}
	seg.PerMotor[vector.X] = AxisSteps{Steps: 3, Dir: true}
	require.True(t, q.Push(seg))
	require.True(t, q.Push(seg))

	d.Load()
	for i := 0; i < 8; i++ {
		d.Tick()
	}

	// Two 3-in-4 segments back to back: exact step count depends on the
	// Bresenham rounding, but total pulses must be nonzero and must not
	// exceed the naive upper bound of 3 steps per segment.
	assert.Greater(t, driver.Pulses[vector.X], 0)
	assert.LessOrEqual(t, driver.Pulses[vector.X], 6)
}

func TestDDASetPolarityInvertsDirectionLevel(t *testing.T) {
	q := NewSegmentQueue(3)
	driver := &RecordingPinDriver{}
	d := NewDDA(q, driver)
	d.SetPolarity(vector.X, true)

	seg := Segment{Kind: SegmentLine, TimerTicks: 10}
	seg.PerMotor[vector.X] = AxisSteps{Steps: 1, Dir: true}
	require.True(t, q.Push(seg))
	d.Load()

	// dir(true) XOR polarity(true) = false.
	assert.False(t, driver.Dirs[vector.X])
}

func TestDDAKillDisarmsAndFlushesQueue(t *testing.T) {
	q := NewSegmentQueue(3)
	driver := &RecordingPinDriver{}
	d := NewDDA(q, driver)

	seg := Segment{Kind: SegmentLine, TimerTicks: 10}
	require.True(t, q.Push(seg))
	d.Load()
	require.True(t, d.Armed())

	require.True(t, q.Push(Segment{Kind: SegmentLine, TimerTicks: 5}))
	d.Kill()

	assert.False(t, d.Armed())
	assert.True(t, q.Empty())
}

// Pausing mid-segment must not discard the in-flight segment: resume
// continues the same countdown instead of loading the next segment.
func TestDDAPauseMidSegmentResumesWithoutSkipping(t *testing.T) {
	q := NewSegmentQueue(4)
	driver := &RecordingPinDriver{}
	d := NewDDA(q, driver)

	first := Segment{Kind: SegmentLine, TimerTicks: 10}
	first.PerMotor[vector.X] = AxisSteps{Steps: 10, Dir: true}
	second := Segment{Kind: SegmentLine, TimerTicks: 10}
	require.True(t, q.Push(first))
	require.True(t, q.Push(second))

	d.Load()
	for i := 0; i < 4; i++ {
		d.Tick()
	}
	d.Pause()
	d.Tick() // must be a no-op while paused
	pulsesAtPause := driver.Pulses[vector.X]

	d.Resume()
	assert.Equal(t, pulsesAtPause, driver.Pulses[vector.X])
	for i := 0; i < 6; i++ {
		d.Tick()
	}

	// The first segment's 10 steps all landed; the second is now loaded.
	assert.Equal(t, 10, driver.Pulses[vector.X])
	assert.True(t, q.Empty())
}

func TestDDAPauseResumeReloadsWhenIdle(t *testing.T) {
	q := NewSegmentQueue(3)
	driver := &RecordingPinDriver{}
	d := NewDDA(q, driver)

	seg := Segment{Kind: SegmentLine, TimerTicks: 10}
	require.True(t, q.Push(seg))
	d.Load()
	require.True(t, d.Armed())
	// Run the segment out so the DDA disarms with an empty queue.
	for i := 0; i < 10; i++ {
		d.Tick()
	}
	require.False(t, d.Armed())

	d.Pause()
	assert.False(t, d.Armed())

	require.True(t, q.Push(Segment{Kind: SegmentLine, TimerTicks: 10}))
	d.Resume()
	assert.True(t, d.Armed())
}
