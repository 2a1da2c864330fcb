package motor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyg-go/cncmotion/internal/config"
	"github.com/tinyg-go/cncmotion/internal/vector"
)

func TestRunnerDrainsQueuedSegments(t *testing.T) {
	q := NewSegmentQueue(4)
	driver := &RecordingPinDriver{}
	d := NewDDA(q, driver)
	cfg := config.DefaultMachineConfig()

	seg := Segment{Kind: SegmentLine, TimerTicks: 50}
	seg.PerMotor[vector.X] = AxisSteps{Steps: 25, Dir: true}
	require.True(t, q.Push(seg))
	require.True(t, q.Push(seg))

	r := NewRunner(d, &cfg)
	r.Start()
	defer r.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if q.Empty() && !d.Armed() {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	assert.True(t, q.Empty(), "runner should have consumed every queued segment")
	assert.Greater(t, driver.Pulses[vector.X], 0)
}

func TestRunnerDoesNotReloadWhilePaused(t *testing.T) {
	q := NewSegmentQueue(4)
	d := NewDDA(q, &RecordingPinDriver{})
	cfg := config.DefaultMachineConfig()

	d.Pause()
	require.True(t, q.Push(Segment{Kind: SegmentLine, TimerTicks: 10}))

	r := NewRunner(d, &cfg)
	r.Start()
	time.Sleep(20 * time.Millisecond)
	r.Stop()

	assert.False(t, d.Armed(), "a paused DDA must stay disarmed")
	assert.False(t, q.Empty(), "a paused DDA must not consume the queue")
}
