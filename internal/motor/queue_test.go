package motor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSegmentQueueClampsCapacity(t *testing.T) {
	assert.Equal(t, 3, len(NewSegmentQueue(1).buf))
	assert.Equal(t, 8, len(NewSegmentQueue(20).buf))
	assert.Equal(t, 5, len(NewSegmentQueue(5).buf))
}

func TestSegmentQueuePushPopFIFO(t *testing.T) {
	q := NewSegmentQueue(3)
	require.True(t, q.Push(Segment{Kind: SegmentLine, TimerTicks: 1}))
	require.True(t, q.Push(Segment{Kind: SegmentDwell, TimerTicks: 2}))

	s1, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, SegmentLine, s1.Kind)

	s2, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, SegmentDwell, s2.Kind)

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestSegmentQueueFullRejectsPush(t *testing.T) {
	q := NewSegmentQueue(3)
	for i := 0; i < 3; i++ {
		require.True(t, q.Push(Segment{}))
	}
	assert.True(t, q.Full())
	assert.False(t, q.Push(Segment{}))
}

func TestSegmentQueueFlushDiscardsAll(t *testing.T) {
	q := NewSegmentQueue(3)
	q.Push(Segment{})
	q.Push(Segment{})
	q.Flush()
	assert.True(t, q.Empty())
	_, ok := q.Pop()
	assert.False(t, ok)
}
