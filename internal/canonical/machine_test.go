package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyg-go/cncmotion/internal/config"
	"github.com/tinyg-go/cncmotion/internal/planner"
	"github.com/tinyg-go/cncmotion/internal/status"
	"github.com/tinyg-go/cncmotion/internal/vector"
)

func newTestMachine() *Machine {
	cfg := config.NewDefaultStore()
	ring := planner.NewRing()
	ps := &planner.State{}
	return NewMachine(cfg, ring, ps)
}

func TestNewMachineStartsInAbsoluteMillimeterMode(t *testing.T) {
	m := newTestMachine()
	assert.True(t, m.Model().AbsoluteMode)
	assert.False(t, m.Model().InchesMode)
}

func TestUseLengthUnitsConvertsSubsequentMoves(t *testing.T) {
	m := newTestMachine()
	m.UseLengthUnits(config.UnitsInches)

	present := [vector.Axes]bool{vector.X: true}
	code, err := m.StraightTraverse(vector.Vector{vector.X: 1}, present)
	require.NoError(t, err)
	assert.Equal(t, status.Ok, code)
	assert.InDelta(t, 25.4, m.Model().Position[vector.X], 1e-9)
}

func TestIncrementalDistanceModeAccumulates(t *testing.T) {
	m := newTestMachine()
	m.SetDistanceMode(false)

	present := [vector.Axes]bool{vector.X: true}
	_, err := m.StraightTraverse(vector.Vector{vector.X: 10}, present)
	require.NoError(t, err)
	_, err = m.StraightTraverse(vector.Vector{vector.X: 10}, present)
	require.NoError(t, err)

	assert.InDelta(t, 20.0, m.Model().Position[vector.X], 1e-9)
}

func TestStraightFeedZeroLengthMoveIsSkip(t *testing.T) {
	m := newTestMachine()
	m.SetFeedRate(500)
	present := [vector.Axes]bool{vector.X: true}
	code, err := m.StraightFeed(vector.Vector{vector.X: 0}, present)
	assert.NoError(t, err)
	assert.Equal(t, status.ZeroLength, code)
}

func TestStraightFeedWithoutFeedRateErrors(t *testing.T) {
	m := newTestMachine()
	for i := range m.Cfg.Axes {
		m.Cfg.Axes[i].MaxFeedRate = 0
	}
	present := [vector.Axes]bool{vector.X: true}
	code, err := m.StraightFeed(vector.Vector{vector.X: 10}, present)
	assert.Error(t, err)
	assert.Equal(t, status.ErrMaxFeedExceeded, code)
}

// Position only mutates on Ok or Again:
// an error code must leave the authoritative position untouched so a
// retry (after, say, fixing the feed rate) starts from the same place.
func TestPositionUnchangedOnErrorCode(t *testing.T) {
	m := newTestMachine()
	for i := range m.Cfg.Axes {
		m.Cfg.Axes[i].MaxFeedRate = 0
	}
	before := m.Model().Position
	present := [vector.Axes]bool{vector.X: true}
	_, _ = m.StraightFeed(vector.Vector{vector.X: 10}, present)
	assert.Equal(t, before, m.Model().Position)
}

func TestSetAxisPositionDoesNotQueueMotion(t *testing.T) {
	m := newTestMachine()
	m.SetAxisPosition(vector.X, 42)
	assert.Equal(t, 42.0, m.Model().Position[vector.X])
	assert.False(t, m.Ring.IsBusy())
}

func TestSaveAndRestoreShadowRoundTrips(t *testing.T) {
	m := newTestMachine()
	m.SetFeedRate(123)
	m.SaveShadow()
	m.SetFeedRate(999)
	m.RestoreShadow()
	assert.Equal(t, 123.0, m.Model().FeedRate)
}

func TestResetRestoresCompiledDefaults(t *testing.T) {
	m := newTestMachine()
	m.SetFeedRate(500)
	m.UseLengthUnits(config.UnitsInches)
	m.Reset()
	assert.Equal(t, 0.0, m.Model().FeedRate)
	assert.False(t, m.Model().InchesMode)
}

func TestArcFeedQuarterCircle(t *testing.T) {
	m := newTestMachine()
	m.SetFeedRate(600)
	present := [vector.Axes]bool{vector.X: true, vector.Y: true}
	// G2 from (0,0) to (10,10) about (10,0): a clockwise quarter circle.
	code, err := m.ArcFeed(vector.Vector{vector.X: 10, vector.Y: 10}, present, 10, 0, 0, false, true)
	require.NoError(t, err)
	assert.Equal(t, status.Ok, code)
	assert.InDelta(t, 10.0, m.Model().Position[vector.X], 1e-9)
	assert.InDelta(t, 10.0, m.Model().Position[vector.Y], 1e-9)
}

func TestDwellQueuesOneBuffer(t *testing.T) {
	m := newTestMachine()
	code, err := m.Dwell(1.5)
	require.NoError(t, err)
	assert.Equal(t, status.Ok, code)
	assert.True(t, m.Ring.IsBusy())
}

func TestProgramEndSetsFlowEnded(t *testing.T) {
	m := newTestMachine()
	code := m.ProgramEnd()
	assert.Equal(t, status.Ok, code)
	assert.Equal(t, FlowEnded, m.Model().ProgramFlow)
}
