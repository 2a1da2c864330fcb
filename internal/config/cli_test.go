package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinyg-go/cncmotion/internal/vector"
)

func TestCLIListGeneral(t *testing.T) {
	s := NewDefaultStore()
	out, err := s.HandleCLILine("$")
	require.NoError(t, err)
	assert.Contains(t, out, string(MnemMaxLinearJerk))
	assert.NotContains(t, out, "X"+string(MnemSeekRate))
}

func TestCLIListAxis(t *testing.T) {
	s := NewDefaultStore()
	out, err := s.HandleCLILine("$X")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "X"+string(MnemSeekRate)))
	assert.False(t, strings.Contains(out, string(MnemMaxLinearJerk)))
}

func TestCLIListAll(t *testing.T) {
	s := NewDefaultStore()
	out, err := s.HandleCLILine("$$")
	require.NoError(t, err)
	assert.Contains(t, out, string(MnemMaxLinearJerk))
	assert.Contains(t, out, "X"+string(MnemSeekRate))
	assert.Contains(t, out, "C"+string(MnemHomingBackoff))
}

func TestCLIUpdateAxisSetting(t *testing.T) {
	s := NewDefaultStore()
	out, err := s.HandleCLILine("$XFR900")
	require.NoError(t, err)
	assert.Contains(t, out, "900")
	got, err := s.Get(vector.X, MnemFeedRate)
	require.NoError(t, err)
	assert.Equal(t, 900.0, got)
	// Derived steps/s must follow the new rate.
	assert.InDelta(t, 900.0/60*s.Axes[vector.X].StepsPerUnit, s.Axes[vector.X].FeedSteps, 1e-6)
}

func TestCLIUpdateMachineSetting(t *testing.T) {
	s := NewDefaultStore()
	out, err := s.HandleCLILine("$JM1000")
	require.NoError(t, err)
	assert.Contains(t, out, "1000")
	got, err := s.Get(vector.NonAxis, MnemMaxLinearJerk)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, got)
}

func TestCLIHelp(t *testing.T) {
	s := NewDefaultStore()
	out, err := s.HandleCLILine("$h")
	require.NoError(t, err)
	assert.Equal(t, FormatHelp(), out)
}

func TestCLIPersistentDump(t *testing.T) {
	s := NewDefaultStore()
	out, err := s.HandleCLILine("$E")
	require.NoError(t, err)
	assert.Contains(t, out, "bytes")
}

func TestCLIBadSettingErrors(t *testing.T) {
	s := NewDefaultStore()
	_, err := s.HandleCLILine("$XQQ100")
	assert.Error(t, err)

	_, err = s.HandleCLILine("$XFRnotanumber")
	assert.Error(t, err)
}
