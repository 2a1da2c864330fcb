package gcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyg-go/cncmotion/internal/status"
)

func TestParseLineMultipleGWordsAccumulate(t *testing.T) {
	w, code, err := ParseLine("G90 G21 G0 X1 Y1")
	require.NoError(t, err)
	assert.Equal(t, status.Ok, code)
	assert.True(t, w.HasG(90))
	assert.True(t, w.HasG(21))
	assert.True(t, w.HasG(0))
	x, ok := w.Get('X')
	assert.True(t, ok)
	assert.Equal(t, 1.0, x)
}

func TestParseLineFractionalGCode(t *testing.T) {
	w, code, err := ParseLine("G61.1")
	require.NoError(t, err)
	assert.Equal(t, status.Ok, code)
	assert.True(t, w.HasG(61.1))
}

func TestParseLineStripsParenComment(t *testing.T) {
	w, code, err := ParseLine("G1 X10 (move to ten) Y20")
	require.NoError(t, err)
	assert.Equal(t, status.Ok, code)
	x, _ := w.Get('X')
	y, _ := w.Get('Y')
	assert.Equal(t, 10.0, x)
	assert.Equal(t, 20.0, y)
}

func TestParseLineLineNumberIgnored(t *testing.T) {
	w, code, err := ParseLine("N100 G1 X5")
	require.NoError(t, err)
	assert.Equal(t, status.Ok, code)
	_, hasN := w.Get('N')
	assert.False(t, hasN)
	assert.True(t, w.HasG(1))
}

func TestParseLineUnexpectedCharErrors(t *testing.T) {
	_, code, err := ParseLine("@G1 X1")
	assert.Error(t, err)
	assert.Equal(t, status.ParseExpectedCommandLetter, code)
}

func TestParseLineMissingValueErrors(t *testing.T) {
	_, code, err := ParseLine("G1 X")
	assert.Error(t, err)
	assert.Equal(t, status.ParseBadNumberFormat, code)
}

func TestParseLineLowercaseLetterNormalized(t *testing.T) {
	w, code, err := ParseLine("g1 x10")
	require.NoError(t, err)
	assert.Equal(t, status.Ok, code)
	assert.True(t, w.HasG(1))
	x, ok := w.Get('X')
	assert.True(t, ok)
	assert.Equal(t, 10.0, x)
}

func TestParseLineNegativeAndFractionalValues(t *testing.T) {
	w, _, err := ParseLine("G1 X-12.5 Y+3.25")
	require.NoError(t, err)
	x, _ := w.Get('X')
	y, _ := w.Get('Y')
	assert.Equal(t, -12.5, x)
	assert.Equal(t, 3.25, y)
}
