package lineio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyg-go/cncmotion/internal/sched"
	"github.com/tinyg-go/cncmotion/internal/status"
)

func TestBufferedLineReaderReturnsCompleteLine(t *testing.T) {
	r := NewBufferedLineReader(strings.NewReader("G0 X1\n"), &sched.Signals{})
	line, code := r.Gets()
	require.Equal(t, status.Ok, code)
	assert.Equal(t, "G0 X1", line)
}

func TestBufferedLineReaderTreatsSemicolonAsTerminator(t *testing.T) {
	r := NewBufferedLineReader(strings.NewReader("G1 X1;G1 Y1\n"), &sched.Signals{})
	line, code := r.Gets()
	require.Equal(t, status.Ok, code)
	assert.Equal(t, "G1 X1", line)

	line, code = r.Gets()
	require.Equal(t, status.Ok, code)
	assert.Equal(t, "G1 Y1", line)
}

func TestBufferedLineReaderEofOnExhaustedInput(t *testing.T) {
	r := NewBufferedLineReader(strings.NewReader(""), &sched.Signals{})
	_, code := r.Gets()
	assert.Equal(t, status.Eof, code)
}

func TestBufferedLineReaderBlankLinesSkipped(t *testing.T) {
	r := NewBufferedLineReader(strings.NewReader("\n\nG0 X1\n"), &sched.Signals{})
	line, code := r.Gets()
	require.Equal(t, status.Ok, code)
	assert.Equal(t, "G0 X1", line)
}

// ^C/^S/^Q are trapped beneath the Gets contract and surfaced only as
// signal flags, never as line content.
func TestBufferedLineReaderTrapsSignalBytes(t *testing.T) {
	signals := &sched.Signals{}
	r := NewBufferedLineReader(strings.NewReader("\x03\x13\x11G0 X1\n"), signals)

	line, code := r.Gets()
	require.Equal(t, status.Ok, code)
	assert.Equal(t, "G0 X1", line)
	assert.True(t, signals.Kill.Load())
	assert.True(t, signals.Pause.Load())
	assert.True(t, signals.Resume.Load())
}

func TestBufferedLineReaderOverlongLineReportsBufferFull(t *testing.T) {
	long := strings.Repeat("X", maxLineLength+10) + "\n"
	r := NewBufferedLineReader(strings.NewReader(long), &sched.Signals{})
	_, code := r.Gets()
	assert.Equal(t, status.BufferFullNonFatal, code)
}

func TestPromptWriterFormatsModeAndUnits(t *testing.T) {
	var buf bytes.Buffer
	p := &PromptWriter{W: &buf}
	p.Prompt("ready", "mm")
	assert.Equal(t, "tinyg ready[mm] ok> ", buf.String())
}
