package main

import (
	"fmt"
	"os"

	"github.com/edaniels/golog"

	"github.com/tinyg-go/cncmotion/internal/canonical"
	"github.com/tinyg-go/cncmotion/internal/config"
	"github.com/tinyg-go/cncmotion/internal/diag"
	"github.com/tinyg-go/cncmotion/internal/gcode"
	"github.com/tinyg-go/cncmotion/internal/lineio"
	"github.com/tinyg-go/cncmotion/internal/motor"
	"github.com/tinyg-go/cncmotion/internal/planner"
	"github.com/tinyg-go/cncmotion/internal/sched"
	"github.com/tinyg-go/cncmotion/internal/status"
	"github.com/tinyg-go/cncmotion/internal/vector"
)

// commandReader is the scheduler's lowest-priority stage: it only reads
// a new line when at least three planner buffers are free, then routes
// it by its leading character and dispatches G-code lines to the active
// parser.
type commandReader struct {
	reader     lineio.LineReader
	ring       *planner.Ring
	dispatcher *gcode.Dispatcher
	cfg        *config.Store
	console    golog.Logger
	logger     *diag.Logger
	trace      *diag.Trace
	signals    *sched.Signals
	queue      *motor.SegmentQueue
	restart    func()

	directDrive bool

	// promptPending is shared with promptContinuation: the reader sets
	// it back to true to request a fresh prompt after consuming a line.
	promptPending *bool
}

func (c *commandReader) Poll() status.Code {
	if c.trace != nil {
		c.trace.EndPass()
	}
	if !c.ring.BuffersFree(3) {
		return status.Again
	}

	line, code := c.reader.Gets()
	switch code {
	case status.Eof:
		// Input is done, but queued motion may not be: hold the loop open
		// until the planner ring and motor segment queue drain.
		if c.ring.IsBusy() || (c.queue != nil && !c.queue.Empty()) {
			return status.Again
		}
		return status.Eof
	case status.Again:
		return status.Noop
	case status.BufferFullNonFatal:
		fmt.Fprintln(os.Stderr, "? line too long, discarded")
		return status.Ok
	}

	if len(line) == 0 {
		return status.Noop
	}
	if c.promptPending != nil {
		*c.promptPending = true
	}

	return c.route(line)
}

// route selects the operation a line's leading character asks for:
// G-code and config lines fall through to their parsers, the
// single-character mode/signal commands act immediately.
func (c *commandReader) route(line string) status.Code {
	lead := upperByte(line[0])
	switch {
	case lead == '$':
		return c.handleConfigLine(line)
	case lead == '!':
		if c.signals != nil {
			c.signals.Kill.Store(true)
		}
		return status.Ok
	case lead == '@':
		if c.signals != nil {
			c.signals.Pause.Store(true)
		}
		return status.Ok
	case lead == '%':
		// A bare % resumes; a %-prefixed program delimiter line (as
		// emitted by most senders) is consumed without effect.
		if len(line) == 1 && c.signals != nil {
			c.signals.Resume.Store(true)
		}
		return status.Ok
	case lead == '\\':
		return c.handleGCodeLine(line[1:])
	case c.directDrive:
		return c.handleDirectDrive(line)
	case lead == 'D' && len(line) == 1:
		c.directDrive = true
		fmt.Fprintln(os.Stderr, "direct drive: axis words move the tool immediately; G returns to gcode")
		return status.Ok
	case lead == 'H' && len(line) == 1:
		fmt.Fprintln(os.Stderr, helpText)
		fmt.Fprintln(os.Stderr, config.FormatHelp())
		return status.Ok
	case lead == 'R' && len(line) == 1:
		if c.restart != nil {
			c.restart()
		}
		return status.Ok
	case (lead == 'T' || lead == 'U') && len(line) == 1:
		// Canned test G-code programs live outside this binary; nothing
		// is compiled in.
		fmt.Fprintln(os.Stderr, "? no test programs loaded")
		return status.Ok
	default:
		return c.handleGCodeLine(line)
	}
}

func (c *commandReader) handleGCodeLine(line string) status.Code {
	if len(line) == 0 {
		return status.Ok
	}
	words, parseCode, err := gcode.ParseLine(line)
	if err != nil {
		fmt.Fprintf(os.Stderr, "? %s: %s\n", parseCode, line)
		return status.Ok
	}
	dispCode, dispErr := c.dispatcher.Dispatch(words)
	if dispErr != nil && dispCode.IsError() {
		fmt.Fprintf(os.Stderr, "? %s: %s\n", dispCode, dispErr)
	}
	if c.trace != nil {
		c.trace.Record("gcode", dispCode.String())
	}
	if c.logger != nil {
		c.logger.Infof(diag.ComponentGCode, "dispatched %q -> %s", line, dispCode)
	}
	return status.Ok
}

// handleDirectDrive executes one direct-drive line: bare axis words (e.g.
// "X10 Y-5") jog the tool immediately in machine millimeters, relative to
// the current position, at traverse rates. A bare G hands control back to
// the G-code parser.
func (c *commandReader) handleDirectDrive(line string) status.Code {
	if len(line) == 1 && upperByte(line[0]) == 'G' {
		c.directDrive = false
		return status.Ok
	}
	words, parseCode, err := gcode.ParseLine(line)
	if err != nil {
		fmt.Fprintf(os.Stderr, "? %s: %s\n", parseCode, line)
		return status.Ok
	}
	m := c.dispatcher.Machine
	target := m.Model().Position
	moved := false
	for _, al := range []struct {
		letter byte
		axis   vector.Axis
	}{{'X', vector.X}, {'Y', vector.Y}, {'Z', vector.Z}, {'A', vector.A}, {'B', vector.B}, {'C', vector.C}} {
		if v, ok := words.Get(al.letter); ok {
			target[al.axis] += v
			moved = true
		}
	}
	if !moved {
		fmt.Fprintln(os.Stderr, "? direct drive: no axis words")
		return status.Ok
	}
	dCode, dErr := m.StraightTraverseMM(target)
	if dErr != nil && dCode.IsError() {
		fmt.Fprintf(os.Stderr, "? %s: %s\n", dCode, dErr)
	}
	return status.Ok
}

func upperByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

const helpText = `commands:
  G M N F Q ( % \ $  gcode and configuration
  D                  direct drive mode (G exits)
  H                  this help
  R                  restart (re-runs startup, including homing if configured)
  T U                run canned test program (none compiled in)
  !                  kill   @  pause   %  resume`

// handleConfigLine implements the "$" configuration surface:
// general/per-axis/all listings, mnemonic updates, help, and the
// persistent-storage dump, delegating the parsing to config.Store.
func (c *commandReader) handleConfigLine(line string) status.Code {
	out, err := c.cfg.HandleCLILine(line)
	if err != nil {
		fmt.Fprintf(os.Stderr, "? %s\n", err)
		return status.Ok
	}
	fmt.Fprintln(os.Stderr, out)
	return status.Ok
}

// promptContinuation writes the operator prompt once per idle pass when
// the input source is prompt-capable (interactive) and hasn't already
// prompted.
type promptContinuation struct {
	writer  *lineio.PromptWriter
	capable bool
	machine *canonical.Machine

	// pending is shared with commandReader: it starts true so we prompt
	// at boot, the reader sets it back to true once it consumes a line,
	// and this stage clears it once the prompt is printed.
	pending *bool
}

func (p *promptContinuation) Poll() status.Code {
	if !p.capable || p.pending == nil || !*p.pending {
		return status.Noop
	}
	m := p.machine.Model()
	units := "mm"
	if m.InchesMode {
		units = "in"
	}
	mode := "ready"
	switch m.ProgramFlow {
	case canonical.FlowStopped:
		mode = "stop"
	case canonical.FlowEnded:
		mode = "end"
	}
	p.writer.Prompt(mode, units)
	*p.pending = false
	return status.Ok
}
