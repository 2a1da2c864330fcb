// Package lineio implements the character line interface and prompt: a
// non-blocking gets(), with kill/pause/resume/EOF trapped beneath it and
// surfaced as signal flags elsewhere, plus the operator-facing prompt.
package lineio

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/tarm/serial"

	"github.com/tinyg-go/cncmotion/internal/sched"
	"github.com/tinyg-go/cncmotion/internal/status"
)

// Line terminators CR, LF, ';', and NUL are equivalent.
func isTerminator(b byte) bool {
	return b == '\r' || b == '\n' || b == ';' || b == 0
}

// LineReader is the non-blocking gets contract:
// returning Ok with a complete line, Again if no full line is ready yet,
// Eof at end of input, or BufferFull if the line exceeds the buffer.
type LineReader interface {
	Gets() (line string, code status.Code)
}

// BufferedLineReader wraps any io.Reader (stdin, a test buffer) with the
// gets contract, for hardware-free operation and tests. It traps signal
// bytes (kill ^C, pause ^S, resume ^Q) beneath the interface, setting
// the shared sched.Signals flags instead of returning them as line
// content.
type BufferedLineReader struct {
	r       *bufio.Reader
	signals *sched.Signals
	partial []byte
}

// NewBufferedLineReader wraps r, reporting trapped signals on signals.
func NewBufferedLineReader(r io.Reader, signals *sched.Signals) *BufferedLineReader {
	return &BufferedLineReader{r: bufio.NewReader(r), signals: signals}
}

const maxLineLength = 256

// Gets implements LineReader. It never blocks: ReadByte on a bufio.Reader
// wrapping a non-blocking source returns immediately with io.EOF or
// whatever is buffered; callers wrap real hardware in a reader that
// behaves the same way.
func (b *BufferedLineReader) Gets() (string, status.Code) {
	for {
		c, err := b.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return "", status.Eof
			}
			return "", status.Again
		}
		switch c {
		case 0x03: // ^C kill
			if b.signals != nil {
				b.signals.Kill.Store(true)
			}
			continue
		case 0x13: // ^S pause
			if b.signals != nil {
				b.signals.Pause.Store(true)
			}
			continue
		case 0x11: // ^Q resume
			if b.signals != nil {
				b.signals.Resume.Store(true)
			}
			continue
		}
		if isTerminator(c) {
			if len(b.partial) == 0 {
				continue // blank line, keep reading
			}
			line := string(b.partial)
			b.partial = b.partial[:0]
			return line, status.Ok
		}
		b.partial = append(b.partial, c)
		if len(b.partial) > maxLineLength {
			b.partial = b.partial[:0]
			return "", status.BufferFullNonFatal
		}
	}
}

// SerialLineReader backs LineReader with a real UART/USB device.
type SerialLineReader struct {
	inner *BufferedLineReader
	port  *serial.Port
}

// OpenSerial opens a serial device at the given baud rate with a short
// read timeout so Gets never blocks the scheduler for long.
func OpenSerial(device string, baud int, signals *sched.Signals) (*SerialLineReader, error) {
	cfg := &serial.Config{Name: device, Baud: baud, ReadTimeout: 10 * time.Millisecond}
	port, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "lineio: open serial port %q", device)
	}
	return &SerialLineReader{inner: NewBufferedLineReader(port, signals), port: port}, nil
}

func (s *SerialLineReader) Gets() (string, status.Code) { return s.inner.Gets() }
func (s *SerialLineReader) Close() error                { return s.port.Close() }

// PromptWriter writes the `tinyg <mode>[<units>] ok> ` prompt to W. It
// does not decide when to prompt: the controller binary prompts only when
// reading stdin, not when reading a serial port.
type PromptWriter struct {
	W io.Writer
}

func (p *PromptWriter) Prompt(mode, units string) {
	fmt.Fprintf(p.W, "tinyg %s[%s] ok> ", mode, units)
}
