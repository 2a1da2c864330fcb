// Package status defines the single status-code enumeration shared across
// every layer of the controller, from the line reader up through the
// canonical machine. Low-level codes pass through unchanged; higher layers
// only add application-specific codes on top.
package status

// Code is a closed status enumeration. Reserved codes below must keep their
// exact names across layers: a planner function that "can't proceed right
// now" returns Again regardless of whether the caller is the scheduler, the
// segment generator, or the DDA loader.
type Code int

// Reserved codes, shared verbatim by every layer.
const (
	Ok Code = iota
	Err
	Again
	Noop
	Complete
	Eol
	Eof
	FileNotOpen
	FileSizeExceeded
	NoSuchDevice
	BufferEmpty
	BufferFullFatal
	BufferFullNonFatal
	Quit

	// Skip-move codes: not errors, the caller advances normally.
	ZeroLength
	ArcTooShort

	// Parse errors.
	ParseUnrecognizedCommand
	ParseExpectedCommandLetter
	ParseUnsupportedStatement
	ParseBadNumberFormat
	ParseModalGroupViolation
	ParseParameterNotFound
	ParseParameterUnderRange
	ParseParameterOverRange

	// Numeric / motion errors.
	ErrFloatingPoint
	ErrArcSpecification
	ErrConvergenceFailure

	// Limit errors.
	ErrMaxFeedExceeded
	ErrMaxSeekExceeded
	ErrMaxTravelExceeded
	ErrMaxSpindleExceeded
)

var names = map[Code]string{
	Ok:                         "ok",
	Err:                        "error",
	Again:                      "again",
	Noop:                       "noop",
	Complete:                   "complete",
	Eol:                        "eol",
	Eof:                        "eof",
	FileNotOpen:                "file-not-open",
	FileSizeExceeded:           "file-size-exceeded",
	NoSuchDevice:               "no-such-device",
	BufferEmpty:                "buffer-empty",
	BufferFullFatal:            "buffer-full-fatal",
	BufferFullNonFatal:         "buffer-full-non-fatal",
	Quit:                       "quit",
	ZeroLength:                 "zero-length-move",
	ArcTooShort:                "arc-too-short",
	ParseUnrecognizedCommand:   "unrecognized command",
	ParseExpectedCommandLetter: "expected command letter",
	ParseUnsupportedStatement:  "unsupported statement",
	ParseBadNumberFormat:       "bad number format",
	ParseModalGroupViolation:   "modal group violation",
	ParseParameterNotFound:     "parameter not found",
	ParseParameterUnderRange:   "parameter under range",
	ParseParameterOverRange:    "parameter over range",
	ErrFloatingPoint:           "floating point error",
	ErrArcSpecification:        "arc specification error",
	ErrConvergenceFailure:      "convergence failure",
	ErrMaxFeedExceeded:         "max feed rate exceeded",
	ErrMaxSeekExceeded:         "max seek rate exceeded",
	ErrMaxTravelExceeded:       "max travel exceeded",
	ErrMaxSpindleExceeded:      "max spindle speed exceeded",
}

func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return "unknown-status"
}

// IsError reports whether c represents a hard failure rather than
// backpressure (Again), idleness (Noop), or a deliberate skip.
func (c Code) IsError() bool {
	switch c {
	case Ok, Again, Noop, Complete, Eol, ZeroLength, ArcTooShort:
		return false
	default:
		return true
	}
}
