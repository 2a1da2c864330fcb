// Package gcode lexes and dispatches RS-274/NGC G-code lines into the
// canonical machine: a lexer normalizes letter/value words, then a
// dispatcher applies them in NIST modal-group order.
package gcode

import (
	"strconv"
	"strings"

	"github.com/tinyg-go/cncmotion/internal/status"
)

// Words is the normalized letter/value scratch from one parsed line.
// A line carries at most one value for most letters, but G
// and M words are modal-group selectors and a single line legitimately
// carries several (e.g. "G90 G21 G0 X1 Y1"), so those two accumulate as
// slices instead of overwriting.
type Words struct {
	Values  map[byte]float64
	Present map[byte]bool
	GCodes  []float64
	MCodes  []float64
}

func newWords() Words {
	return Words{Values: make(map[byte]float64, 8), Present: make(map[byte]bool, 8)}
}

// Get returns the value for letter l and whether it was present.
func (w Words) Get(l byte) (float64, bool) {
	v, ok := w.Present[l]
	if !ok {
		return 0, false
	}
	return w.Values[l], v
}

// HasG reports whether G-word value v appeared on the line.
func (w Words) HasG(v float64) bool {
	for _, g := range w.GCodes {
		if g == v {
			return true
		}
	}
	return false
}

// HasM reports whether M-word value v appeared on the line.
func (w Words) HasM(v float64) bool {
	for _, m := range w.MCodes {
		if m == v {
			return true
		}
	}
	return false
}

// stripComment removes one parenthesized comment span; G-code comments
// don't nest.
func stripComment(line string) string {
	start := strings.IndexByte(line, '(')
	if start < 0 {
		return line
	}
	end := strings.IndexByte(line[start:], ')')
	if end < 0 {
		return line[:start]
	}
	return line[:start] + line[start+end+1:]
}

// ParseLine lexes one line into Words: comments stripped,
// whitespace/control ignored, uppercase letter followed by a numeric value
// with an optional fractional code (e.g. "G61.1"). Unrecognized leading
// characters in a word position yield ParseExpectedCommandLetter; a
// malformed number yields ParseBadNumberFormat.
func ParseLine(line string) (Words, status.Code, error) {
	w := newWords()
	line = stripComment(line)

	i := 0
	n := len(line)
	for i < n {
		c := line[i]
		if c == ' ' || c == '\t' || c < 0x20 {
			i++
			continue
		}
		letter := upper(c)
		if letter < 'A' || letter > 'Z' {
			return w, status.ParseExpectedCommandLetter, errUnexpectedChar(c)
		}
		i++
		start := i
		for i < n && isNumberChar(line[i]) {
			i++
		}
		numStr := line[start:i]
		if numStr == "" {
			return w, status.ParseBadNumberFormat, errMissingValue(letter)
		}
		val, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return w, status.ParseBadNumberFormat, err
		}
		switch letter {
		case 'G':
			w.GCodes = append(w.GCodes, val)
		case 'M':
			w.MCodes = append(w.MCodes, val)
		case 'N':
			// Line numbers are accepted and ignored.
		default:
			w.Values[letter] = val
			w.Present[letter] = true
		}
	}
	return w, status.Ok, nil
}

func isNumberChar(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+'
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
