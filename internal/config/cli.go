package config

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tinyg-go/cncmotion/internal/vector"
)

// axisLetters maps the CLI's per-axis letter to vector.Axis, the same
// six-letter set the G-code parser uses for axis words.
var axisLetters = map[byte]vector.Axis{
	'X': vector.X, 'Y': vector.Y, 'Z': vector.Z,
	'A': vector.A, 'B': vector.B, 'C': vector.C,
}

var axisOrder = []byte{'X', 'Y', 'Z', 'A', 'B', 'C'}

// machineMnemonicOrder and axisMnemonicOrder fix the listing order for
// "$" / "$<axis>" / "$$" dumps. The axis order matches FormatHelp; the
// machine-wide order lists the jerk and segment settings before plane,
// units and path control.
var machineMnemonicOrder = []Mnemonic{
	MnemMaxLinearJerk, MnemAngularJerkUp, MnemAngularJerkLow,
	MnemMinSegmentTime, MnemMinSegmentLen, MnemAccelEnable,
	MnemHomingModeToken, MnemPlane, MnemUnits, MnemPathControl,
}

var axisMnemonicOrder = []Mnemonic{
	MnemSeekRate, MnemFeedRate, MnemStepAngle, MnemMicrosteps,
	MnemTravelPerRev, MnemTravelMax, MnemHomingEnable, MnemHomingRate,
	MnemHomingOffset, MnemHomingBackoff,
}

// HandleCLILine implements the whole "$" configuration surface:
//
//	$            list general (machine-wide) settings
//	$<axis>      list one axis's settings
//	$$           list everything
//	$<axis><mnemonic><value>   update one per-axis setting
//	$<mnemonic><value>         update one machine-wide setting
//	$h           print mnemonic help
//	$E           dump persistent storage (gob, base64-rendered for a text
//	             terminal) via EncodeBytes
//
// It returns the text to print to the operator (already newline-free at
// the end; callers add their own line break) and an error only for a
// malformed update line.
func (s *Store) HandleCLILine(line string) (string, error) {
	body := strings.TrimPrefix(line, "$")
	body = strings.TrimSpace(body)

	switch {
	case body == "":
		return s.listMachine(), nil
	case body == "$":
		return s.listAll(), nil
	case strings.EqualFold(body, "h"):
		return FormatHelp(), nil
	case strings.EqualFold(body, "E"):
		data, err := s.EncodeBytes()
		if err != nil {
			return "", errors.Wrap(err, "$E: encode store")
		}
		return fmt.Sprintf("%d bytes of persistent storage\n%s", len(data), base64.StdEncoding.EncodeToString(data)), nil
	}

	if axis, ok := axisLetters[upper(body[0])]; ok && len(body) == 1 {
		return s.listAxis(axis), nil
	}

	return s.applySetting(body)
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

// applySetting parses "$<axis><mnemonic><value>" or "$<mnemonic><value>"
// and writes the setting, recomputing derived fields via Store.Set.
func (s *Store) applySetting(body string) (string, error) {
	rest := body
	axis := vector.NonAxis
	if len(rest) > 0 {
		if ax, ok := axisLetters[upper(rest[0])]; ok && len(rest) > 2 {
			axis = ax
			rest = rest[1:]
		}
	}
	if len(rest) < 3 {
		return "", errors.Errorf("bad config line %q: expected <mnemonic><value>", body)
	}
	mnem := Mnemonic(strings.ToUpper(rest[:2]))
	valStr := strings.TrimSpace(rest[2:])
	value, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		return "", errors.Wrapf(err, "bad config value %q", valStr)
	}
	if err := s.Set(axis, mnem, value); err != nil {
		return "", errors.Wrapf(err, "bad config line %q", body)
	}
	got, _ := s.Get(axis, mnem)
	if axis == vector.NonAxis {
		return fmt.Sprintf("%s = %g", mnem, got), nil
	}
	return fmt.Sprintf("%c%s = %g", axisOrder[axis], mnem, got), nil
}

func (s *Store) listMachine() string {
	var b strings.Builder
	for _, m := range machineMnemonicOrder {
		v, _ := s.Get(vector.NonAxis, m)
		fmt.Fprintf(&b, "%s = %g\n", m, v)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Store) listAxis(ax vector.Axis) string {
	var b strings.Builder
	letter := axisOrder[ax]
	for _, m := range axisMnemonicOrder {
		v, _ := s.Get(ax, m)
		fmt.Fprintf(&b, "%c%s = %g\n", letter, m, v)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Store) listAll() string {
	var b strings.Builder
	b.WriteString(s.listMachine())
	for i := 0; i < vector.Axes; i++ {
		b.WriteString("\n")
		b.WriteString(s.listAxis(vector.Axis(i)))
	}
	return b.String()
}
