package gcode

import "github.com/pkg/errors"

func errUnexpectedChar(c byte) error {
	return errors.Errorf("gcode: expected command letter, got %q", c)
}

func errMissingValue(letter byte) error {
	return errors.Errorf("gcode: word %q has no numeric value", letter)
}

var errModalGroupViolation = errors.New("gcode: conflicting motion-mode words on one line")
var errUnsupportedStatement = errors.New("gcode: unsupported statement")
