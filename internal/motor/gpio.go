package motor

import (
	"fmt"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"github.com/tinyg-go/cncmotion/internal/vector"
)

// PinDriver abstracts step/dir pin output so the DDA can run against real
// hardware or an in-memory test double.
type PinDriver interface {
	SetDir(axis vector.Axis, level bool)
	Pulse(axis vector.Axis)
}

// GPIOPinDriver drives real step/dir pins via periph.io.
type GPIOPinDriver struct {
	step [vector.Axes]gpio.PinOut
	dir  [vector.Axes]gpio.PinOut
}

// PinNames names the two periph.io pins (e.g. "GPIO17") backing one axis.
type PinNames struct {
	Step string
	Dir  string
}

// NewGPIOPinDriver resolves one step and one dir pin per configured axis
// through gpioreg, the periph.io board-pin registry.
func NewGPIOPinDriver(names [vector.Axes]PinNames) (*GPIOPinDriver, error) {
	d := &GPIOPinDriver{}
	for i, n := range names {
		if n.Step == "" {
			continue
		}
		stepPin := gpioreg.ByName(n.Step)
		if stepPin == nil {
			return nil, errors.Errorf("gpio: unknown step pin %q for axis %d", n.Step, i)
		}
		dirPin := gpioreg.ByName(n.Dir)
		if dirPin == nil {
			return nil, errors.Errorf("gpio: unknown dir pin %q for axis %d", n.Dir, i)
		}
		if err := stepPin.Out(gpio.Low); err != nil {
			return nil, errors.Wrapf(err, "gpio: configure step pin %q", n.Step)
		}
		if err := dirPin.Out(gpio.Low); err != nil {
			return nil, errors.Wrapf(err, "gpio: configure dir pin %q", n.Dir)
		}
		d.step[i] = stepPin
		d.dir[i] = dirPin
	}
	return d, nil
}

// SetDir sets the direction pin for an axis.
func (d *GPIOPinDriver) SetDir(axis vector.Axis, level bool) {
	if d.dir[axis] == nil {
		return
	}
	d.dir[axis].Out(gpio.Level(level))
}

// Pulse raises then lowers the step pin, satisfying the >=1us pulse width
// requirement by relying on the two Out() calls' own latency;
// callers running at DDA rates well below the GPIO toggle ceiling don't
// need an explicit busy-wait here.
func (d *GPIOPinDriver) Pulse(axis vector.Axis) {
	if d.step[axis] == nil {
		return
	}
	d.step[axis].Out(gpio.High)
	d.step[axis].Out(gpio.Low)
}

// RecordingPinDriver is an in-memory PinDriver double for tests and
// headless operation: it counts pulses per axis instead of touching real
// pins.
type RecordingPinDriver struct {
	Dirs   [vector.Axes]bool
	Pulses [vector.Axes]int
}

func (d *RecordingPinDriver) SetDir(axis vector.Axis, level bool) { d.Dirs[axis] = level }
func (d *RecordingPinDriver) Pulse(axis vector.Axis)              { d.Pulses[axis]++ }

func (d *RecordingPinDriver) String() string {
	return fmt.Sprintf("pulses=%v dirs=%v", d.Pulses, d.Dirs)
}
