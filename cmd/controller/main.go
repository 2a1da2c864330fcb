package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"periph.io/x/host/v3"

	"github.com/tinyg-go/cncmotion/internal/canonical"
	"github.com/tinyg-go/cncmotion/internal/config"
	"github.com/tinyg-go/cncmotion/internal/diag"
	"github.com/tinyg-go/cncmotion/internal/gcode"
	"github.com/tinyg-go/cncmotion/internal/homing"
	"github.com/tinyg-go/cncmotion/internal/lineio"
	"github.com/tinyg-go/cncmotion/internal/motor"
	"github.com/tinyg-go/cncmotion/internal/planner"
	"github.com/tinyg-go/cncmotion/internal/sched"
	"github.com/tinyg-go/cncmotion/internal/segment"
	"github.com/tinyg-go/cncmotion/internal/status"
	"github.com/tinyg-go/cncmotion/internal/vector"
)

func main() {
	port := flag.String("port", "", "Serial device to read G-code from (empty: read stdin)")
	baud := flag.Int("baud", 115200, "Serial baud rate")
	configPath := flag.String("config", "", "Path to a persisted configuration store (empty: compiled defaults)")
	enableLogging := flag.Bool("log", false, "Enable diagnostic logging (disabled by default)")
	homeOnStart := flag.Bool("home-on-start", false, "Run the homing cycle before accepting G-code")
	useGPIO := flag.Bool("gpio", false, "Drive step/dir output through real periph.io GPIO pins instead of the in-memory recorder")
	flag.Parse()

	if flag.NFlag() == 0 && *port == "" {
		fmt.Println("Usage: controller [-port <device>] [-baud <rate>] [-config <path>] [-log] [-home-on-start] [-gpio]")
		fmt.Println("  -port <device>     Serial device to read G-code from (empty: read stdin)")
		fmt.Println("  -baud <rate>       Serial baud rate (default: 115200)")
		fmt.Println("  -config <path>     Path to a persisted configuration store")
		fmt.Println("  -log               Enable diagnostic logging (disabled by default)")
		fmt.Println("  -home-on-start     Run the homing cycle before accepting G-code")
		fmt.Println("  -gpio              Drive step/dir output through real periph.io GPIO pins")
	}

	cfgStore := loadConfig(*configPath)

	var logger *diag.Logger
	if *enableLogging {
		logger = diag.NewLogger(10_000)
	}
	console := golog.NewLogger("cncmotion")

	ring := planner.NewRing()
	ps := &planner.State{}
	machine := canonical.NewMachine(cfgStore, ring, ps)
	queue := motor.NewSegmentQueue(motor.DefaultQueueCapacity)
	pinDriver, err := newPinDriver(*useGPIO)
	if err != nil {
		fmt.Fprintf(os.Stderr, "controller: %v\n", err)
		os.Exit(1)
	}
	dda := motor.NewDDA(queue, pinDriver)
	for ax := 0; ax < vector.Axes; ax++ {
		dda.SetPolarity(vector.Axis(ax), cfgStore.Axes[ax].Polarity != 0)
	}
	runner := motor.NewRunner(dda, &cfgStore.Machine)
	runner.Start()
	gen := &segment.Generator{Ring: ring, PS: ps, Cfg: cfgStore, Queue: queue}
	gen.OnEnd(func() {
		machine.Reset()
	})

	signals := &sched.Signals{}
	limits := noLimitSwitches{}
	homingCycle := &homing.Cycle{Machine: machine, Ring: ring, Cfg: cfgStore, Limits: limits}

	dispatcher := &gcode.Dispatcher{
		Machine: machine,
		Home: func() status.Code {
			homingCycle.Start()
			return status.Ok
		},
	}

	var reader lineio.LineReader
	promptCapable := *port == ""
	if *port != "" {
		serialReader, err := lineio.OpenSerial(*port, *baud, signals)
		if err != nil {
			fmt.Fprintf(os.Stderr, "controller: %v\n", err)
			os.Exit(1)
		}
		reader = serialReader
	} else {
		reader = lineio.NewBufferedLineReader(os.Stdin, signals)
	}
	promptWriter := &lineio.PromptWriter{W: os.Stderr}

	startup := func() {
		if *homeOnStart || cfgStore.Machine.HomingMode == config.HomingAuto {
			homingCycle.Start()
		}
	}
	startup()

	restart := func() {
		dda.Kill()
		ring.Reset()
		machine.Reset()
		startup()
		console.Info("restarted")
	}

	trace := diag.NewTrace(4096)

	promptPending := true

	sc := sched.New(
		&sched.SignalContinuation{Flag: &signals.Limit, Action: func() status.Code {
			if !homingCycle.Active() {
				dda.Kill()
				ring.Reset()
				machine.Reset()
				console.Warn("limit switch tripped outside homing: motion stopped")
			}
			return status.Ok
		}},
		&sched.SignalContinuation{Flag: &signals.Kill, Action: func() status.Code {
			dda.Kill()
			ring.Reset()
			machine.Reset()
			console.Warn("kill received: motion stopped, input reset")
			return status.Ok
		}},
		&sched.SignalContinuation{Flag: &signals.Pause, Action: func() status.Code {
			dda.Pause()
			return status.Ok
		}},
		&sched.SignalContinuation{Flag: &signals.Resume, Action: func() status.Code {
			dda.Resume()
			return status.Ok
		}},
		sched.ContinuationFunc(gen.Dispatch),
		homingCycle,
		&promptContinuation{writer: promptWriter, capable: promptCapable, machine: machine, pending: &promptPending},
		&commandReader{reader: reader, ring: ring, dispatcher: dispatcher, cfg: cfgStore, console: console, logger: logger, trace: trace, signals: signals, queue: queue, restart: restart, promptPending: &promptPending},
	)

	final := sc.Run()

	runner.Stop()
	if logger != nil {
		logger.Close()
	}
	if final == status.Eof {
		os.Exit(0)
	}
	os.Exit(1)
}

func loadConfig(path string) *config.Store {
	if path == "" {
		return config.NewDefaultStore()
	}
	f, err := os.Open(path)
	if err != nil {
		return config.NewDefaultStore()
	}
	defer f.Close()
	store, err := config.Decode(f)
	if err != nil {
		return config.NewDefaultStore()
	}
	return store
}

// noLimitSwitches is the headless default: no physical limit switches are
// wired, so homing always proceeds by seek-timeout (max travel) rather
// than by a thrown switch. Boot-time GPIO wiring belongs to the host
// integration, not this binary.
type noLimitSwitches struct{}

func (noLimitSwitches) Thrown(_ vector.Axis) bool { return false }

// newPinDriver builds the DDA's step/dir output. The default in-memory
// recorder keeps the controller runnable headless; -gpio switches to
// real periph.io pins on the GPIO<2n>/GPIO<2n+1> step/dir convention
// for axis n.
func newPinDriver(useGPIO bool) (motor.PinDriver, error) {
	if !useGPIO {
		return &motor.RecordingPinDriver{}, nil
	}
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "controller: periph.io host init")
	}
	var names [vector.Axes]motor.PinNames
	for ax := 0; ax < vector.Axes; ax++ {
		names[ax] = motor.PinNames{
			Step: fmt.Sprintf("GPIO%d", 2*ax),
			Dir:  fmt.Sprintf("GPIO%d", 2*ax+1),
		}
	}
	return motor.NewGPIOPinDriver(names)
}
