package motor

import (
	"sync"

	"github.com/tinyg-go/cncmotion/internal/config"
	"github.com/tinyg-go/cncmotion/internal/vector"
)

// axisRuntime is one motor's runtime state: polarity, the
// current segment's step count, and the DDA accumulator, which is
// deliberately retained across segments so phase error never
// accumulates at segment boundaries.
type axisRuntime struct {
	polarity bool
	steps    int64
	counter  int64
}

// DDA implements the fixed-rate step-pulse generator: a Bresenham-style
// accumulator per motor, loaded from the motor segment queue and advanced
// one tick at a time by Tick, standing in for the timer ISR.
// Tick and Load run on the simulated-ISR goroutine, while Kill, Pause,
// Resume, Armed and NeedsLoad are also called at runtime from other
// goroutines; mu serializes all of them.
type DDA struct {
	mu       sync.Mutex
	queue    *SegmentQueue
	driver   PinDriver
	axes     [vector.Axes]axisRuntime
	ticksLeft uint32
	ticksTotal uint32
	armed    bool
	paused   bool
	current  Segment
	onEmpty  func() // invoked when the queue runs dry and the DDA disarms
}

// NewDDA wires a DDA to its segment queue and pin driver.
func NewDDA(queue *SegmentQueue, driver PinDriver) *DDA {
	return &DDA{queue: queue, driver: driver}
}

// SetPolarity configures one motor's direction-inversion polarity.
func (d *DDA) SetPolarity(axis vector.Axis, polarity bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.axes[axis].polarity = polarity
}

// Load is the load step: dequeues one segment, copies
// per-motor step counts, sets direction pins from dir XOR polarity, and
// arms the tick countdown from TimerTicks (the segment's TimerPeriod is
// not read; the Runner ticks at a fixed rate). If the queue is empty the
// DDA disarms.
func (d *DDA) Load() {
	d.mu.Lock()
	defer d.mu.Unlock()
	seg, ok := d.queue.Pop()
	if !ok {
		d.armed = false
		if d.onEmpty != nil {
			d.onEmpty()
		}
		return
	}
	d.current = seg
	d.ticksTotal = seg.TimerTicks
	d.ticksLeft = seg.TimerTicks
	if seg.Kind == SegmentLine {
		for i := 0; i < vector.Axes; i++ {
			ax := vector.Axis(i)
			d.axes[i].steps = seg.PerMotor[i].Steps
			level := seg.PerMotor[i].Dir != d.axes[i].polarity
			if d.driver != nil {
				d.driver.SetDir(ax, level)
			}
		}
	}
	d.armed = true
}

// Tick advances every motor's accumulator by one timer period. Dwell
// and control segments just count down.
func (d *DDA) Tick() {
	d.mu.Lock()
	if !d.armed || d.paused {
		d.mu.Unlock()
		return
	}
	if d.current.Kind == SegmentLine {
		for i := 0; i < vector.Axes; i++ {
			a := &d.axes[i]
			a.counter += a.steps
			if a.counter > 0 {
				if d.driver != nil {
					d.driver.Pulse(vector.Axis(i))
				}
				a.counter -= int64(d.ticksTotal)
			}
		}
	}
	d.ticksLeft--
	needLoad := d.ticksLeft == 0
	d.mu.Unlock()
	if needLoad {
		d.Load()
	}
}

// OnEmpty registers a callback invoked when the DDA disarms because the
// queue ran dry. Reloading does not go through this hook: the Runner
// loads again once NeedsLoad reports queued work.
func (d *DDA) OnEmpty(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onEmpty = fn
}

// Armed reports whether the DDA is actively stepping: a segment is
// loaded and the timer isn't paused.
func (d *DDA) Armed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed && !d.paused
}

// Kill disarms the DDA and flushes the queue, safe to call from ISR
// context.
func (d *DDA) Kill() {
	d.mu.Lock()
	d.armed = false
	d.paused = false
	for i := range d.axes {
		d.axes[i].counter = 0
	}
	d.mu.Unlock()
	d.queue.Flush()
}

// Pause suspends the timer without discarding the queue or the segment
// in flight; Resume picks the segment back up mid-count, or triggers a
// reload if nothing is currently loaded.
func (d *DDA) Pause() {
	d.mu.Lock()
	d.paused = true
	d.mu.Unlock()
}

func (d *DDA) Resume() {
	d.mu.Lock()
	d.paused = false
	loaded := d.armed
	d.mu.Unlock()
	if !loaded {
		d.Load()
	}
}

// NeedsLoad reports whether the DDA is idle-but-willing: disarmed, not
// paused, with work waiting in the queue. The timer runner polls this as
// its stand-in for the "software interrupt requests a reload" path.
func (d *DDA) NeedsLoad() bool {
	d.mu.Lock()
	idle := !d.armed && !d.paused
	d.mu.Unlock()
	return idle && !d.queue.Empty()
}

// TimerFrequencyHz returns the configured DDA tick rate, defaulting to
// 50kHz when unset.
func TimerFrequencyHz(cfg *config.MachineConfig) float64 {
	if cfg.DDAFrequencyHz <= 0 {
		return 50_000
	}
	return cfg.DDAFrequencyHz
}
