package motor

import (
	"sync"
	"time"

	"github.com/tinyg-go/cncmotion/internal/config"
)

// Runner is the simulated timer interrupt: a goroutine that drives
// DDA.Tick at the configured step rate, standing in for the hardware
// step timer. A wall-clock goroutine cannot wake 50,000
// times a second, so it wakes at a coarser interval and runs the ticks
// that interval covers in a batch; the DDA's arithmetic is identical
// either way, only the pulse timing granularity differs.
//
// The runner is also the reload path: when the DDA sits disarmed with
// segments waiting (the generator pushed while the queue was dry), the
// next wakeup loads, which is this simulation's version of the
// software-interrupt reload request.
type Runner struct {
	dda      *DDA
	wakeEach time.Duration
	perWake  int

	startOnce sync.Once
	stop      chan struct{}
	wg        sync.WaitGroup
}

// wakeHz is the runner's goroutine wakeup rate; the DDA tick rate is
// divided across wakeups in batches.
const wakeHz = 1000

// NewRunner builds a runner ticking at the machine's configured DDA
// frequency.
func NewRunner(dda *DDA, cfg *config.MachineConfig) *Runner {
	freq := TimerFrequencyHz(cfg)
	perWake := int(freq / wakeHz)
	if perWake < 1 {
		perWake = 1
	}
	return &Runner{
		dda:      dda,
		wakeEach: time.Second / wakeHz,
		perWake:  perWake,
		stop:     make(chan struct{}),
	}
}

// Start launches the tick goroutine. Safe to call once; Stop ends it.
func (r *Runner) Start() {
	r.startOnce.Do(func() {
		r.wg.Add(1)
		go r.loop()
	})
}

func (r *Runner) loop() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.wakeEach)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			if r.dda.NeedsLoad() {
				r.dda.Load()
			}
			for i := 0; i < r.perWake && r.dda.Armed(); i++ {
				r.dda.Tick()
			}
		}
	}
}

// Stop halts the tick goroutine and waits for it to exit.
func (r *Runner) Stop() {
	close(r.stop)
	r.wg.Wait()
}
