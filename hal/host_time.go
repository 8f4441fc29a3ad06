package hal

import "time"

// DefaultHz is the timer rate used when none is configured.
const DefaultHz = 60

// hostPIT raises the timer line at a fixed rate.
type hostPIT struct {
	pic *hostPIC
	hz  int
	seq uint64

	last time.Time
	acc  time.Duration
}

func newHostPIT(pic *hostPIC, hz int) *hostPIT {
	if hz <= 0 {
		hz = DefaultHz
	}
	return &hostPIT{pic: pic, hz: hz}
}

// step raises one timer interrupt per period elapsed since the previous
// call. The first call raises exactly one.
func (t *hostPIT) step() {
	now := time.Now()
	if t.last.IsZero() {
		t.last = now
		t.acc = 0
		t.stepN(1)
		return
	}

	t.acc += now.Sub(t.last)
	t.last = now

	period := time.Second / time.Duration(t.hz)
	ticks := uint64(t.acc / period)
	if ticks == 0 {
		return
	}
	t.acc = t.acc % period
	t.stepN(ticks)
}

func (t *hostPIT) stepN(n uint64) {
	for i := uint64(0); i < n; i++ {
		t.seq++
		t.pic.raise(irqTimer)
	}
}
