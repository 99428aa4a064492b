// Package debounce coalesces bursts of calls into a single trailing signal.
package debounce

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Debouncer fires onQuiet once no Call has happened for the quiet period.
// Every Call re-arms the timer; Cancel drops a pending signal.
type Debouncer struct {
	mu       sync.Mutex
	clock    clock.Clock
	quiet    time.Duration
	onQuiet  func()
	timer    *clock.Timer
	gen      uint64
	lastCall time.Time
}

func New(clk clock.Clock, quiet time.Duration, onQuiet func()) *Debouncer {
	return &Debouncer{
		clock:   clk,
		quiet:   quiet,
		onQuiet: onQuiet,
	}
}

// Call records a call and re-arms the quiet timer. It reports whether this
// call opened a new burst.
func (d *Debouncer) Call() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	leading := d.timer == nil
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.lastCall = d.clock.Now()
	d.timer = d.clock.AfterFunc(d.quiet, func() { d.fire(gen) })
	return leading
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	// a newer Call or a Cancel superseded this timer
	if gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	if d.onQuiet != nil {
		d.onQuiet()
	}
}

// Cancel stops a pending timer without firing. It reports whether a burst was active.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	d.gen++
	return true
}

func (d *Debouncer) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) LastCall() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastCall
}
