package places

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid values into a single call of fn with the latest one,
// fired after interval of quiet. Consecutive identical values are suppressed.
// fn also receives the generation it was scheduled under; Current reports whether
// that generation has since been superseded by a Push, Reset or Stop.
type Debouncer struct {
	interval time.Duration
	fn       func(value string, gen uint64)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	last    string
	hasLast bool
	stopped bool
}

// NewDebouncer creates a debouncer. An interval of zero fires fn on its own goroutine
// without delay.
func NewDebouncer(interval time.Duration, fn func(value string, gen uint64)) *Debouncer {
	return &Debouncer{interval: interval, fn: fn}
}

// Push schedules fn(value), replacing any pending value.
// Returns false when value repeats the previous one or the debouncer is stopped.
func (d *Debouncer) Push(value string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}
	if d.hasLast && d.last == value {
		return false
	}
	d.last = value
	d.hasLast = true

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		if d.stopped || gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		d.fn(value, gen)
	})
	return true
}

// Reset cancels any pending value and records value as the latest seen
func (d *Debouncer) Reset(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelLocked()
	d.last = value
	d.hasLast = true
}

// Pending reports whether a value is waiting to fire
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Current reports whether gen is still the latest scheduled generation
func (d *Debouncer) Current(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.stopped && gen == d.gen
}

// Stop cancels any pending value. Later pushes are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelLocked()
	d.stopped = true
}

func (d *Debouncer) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}
