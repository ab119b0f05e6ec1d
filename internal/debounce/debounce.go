// Package debounce coalesces bursts of triggers into a single trailing call.
//
// Each Trigger cancels any pending call and schedules a new one after the
// quiet window. Only the last trigger of a burst results in a call:
//
//	d := debounce.New(500*time.Millisecond, refresh)
//	d.Trigger() // t=0ms
//	d.Trigger() // t=100ms, supersedes the first
//	d.Trigger() // t=200ms, supersedes the second
//	// refresh runs once at t=700ms
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs fn once the window has elapsed since the last Trigger.
type Debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	fn      func()
	timer   *time.Timer
	gen     uint64 // bumped on every schedule/cancel so stale timers do nothing
	stopped bool
}

// New creates a Debouncer. A non-positive window still defers fn to a timer
// goroutine, it just fires immediately.
func New(window time.Duration, fn func()) *Debouncer {
	if window < 0 {
		window = 0
	}
	return &Debouncer{window: window, fn: fn}
}

// Window returns the quiet period.
func (d *Debouncer) Window() time.Duration {
	return d.window
}

// Trigger schedules fn after the window, cancelling any pending call.
// It reports whether a pending call was superseded.
func (d *Debouncer) Trigger() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}

	superseded := d.cancelLocked()
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.window, func() { d.fire(gen) })
	return superseded
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Flush runs a pending call right away on the caller's goroutine.
// It reports whether there was anything to flush.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.stopped || !d.cancelLocked() {
		d.mu.Unlock()
		return false
	}
	d.mu.Unlock()

	d.fn()
	return true
}

// Cancel drops a pending call without running it.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelLocked()
}

// Stop cancels any pending call and makes later Triggers no-ops.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fn()
}

// cancelLocked stops the pending timer. Caller must hold mu.
func (d *Debouncer) cancelLocked() bool {
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	d.gen++
	return true
}
