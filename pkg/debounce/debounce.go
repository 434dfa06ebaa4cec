package debounce

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into a single callback after a
// quiet window. At most one callback is pending at a time: each Schedule
// replaces whatever was queued before it, so the last writer wins.
type Debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	timer   *time.Timer
	pending func()
}

func New(window time.Duration) *Debouncer {
	if window <= 0 {
		window = time.Millisecond
	}
	return &Debouncer{window: window}
}

// Schedule queues fn to run once the window elapses, cancelling any
// previously scheduled callback.
func (d *Debouncer) Schedule(fn func()) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = fn
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Cancel drops the pending callback, reporting whether one was queued.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	had := d.pending != nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	return had
}

// Flush runs the pending callback immediately, if any. Used on shutdown so
// a queued write is not lost to the debounce window.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Pending reports whether a callback is currently queued.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}
