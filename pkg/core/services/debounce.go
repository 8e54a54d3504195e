package services

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet window for search input.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer commits only the last value pushed within a quiet window
// (trailing edge). Every Push restarts the window.
type Debouncer[T any] struct {
	clock  Clock
	delay  time.Duration
	commit func(T)

	mu      sync.Mutex
	timer   Timer
	pending T
	armed   bool
	gen     uint64
	stopped bool
}

func NewDebouncer[T any](clock Clock, delay time.Duration, commit func(T)) *Debouncer[T] {
	if clock == nil {
		clock = SystemClock
	}
	return &Debouncer[T]{clock: clock, delay: delay, commit: commit}
}

// Push records v and restarts the window.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = v
	d.armed = true
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen) })
}

// fire runs on the timer. A timer whose Stop lost the race still lands
// here, so the generation check drops it.
func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen || !d.armed {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.armed = false
	d.timer = nil
	d.mu.Unlock()

	d.commit(v)
}

// Flush commits the pending value now, if any. It reports whether a value
// was committed.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if d.stopped || !d.armed {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	v := d.pending
	d.armed = false
	d.timer = nil
	d.mu.Unlock()

	d.commit(v)
	return true
}

// Pending reports whether a value is waiting for its window to close.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed
}

// Stop cancels any pending commit. Later pushes are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.armed = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
