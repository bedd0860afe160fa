package realtime

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of events. The first event of a burst is
// flushed at most window later, together with everything that arrived in
// between (one event per table, latest wins). That window is the staleness
// bound of the change feed.
type Debouncer struct {
	window time.Duration
	flush  func([]Event)

	mu      sync.Mutex
	pending map[string]Event
	orden   []string
	timer   *time.Timer
	stopped bool
}

// NewDebouncer returns a debouncer calling flush on its own goroutine.
// A non-positive window flushes every event immediately.
func NewDebouncer(window time.Duration, flush func([]Event)) *Debouncer {
	return &Debouncer{window: window, flush: flush, pending: make(map[string]Event)}
}

// Add queues e for the next flush.
func (d *Debouncer) Add(e Event) {
	if d.window <= 0 {
		d.mu.Lock()
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			d.flush([]Event{e})
		}
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if _, ok := d.pending[e.Tabla]; !ok {
		d.orden = append(d.orden, e.Tabla)
	}
	d.pending[e.Tabla] = e
	if d.timer == nil {
		d.timer = time.AfterFunc(d.window, d.fire)
	}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped || len(d.orden) == 0 {
		d.timer = nil
		d.mu.Unlock()
		return
	}
	batch := make([]Event, 0, len(d.orden))
	for _, tabla := range d.orden {
		batch = append(batch, d.pending[tabla])
	}
	d.pending = make(map[string]Event)
	d.orden = nil
	d.timer = nil
	d.mu.Unlock()

	d.flush(batch)
}

// Stop discards pending events; later Adds are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = make(map[string]Event)
	d.orden = nil
}
