package watch

import (
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Debouncer collects input change events and fires one callback after a
// quiet interval. Editors often rewrite several exported documents in one
// save, so the callback receives every distinct path seen since it last
// fired, sorted.
type Debouncer struct {
	interval time.Duration
	logger   *slog.Logger
	callback func(paths []string)

	mu       sync.Mutex
	timer    *time.Timer
	pending  map[string]struct{}
	stopped  bool
	inflight sync.WaitGroup
}

// NewDebouncer creates a debouncer that waits for interval of quiet before
// firing callback. A nil logger falls back to slog.Default.
func NewDebouncer(interval time.Duration, logger *slog.Logger, callback func(paths []string)) *Debouncer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Debouncer{
		interval: interval,
		logger:   logger,
		callback: callback,
		pending:  make(map[string]struct{}),
	}
}

// Trigger records a change of path and restarts the quiet interval.
// Triggers after Stop are ignored.
func (d *Debouncer) Trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending[path] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		if d.stopped {
			d.mu.Unlock()
			return
		}

		d.inflight.Add(1)
		d.mu.Unlock()

		defer d.inflight.Done()

		d.fire()
	})
}

func (d *Debouncer) fire() {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("debouncer callback panicked", slog.Any("error", r))
		}
	}()

	d.mu.Lock()
	paths := make([]string, 0, len(d.pending))

	for p := range d.pending {
		paths = append(paths, p)
	}

	clear(d.pending)
	d.mu.Unlock()

	if len(paths) == 0 {
		return
	}

	slices.Sort(paths)
	d.callback(paths)
}

// Stop cancels any pending callback, drops the collected paths and waits
// for a callback that is already running to return. It must not be called
// from the callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()

	d.stopped = true

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	clear(d.pending)
	d.mu.Unlock()

	d.inflight.Wait()
}
