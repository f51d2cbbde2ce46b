package save

import (
	"log"
	"sync"
	"time"
)

// Writer coalesces save requests: each Request cancels any pending
// scheduled write and reschedules, so a burst of mutations lands as one
// write after the quiet period. The core stays single-threaded by handing
// the fully built record to Request; only the I/O happens off-loop.
type Writer struct {
	store  Store
	slot   string
	delay  time.Duration
	logger *log.Logger

	// onError surfaces write failures (e.g. quota) as a user-visible
	// notification; in-memory state is unaffected either way.
	onError func(error)

	mu      sync.Mutex
	timer   *time.Timer
	pending *Record
	closed  bool
}

func NewWriter(store Store, slot string, delay time.Duration, logger *log.Logger) *Writer {
	return &Writer{store: store, slot: slot, delay: delay, logger: logger}
}

func (w *Writer) OnError(fn func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = fn
}

// Request schedules rec for writing after the debounce delay, replacing any
// record already scheduled.
func (w *Writer) Request(rec Record) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending = &rec
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.fire)
}

func (w *Writer) fire() {
	w.mu.Lock()
	rec := w.pending
	w.pending = nil
	w.mu.Unlock()
	if rec != nil {
		w.write(*rec)
	}
}

// Flush writes any pending record immediately and cancels the timer.
func (w *Writer) Flush() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	rec := w.pending
	w.pending = nil
	w.mu.Unlock()
	if rec != nil {
		w.write(*rec)
	}
}

// Clear cancels any scheduled write and removes the persisted record
// (reset semantics).
func (w *Writer) Clear() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = nil
	w.mu.Unlock()
	return w.store.Clear(w.slot)
}

// Close flushes and rejects further requests. The backing store is owned by
// the caller and closed separately.
func (w *Writer) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.Flush()
}

func (w *Writer) write(rec Record) {
	b, err := rec.Encode()
	if err != nil {
		w.report(err)
		return
	}
	if err := w.store.Save(w.slot, b); err != nil {
		w.report(err)
		return
	}
}

func (w *Writer) report(err error) {
	if w.logger != nil {
		w.logger.Printf("save failed: %v", err)
	}
	w.mu.Lock()
	fn := w.onError
	w.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}
