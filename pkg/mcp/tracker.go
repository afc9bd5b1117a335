package mcp

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Outcome is what a tracked request's waiter channel eventually receives:
// a decoded result on success, or an error on failure/timeout/cancellation.
type Outcome struct {
	Result json.RawMessage
	Err    error
}

type pendingRequest struct {
	method string
	waiter chan Outcome
	timer  *time.Timer
}

// TrackerStats is a snapshot of a Tracker's lifetime counters.
type TrackerStats struct {
	Tracked   int64
	Completed int64
	Failed    int64
	Cancelled int64
	TimedOut  int64
}

// Tracker allocates strictly increasing request IDs starting at 1 and
// correlates each with a one-shot waiter channel, guaranteeing that
// exactly one of Complete, Fail, Cancel, or a request's own timeout ever
// delivers an Outcome for a given ID (spec §4.7).
type Tracker struct {
	nextID atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]*pendingRequest

	tracked   atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	cancelled atomic.Int64
	timedOut  atomic.Int64
}

// NewTracker constructs an empty Tracker. IDs start at 1.
func NewTracker() *Tracker {
	return &Tracker{pending: make(map[uint64]*pendingRequest)}
}

// Track allocates a new request ID, arms a timeout timer, and returns the
// ID and a receive-only channel that will carry exactly one Outcome.
func (t *Tracker) Track(method string, timeout time.Duration) (uint64, <-chan Outcome) {
	id := t.nextID.Add(1)
	waiter := make(chan Outcome, 1)
	entry := &pendingRequest{method: method, waiter: waiter}

	t.mu.Lock()
	t.pending[id] = entry
	t.mu.Unlock()

	if timeout > 0 {
		entry.timer = time.AfterFunc(timeout, func() {
			if e, ok := t.remove(id); ok {
				t.timedOut.Add(1)
				deliver(e.waiter, Outcome{Err: NewRequestTimeoutError(e.method)})
			}
		})
	}

	t.tracked.Add(1)
	return id, waiter
}

func (t *Tracker) remove(id uint64) (*pendingRequest, bool) {
	t.mu.Lock()
	e, ok := t.pending[id]
	if ok {
		delete(t.pending, id)
	}
	t.mu.Unlock()
	return e, ok
}

func deliver(waiter chan Outcome, o Outcome) {
	waiter <- o
	close(waiter)
}

// Complete delivers a successful result to the request identified by id.
// It reports false if id is unknown (already completed, failed, cancelled,
// timed out, or never tracked).
func (t *Tracker) Complete(id uint64, result json.RawMessage) bool {
	e, ok := t.remove(id)
	if !ok {
		return false
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	t.completed.Add(1)
	deliver(e.waiter, Outcome{Result: result})
	return true
}

// Fail delivers err to the request identified by id. It reports false if
// id is unknown.
func (t *Tracker) Fail(id uint64, err error) bool {
	e, ok := t.remove(id)
	if !ok {
		return false
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	t.failed.Add(1)
	deliver(e.waiter, Outcome{Err: err})
	return true
}

// Cancel removes the request identified by id and delivers a
// request-cancelled error to its waiter. It reports false if id is
// unknown.
func (t *Tracker) Cancel(id uint64) bool {
	e, ok := t.remove(id)
	if !ok {
		return false
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	t.cancelled.Add(1)
	deliver(e.waiter, Outcome{Err: NewRequestCancelledError(e.method)})
	return true
}

// FailAll delivers err to every currently outstanding request, for use
// when the underlying transport dies with requests still in flight (spec
// §4.8's bulk-fail transition).
func (t *Tracker) FailAll(err error) int {
	t.mu.Lock()
	entries := make([]*pendingRequest, 0, len(t.pending))
	for id, e := range t.pending {
		entries = append(entries, e)
		delete(t.pending, id)
	}
	t.mu.Unlock()

	for _, e := range entries {
		if e.timer != nil {
			e.timer.Stop()
		}
		t.failed.Add(1)
		deliver(e.waiter, Outcome{Err: err})
	}
	return len(entries)
}

// Pending reports how many requests are currently outstanding.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Stats returns a snapshot of the tracker's lifetime counters.
func (t *Tracker) Stats() TrackerStats {
	return TrackerStats{
		Tracked:   t.tracked.Load(),
		Completed: t.completed.Load(),
		Failed:    t.failed.Load(),
		Cancelled: t.cancelled.Load(),
		TimedOut:  t.timedOut.Load(),
	}
}
