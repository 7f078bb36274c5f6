// Package undo provides a linear, time-coalesced action timeline.
//
// A History records reversible actions and navigates them with Undo
// and Redo. Actions performed in rapid succession are coalesced into a
// single undo step: a periodic flush (default every 500ms) closes the
// currently accumulating group and commits it to the timeline. Callers
// that need a guaranteed separate step wrap their work in Isolate, and
// callers that need to skip recording entirely wrap it in WithSuspended.
//
// Mutations and undo navigation belong to a single logical owner
// thread, but the periodic flush may arrive from a timer goroutine
// when no marshaling queue is registered with the dispatch package, so
// the timeline state is serialized behind an internal mutex. Action
// callbacks always run outside that mutex.
package undo

import (
	"sync"
	"time"

	"github.com/go-drift/datatree/pkg/lifetime"
)

// DefaultInterval is the coalescing window for the periodic flush.
const DefaultInterval = 500 * time.Millisecond

// DefaultMaxEntries is the number of committed undo steps retained.
const DefaultMaxEntries = 30

// History is a linear undo/redo timeline.
type History struct {
	mu       sync.Mutex
	timeline []*group
	pending  *group

	// nextUndo indexes the entry Undo will reverse; nextRedo the entry
	// Redo will replay. They are always adjacent: nextRedo = nextUndo+1.
	nextUndo int
	nextRedo int

	interval    time.Duration
	maxEntries  int
	scheduler   Scheduler
	cancelTimer func()

	enabled      bool
	manual       bool
	synchronous  bool
	suspendDepth int
}

// Option configures a History.
type Option func(*History)

// WithInterval sets the coalescing window of the periodic flush.
func WithInterval(d time.Duration) Option {
	return func(h *History) { h.interval = d }
}

// WithMaxEntries sets the number of committed entries retained before
// the oldest are evicted.
func WithMaxEntries(n int) Option {
	return func(h *History) { h.maxEntries = n }
}

// WithScheduler replaces the timer mechanism behind the periodic
// flush. Tests use this to drive coalescing deterministically.
func WithScheduler(s Scheduler) Option {
	return func(h *History) { h.scheduler = s }
}

// WithoutTimer creates the history in manual-flush mode: actions are
// recorded and grouped, but nothing closes the group until Flush,
// Undo, or Redo is called. Synchronous mode (SetSynchronous) is the
// usual companion in tests.
func WithoutTimer() Option {
	return func(h *History) { h.manual = true }
}

// NewHistory creates an enabled history. Unless WithoutTimer is given,
// the periodic flush starts immediately.
func NewHistory(opts ...Option) *History {
	h := &History{
		interval:   DefaultInterval,
		maxEntries: DefaultMaxEntries,
		scheduler:  timerScheduler{},
		pending:    &group{},
		nextUndo:   -1,
		nextRedo:   0,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.enabled = true
	if !h.manual {
		h.startTimer()
	}
	return h
}

// Perform executes fn in the forward direction and, if it succeeds and
// recording is active, appends it to the accumulating group. The
// action holds only the given liveness token: if the target dies
// before the action is undone or redone, it is pruned instead of run.
//
// Returns whether fn reported success.
func (h *History) Perform(target lifetime.Liveness, fn func(isUndo bool) bool) bool {
	return h.PerformAction(&funcAction{target: target, fn: fn})
}

// PerformAction executes a prebuilt action forward and records it.
// The action runs outside the history's lock, so it may reenter the
// history (a listener performing a further edit, for example).
func (h *History) PerformAction(a Action) bool {
	h.mu.Lock()
	if h.synchronous {
		h.flushLocked()
	}
	h.mu.Unlock()

	if !a.Apply(false) {
		return false
	}

	h.mu.Lock()
	if h.enabled && h.suspendDepth == 0 {
		h.pending.add(a)
	}
	h.mu.Unlock()
	return true
}

// Undo flushes the pending group and reverses the entry at the undo
// cursor. Returns false if there is nothing to undo.
func (h *History) Undo() bool {
	return h.step(true)
}

// Redo flushes the pending group and replays the entry at the redo
// cursor. Returns false if there is nothing to redo.
func (h *History) Redo() bool {
	return h.step(false)
}

// step commits the pending group, claims the cursor entry, and moves
// both cursors before applying it, so the entry runs outside the lock.
func (h *History) step(isUndo bool) bool {
	h.mu.Lock()
	h.flushLocked()

	idx := h.nextRedo
	if isUndo {
		idx = h.nextUndo
	}
	if idx < 0 || idx >= len(h.timeline) {
		h.mu.Unlock()
		return false
	}
	entry := h.timeline[idx]

	delta := 1
	if isUndo {
		delta = -1
	}
	h.nextUndo += delta
	h.nextRedo += delta
	h.mu.Unlock()

	entry.Apply(isUndo)
	return true
}

// Flush commits the accumulating group to the timeline, closing the
// coalescing window. Committing destroys the redo branch: everything
// past the redo cursor is discarded. Returns whether anything was
// committed.
func (h *History) Flush() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.flushLocked()
}

func (h *History) flushLocked() bool {
	if h.pending.IsEmpty() {
		return false
	}

	if h.nextRedo < len(h.timeline) {
		h.timeline = h.timeline[:h.nextRedo]
	}
	h.timeline = append(h.timeline, h.pending)
	h.pending = &group{}

	if excess := len(h.timeline) - h.maxEntries; excess > 0 {
		h.timeline = append([]*group{}, h.timeline[excess:]...)
	}

	h.nextUndo = len(h.timeline) - 1
	h.nextRedo = len(h.timeline)
	return true
}

// BeginNewTransaction forces the current group to close so that
// subsequent actions start a fresh undo step. It is a synonym for
// Flush.
func (h *History) BeginNewTransaction() {
	h.Flush()
}

// SetEnabled turns the history on or off. Enabling opens a fresh
// group and starts the periodic flush. Disabling stops the flush,
// discards the pending group, and clears the entire timeline: all
// history is lost, this is not a pause.
func (h *History) SetEnabled(enabled bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.enabled == enabled {
		return
	}
	if enabled {
		h.enabled = true
		h.pending = &group{}
		if !h.manual {
			h.startTimerLocked()
		}
	} else {
		h.enabled = false
		h.stopTimerLocked()
		h.pending = &group{}
		h.timeline = nil
		h.nextUndo = -1
		h.nextRedo = 0
	}
}

// SetSynchronous toggles synchronous mode: each Perform flushes first,
// so every action becomes its own undo step. Useful outside a UI loop
// and in tests.
func (h *History) SetSynchronous(synchronous bool) {
	h.mu.Lock()
	h.synchronous = synchronous
	h.mu.Unlock()
}

// Suspend pauses recording until the returned resume function is
// called. Actions performed while suspended still execute but leave no
// trace in the timeline. Suspension nests: recording resumes only when
// every resume function has run.
func (h *History) Suspend() (resume func()) {
	h.mu.Lock()
	h.suspendDepth++
	h.mu.Unlock()
	released := false
	return func() {
		h.mu.Lock()
		if !released {
			released = true
			h.suspendDepth--
		}
		h.mu.Unlock()
	}
}

// WithSuspended runs fn with recording suspended, restoring the
// previous state even if fn panics. This is how callers execute
// actions as if no history were bound at all.
func (h *History) WithSuspended(fn func()) {
	resume := h.Suspend()
	defer resume()
	fn()
}

// Suspended reports whether recording is currently paused.
func (h *History) Suspended() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.suspendDepth > 0
}

// Isolate flushes before and after fn so the enclosed actions form
// their own undo step regardless of the coalescing window.
func (h *History) Isolate(fn func()) {
	h.Flush()
	defer h.Flush()
	fn()
}

// CanUndo reports whether Undo would do anything. The pending group
// counts: it would be flushed and then undone.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.pending.IsEmpty() || (h.nextUndo >= 0 && h.nextUndo < len(h.timeline))
}

// CanRedo reports whether Redo would do anything.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pending.IsEmpty() && h.nextRedo < len(h.timeline)
}

// Len returns the number of committed entries in the timeline.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.timeline)
}

// Close stops the periodic flush without touching the timeline. Call
// it when the history is no longer needed.
func (h *History) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopTimerLocked()
}

func (h *History) startTimer() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.startTimerLocked()
}

func (h *History) startTimerLocked() {
	if h.cancelTimer != nil || h.scheduler == nil {
		return
	}
	h.cancelTimer = h.scheduler.Every(h.interval, func() { h.Flush() })
}

func (h *History) stopTimerLocked() {
	if h.cancelTimer != nil {
		h.cancelTimer()
		h.cancelTimer = nil
	}
}
