package undo

import (
	"testing"
	"time"

	"github.com/go-drift/datatree/pkg/lifetime"
	treetest "github.com/go-drift/datatree/pkg/testing"
)

// counter is a trivial undoable target: each action adds or subtracts.
type counter struct {
	value int
	life  *lifetime.Lifetime
}

func newCounter() *counter {
	return &counter{life: lifetime.New()}
}

func (c *counter) add(h *History, delta int) bool {
	return h.Perform(c.life, func(isUndo bool) bool {
		if isUndo {
			c.value -= delta
		} else {
			c.value += delta
		}
		return true
	})
}

func newManualHistory(opts ...Option) *History {
	return NewHistory(append([]Option{WithoutTimer()}, opts...)...)
}

func TestPerform_ExecutesForward(t *testing.T) {
	h := newManualHistory()
	c := newCounter()
	if !c.add(h, 5) {
		t.Fatal("perform should report success")
	}
	if c.value != 5 {
		t.Fatalf("value = %d, want 5", c.value)
	}
}

func TestUndoRedo_RoundTrip(t *testing.T) {
	h := newManualHistory()
	c := newCounter()
	c.add(h, 5)
	c.add(h, 3)

	if !h.Undo() {
		t.Fatal("undo should succeed")
	}
	if c.value != 0 {
		t.Fatalf("after undo of coalesced group, value = %d, want 0", c.value)
	}
	if !h.Redo() {
		t.Fatal("redo should succeed")
	}
	if c.value != 8 {
		t.Fatalf("after redo, value = %d, want 8", c.value)
	}
}

func TestUndo_NothingToDo(t *testing.T) {
	h := newManualHistory()
	if h.Undo() {
		t.Fatal("undo on empty history should return false")
	}
	if h.Redo() {
		t.Fatal("redo on empty history should return false")
	}
}

func TestSynchronousMode_EachActionIsOwnStep(t *testing.T) {
	h := newManualHistory()
	h.SetSynchronous(true)
	c := newCounter()
	c.add(h, 1)
	c.add(h, 2)
	c.add(h, 4)

	h.Undo()
	if c.value != 3 {
		t.Fatalf("after one undo, value = %d, want 3", c.value)
	}
	h.Undo()
	if c.value != 1 {
		t.Fatalf("after two undos, value = %d, want 1", c.value)
	}
	h.Redo()
	if c.value != 3 {
		t.Fatalf("after redo, value = %d, want 3", c.value)
	}
}

func TestFlush_TruncatesRedoBranch(t *testing.T) {
	h := newManualHistory()
	h.SetSynchronous(true)
	c := newCounter()
	c.add(h, 1)
	c.add(h, 2)
	h.Undo() // value back to 1, redo branch holds +2

	c.add(h, 8) // destroys the redo branch
	if h.Redo() {
		t.Fatal("redo branch should have been discarded")
	}
	if c.value != 9 {
		t.Fatalf("value = %d, want 9", c.value)
	}
	h.Undo()
	if c.value != 1 {
		t.Fatalf("after undo, value = %d, want 1", c.value)
	}
}

func TestTimeline_EvictsOldestBeyondCap(t *testing.T) {
	const limit = 5
	h := newManualHistory(WithMaxEntries(limit))
	h.SetSynchronous(true)
	c := newCounter()
	for i := 0; i < limit+5; i++ {
		c.add(h, 1)
	}
	h.Flush()

	if h.Len() > limit {
		t.Fatalf("timeline length = %d, want <= %d", h.Len(), limit)
	}

	undos := 0
	for h.Undo() {
		undos++
	}
	if undos != limit {
		t.Fatalf("undo steps = %d, want %d", undos, limit)
	}
	// The oldest 5 edits are unrecoverable.
	if c.value != 5 {
		t.Fatalf("value after exhausting undo = %d, want 5", c.value)
	}
}

func TestSuspend_SkipsRecording(t *testing.T) {
	h := newManualHistory()
	c := newCounter()
	c.add(h, 1)

	h.WithSuspended(func() {
		c.add(h, 10)
	})
	if c.value != 11 {
		t.Fatalf("suspended action should still execute, value = %d", c.value)
	}

	h.Undo()
	// Only the recorded +1 reverses; the suspended +10 stays.
	if c.value != 10 {
		t.Fatalf("after undo, value = %d, want 10", c.value)
	}
}

func TestSuspend_Nests(t *testing.T) {
	h := newManualHistory()
	resumeOuter := h.Suspend()
	resumeInner := h.Suspend()
	resumeInner()
	if !h.Suspended() {
		t.Fatal("outer suspension should still hold")
	}
	resumeInner() // double resume must not unsuspend the outer scope
	if !h.Suspended() {
		t.Fatal("double resume should be a no-op")
	}
	resumeOuter()
	if h.Suspended() {
		t.Fatal("all scopes released, recording should resume")
	}
}

func TestIsolate_SeparatesUndoSteps(t *testing.T) {
	h := newManualHistory()
	c := newCounter()
	c.add(h, 1)
	h.Isolate(func() {
		c.add(h, 2)
	})
	c.add(h, 4)
	h.Flush()

	if h.Len() != 3 {
		t.Fatalf("timeline entries = %d, want 3", h.Len())
	}
	h.Undo()
	if c.value != 3 {
		t.Fatalf("after first undo, value = %d, want 3", c.value)
	}
	h.Undo()
	if c.value != 1 {
		t.Fatalf("after second undo, value = %d, want 1", c.value)
	}
}

func TestSetEnabled_FalseClearsEverything(t *testing.T) {
	h := newManualHistory()
	c := newCounter()
	c.add(h, 1)
	h.Flush()
	c.add(h, 2)

	h.SetEnabled(false)
	if h.Undo() {
		t.Fatal("disabled history should have nothing to undo")
	}
	if h.Len() != 0 {
		t.Fatalf("timeline length = %d, want 0", h.Len())
	}

	// Actions still execute while disabled, but are not recorded.
	c.add(h, 4)
	if c.value != 7 {
		t.Fatalf("value = %d, want 7", c.value)
	}
	h.Flush()
	if h.Len() != 0 {
		t.Fatal("disabled history should not accumulate")
	}

	h.SetEnabled(true)
	c.add(h, 8)
	h.Flush()
	if h.Len() != 1 {
		t.Fatalf("re-enabled history should record, length = %d", h.Len())
	}
}

func TestDeadTarget_ActionPruned(t *testing.T) {
	h := newManualHistory()
	h.SetSynchronous(true)
	c := newCounter()
	c.add(h, 1)
	c.add(h, 2)

	c.life.End()
	if h.Undo() {
		// The entry exists but every child action is dead; the group
		// prunes them on traversal and the value stays put.
	}
	if c.value != 3 {
		t.Fatalf("dead target must not be touched, value = %d", c.value)
	}
}

func TestCoalescingWindow_TimerFlush(t *testing.T) {
	sched := treetest.NewFakeScheduler()
	h := NewHistory(WithScheduler(sched), WithInterval(500*time.Millisecond))
	defer h.Close()
	c := newCounter()

	// Rapid edits inside one window coalesce into one step.
	c.add(h, 1)
	c.add(h, 2)
	sched.Advance(500 * time.Millisecond)

	// Edits in the next window become a second step.
	c.add(h, 4)
	sched.Advance(500 * time.Millisecond)

	if h.Len() != 2 {
		t.Fatalf("timeline entries = %d, want 2", h.Len())
	}
	h.Undo()
	if c.value != 3 {
		t.Fatalf("after undo of second window, value = %d, want 3", c.value)
	}
	h.Undo()
	if c.value != 0 {
		t.Fatalf("after undo of first window, value = %d, want 0", c.value)
	}
}

func TestTimerFlush_ConcurrentWithPerform(t *testing.T) {
	// Default configuration: real timer, no marshaling queue, so the
	// periodic flush arrives on the timer goroutine while the owner
	// goroutine keeps performing. Run under -race this guards the
	// mutex serialization of the timeline state.
	h := NewHistory(WithInterval(time.Millisecond))
	defer h.Close()
	c := newCounter()

	const edits = 500
	for i := 0; i < edits; i++ {
		c.add(h, 1)
		if i%100 == 0 {
			time.Sleep(2 * time.Millisecond)
		}
	}
	if c.value != edits {
		t.Fatalf("value = %d, want %d", c.value, edits)
	}

	h.Flush()
	for h.Undo() {
	}
	// The timeline caps at DefaultMaxEntries, so only the newest
	// entries reverse; the count must still be consistent.
	if c.value < 0 || c.value > edits {
		t.Fatalf("value after exhausting undo = %d, out of range", c.value)
	}
	if h.CanUndo() {
		t.Fatal("undo should be exhausted")
	}
}

func TestCanUndoCanRedo(t *testing.T) {
	h := newManualHistory()
	c := newCounter()
	if h.CanUndo() || h.CanRedo() {
		t.Fatal("fresh history should report nothing to do")
	}
	c.add(h, 1)
	if !h.CanUndo() {
		t.Fatal("pending group should count as undoable")
	}
	h.Undo()
	if !h.CanRedo() {
		t.Fatal("after undo there should be a redo target")
	}
}
