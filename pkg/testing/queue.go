package testing

// FakeQueue is a dispatch.Queue that pretends every caller is off the
// owner thread and captures posted callbacks for explicit draining.
type FakeQueue struct {
	pending []func()
}

// NewFakeQueue returns an empty queue.
func NewFakeQueue() *FakeQueue {
	return &FakeQueue{}
}

// Post captures the callback.
func (q *FakeQueue) Post(callback func()) {
	q.pending = append(q.pending, callback)
}

// IsOwner always reports false so that notifications are deferred.
func (q *FakeQueue) IsOwner() bool { return false }

// Pending returns the number of captured callbacks.
func (q *FakeQueue) Pending() int { return len(q.pending) }

// Drain runs all captured callbacks in order and clears the queue.
func (q *FakeQueue) Drain() {
	pending := q.pending
	q.pending = nil
	for _, fn := range pending {
		fn()
	}
}
