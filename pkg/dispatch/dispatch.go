// Package dispatch marshals work onto the thread that owns a tree.
//
// All tree mutations and undo operations happen on a single logical
// owner thread. The one concession to other threads is notification
// delivery: a mutation triggered off-thread writes its data
// synchronously but defers listener dispatch onto the owner queue.
// The queue is an injected collaborator so tests can run
// single-threaded and deterministically.
package dispatch

import "sync"

// Queue schedules callbacks on the owner thread.
type Queue interface {
	// Post schedules a callback to run on the owner thread.
	Post(callback func())
	// IsOwner reports whether the caller is already on the owner thread.
	IsOwner() bool
}

// inlineQueue runs callbacks immediately on the calling goroutine.
// It is the default for applications that do their tree work from a
// single goroutine and never touch it from anywhere else.
type inlineQueue struct{}

func (inlineQueue) Post(callback func()) {
	if callback != nil {
		callback()
	}
}

func (inlineQueue) IsOwner() bool { return true }

var (
	queueMu sync.RWMutex
	queue   Queue = inlineQueue{}
)

// Register sets the owner queue used to schedule callbacks.
// This should be called once by the host application during
// initialization. Pass nil to restore the inline default.
func Register(q Queue) {
	queueMu.Lock()
	if q == nil {
		queue = inlineQueue{}
	} else {
		queue = q
	}
	queueMu.Unlock()
}

// Active returns the currently registered queue.
func Active() Queue {
	queueMu.RLock()
	defer queueMu.RUnlock()
	return queue
}

// Post schedules a callback on the active queue. If the caller is
// already on the owner thread the callback runs synchronously before
// Post returns.
func Post(callback func()) {
	if callback == nil {
		return
	}
	q := Active()
	if q.IsOwner() {
		callback()
		return
	}
	q.Post(callback)
}
