package undo

import (
	"time"

	"github.com/go-drift/datatree/pkg/dispatch"
)

// Scheduler is the mechanism behind the coalescing window: it invokes
// a callback at a fixed cadence until cancelled. The default
// implementation uses a real timer; tests inject a fake scheduler and
// advance it manually.
type Scheduler interface {
	// Every invokes fn at the given interval on the owner thread until
	// the returned cancel function is called.
	Every(interval time.Duration, fn func()) (cancel func())
}

// timerScheduler drives callbacks from a time.Ticker goroutine,
// marshaling each tick onto the owner queue.
type timerScheduler struct{}

func (timerScheduler) Every(interval time.Duration, fn func()) (cancel func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				dispatch.Post(fn)
			case <-done:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}
