package testing

import (
	"sync"
	"time"
)

// FakeScheduler is an undo.Scheduler that fires only when the test
// advances its clock. All methods are safe for concurrent use.
type FakeScheduler struct {
	mu       sync.Mutex
	interval time.Duration
	fn       func()
	active   bool
	elapsed  time.Duration
}

// NewFakeScheduler returns an idle fake scheduler.
func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{}
}

// Every records the callback and cadence. Nothing fires until Advance
// or Tick is called.
func (s *FakeScheduler) Every(interval time.Duration, fn func()) (cancel func()) {
	s.mu.Lock()
	s.interval = interval
	s.fn = fn
	s.active = true
	s.elapsed = 0
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.active = false
		s.fn = nil
		s.mu.Unlock()
	}
}

// Advance moves simulated time forward by d, firing the callback once
// for every full interval that elapses.
func (s *FakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	if !s.active || s.interval <= 0 {
		s.mu.Unlock()
		return
	}
	s.elapsed += d
	fires := 0
	for s.elapsed >= s.interval {
		s.elapsed -= s.interval
		fires++
	}
	fn := s.fn
	s.mu.Unlock()

	for i := 0; i < fires && fn != nil; i++ {
		fn()
	}
}

// Tick fires the callback once, as if one interval had elapsed.
func (s *FakeScheduler) Tick() {
	s.mu.Lock()
	fn := s.fn
	active := s.active
	s.mu.Unlock()
	if active && fn != nil {
		fn()
	}
}

// Active reports whether a callback is currently scheduled.
func (s *FakeScheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}
