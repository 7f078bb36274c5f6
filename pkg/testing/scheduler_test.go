package testing

import (
	"testing"
	"time"
)

func TestFakeScheduler_AdvanceFiresPerInterval(t *testing.T) {
	s := NewFakeScheduler()
	fires := 0
	cancel := s.Every(500*time.Millisecond, func() { fires++ })
	defer cancel()

	s.Advance(400 * time.Millisecond)
	if fires != 0 {
		t.Fatalf("expected no fires before one interval, got %d", fires)
	}
	s.Advance(100 * time.Millisecond)
	if fires != 1 {
		t.Fatalf("expected 1 fire after one interval, got %d", fires)
	}
	s.Advance(1500 * time.Millisecond)
	if fires != 4 {
		t.Fatalf("expected 4 fires after three more intervals, got %d", fires)
	}
}

func TestFakeScheduler_CancelStopsFiring(t *testing.T) {
	s := NewFakeScheduler()
	fires := 0
	cancel := s.Every(time.Second, func() { fires++ })
	cancel()
	s.Advance(5 * time.Second)
	if fires != 0 {
		t.Fatalf("expected no fires after cancel, got %d", fires)
	}
	if s.Active() {
		t.Fatal("scheduler should be inactive after cancel")
	}
}

func TestFakeQueue_DrainRunsInOrder(t *testing.T) {
	q := NewFakeQueue()
	var order []int
	q.Post(func() { order = append(order, 1) })
	q.Post(func() { order = append(order, 2) })
	if q.Pending() != 2 {
		t.Fatalf("expected 2 pending, got %d", q.Pending())
	}
	q.Drain()
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected in-order drain, got %v", order)
	}
	if q.Pending() != 0 {
		t.Fatal("queue should be empty after drain")
	}
}
