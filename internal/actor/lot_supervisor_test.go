package actor

import (
	"context"
	"testing"
	"time"

	"github.com/dominikschweigl/ticketless-park-system/internal/domain"
)

func newTestSupervisor(t *testing.T) *LotSupervisor {
	t.Helper()
	s := NewLotSupervisor(5*time.Second, nil)
	t.Cleanup(s.Stop)
	return s
}

func TestRegisterIsIdempotent(t *testing.T) {
	s := newTestSupervisor(t)
	ctx := context.Background()

	first, err := s.Register(ctx, "lot-01", 50, 48.1, 11.5)
	if err != nil {
		t.Fatalf("first register: %v", err)
	}
	if first.MaxCapacity != 50 {
		t.Fatalf("first register capacity = %d, want 50", first.MaxCapacity)
	}

	// Re-registration with a different capacity keeps the original.
	second, err := s.Register(ctx, "lot-01", 99, 0, 0)
	if err != nil {
		t.Fatalf("second register: %v", err)
	}
	if second.MaxCapacity != 50 {
		t.Fatalf("second register capacity = %d, want original 50", second.MaxCapacity)
	}

	registry, err := s.GetRegistered(ctx)
	if err != nil {
		t.Fatalf("registry snapshot: %v", err)
	}
	if len(registry) != 1 {
		t.Fatalf("registry has %d lots, want 1", len(registry))
	}
	if registry["lot-01"] != 50 {
		t.Fatalf("registry capacity = %d, want 50", registry["lot-01"])
	}
}

func TestLastOccupancyUpdateWins(t *testing.T) {
	s := newTestSupervisor(t)
	ctx := context.Background()

	if _, err := s.Register(ctx, "lot-01", 50, 0, 0); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Ordering is deterministic: updates and the status query pass
	// through the supervisor mailbox and then the lot mailbox in FIFO
	// order.
	s.UpdateOccupancy("lot-01", 10, 1000)
	s.UpdateOccupancy("lot-01", 35, 2000)
	s.UpdateOccupancy("lot-01", 5, 3000)

	status, err := s.GetStatus(ctx, "lot-01")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.CurrentOccupancy != 5 {
		t.Fatalf("occupancy = %d, want 5", status.CurrentOccupancy)
	}
}

func TestFullDetection(t *testing.T) {
	s := newTestSupervisor(t)
	ctx := context.Background()

	if _, err := s.Register(ctx, "lot-01", 10, 0, 0); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []struct {
		occupancy int
		wantFull  bool
	}{
		{9, false},
		{10, true},
		// Over capacity is accepted, not rejected.
		{11, true},
	}
	for _, tc := range cases {
		s.UpdateOccupancy("lot-01", tc.occupancy, time.Now().UnixMilli())
		status, err := s.GetStatus(ctx, "lot-01")
		if err != nil {
			t.Fatalf("status at occupancy %d: %v", tc.occupancy, err)
		}
		if status.IsFull != tc.wantFull {
			t.Errorf("occupancy %d: isFull = %v, want %v", tc.occupancy, status.IsFull, tc.wantFull)
		}
		if status.CurrentOccupancy != tc.occupancy {
			t.Errorf("occupancy stored as %d, want %d", status.CurrentOccupancy, tc.occupancy)
		}
	}
}

func TestUnknownLotStatusSentinel(t *testing.T) {
	s := newTestSupervisor(t)

	status, err := s.GetStatus(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("status for unknown lot must not fail: %v", err)
	}
	if status.CurrentOccupancy != 0 || status.MaxCapacity != 0 || status.IsFull {
		t.Fatalf("unknown lot status = %+v, want zero-valued sentinel", status)
	}
	if status.LotID != "nonexistent" {
		t.Fatalf("sentinel lotId = %q, want requested id", status.LotID)
	}
}

func TestDeregisterThenStatus(t *testing.T) {
	s := newTestSupervisor(t)
	ctx := context.Background()

	if _, err := s.Register(ctx, "lot-01", 25, 0, 0); err != nil {
		t.Fatalf("register: %v", err)
	}
	s.UpdateOccupancy("lot-01", 7, time.Now().UnixMilli())

	removed, err := s.Deregister(ctx, "lot-01")
	if err != nil {
		t.Fatalf("deregister: %v", err)
	}
	if removed != "lot-01" {
		t.Fatalf("deregister reply = %q, want lot-01", removed)
	}

	status, err := s.GetStatus(ctx, "lot-01")
	if err != nil {
		t.Fatalf("status after deregister: %v", err)
	}
	if status.MaxCapacity != 0 || status.CurrentOccupancy != 0 {
		t.Fatalf("status after deregister = %+v, want never-registered sentinel", status)
	}

	registry, err := s.GetRegistered(ctx)
	if err != nil {
		t.Fatalf("registry snapshot: %v", err)
	}
	if len(registry) != 0 {
		t.Fatalf("registry still has %d lots after deregister", len(registry))
	}
}

func TestDeregisterUnknownLotIsIdempotent(t *testing.T) {
	s := newTestSupervisor(t)

	removed, err := s.Deregister(context.Background(), "never-registered")
	if err != nil {
		t.Fatalf("deregister of unknown lot must still reply: %v", err)
	}
	if removed != "never-registered" {
		t.Fatalf("deregister reply = %q, want never-registered", removed)
	}
}

func TestOccupancyUpdateForUnknownLotIsDropped(t *testing.T) {
	s := newTestSupervisor(t)
	ctx := context.Background()

	// Must not panic or create a lot.
	s.UpdateOccupancy("ghost", 3, time.Now().UnixMilli())

	registry, err := s.GetRegistered(ctx)
	if err != nil {
		t.Fatalf("registry snapshot: %v", err)
	}
	if len(registry) != 0 {
		t.Fatalf("dropped update created %d registry entries", len(registry))
	}
}

type capturingNotifier struct {
	notifications chan domain.OccupancyNotification
}

func (n *capturingNotifier) NotifyOccupancy(notification domain.OccupancyNotification) {
	select {
	case n.notifications <- notification:
	default:
	}
}

func TestAcceptedOccupancyUpdateNotifies(t *testing.T) {
	notifier := &capturingNotifier{notifications: make(chan domain.OccupancyNotification, 1)}
	s := NewLotSupervisor(5*time.Second, notifier)
	t.Cleanup(s.Stop)
	ctx := context.Background()

	if _, err := s.Register(ctx, "lot-01", 40, 0, 0); err != nil {
		t.Fatalf("register: %v", err)
	}
	s.UpdateOccupancy("lot-01", 12, 7000)

	select {
	case n := <-notifier.notifications:
		if n.LotID != "lot-01" || n.CurrentOccupancy != 12 || n.MaxCapacity != 40 || n.AvailableSpaces != 28 || n.Timestamp != 7000 {
			t.Fatalf("notification = %+v", n)
		}
	case <-time.After(time.Second):
		t.Fatal("no notification for accepted occupancy update")
	}

	// Updates for unknown lots are dropped before notification.
	s.UpdateOccupancy("ghost", 1, 8000)
	if _, err := s.GetRegistered(ctx); err != nil {
		t.Fatalf("registry snapshot: %v", err)
	}
	select {
	case n := <-notifier.notifications:
		t.Fatalf("unexpected notification for unknown lot: %+v", n)
	default:
	}
}
