package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"valet/internal/domain"
	"valet/internal/repository"
)

// staggerRequest offsets a request's timestamp so FIFO order is testable.
func staggerRequest(s *valetServices, id string, offset time.Duration) {
	request := s.repos.Requests.GetRequest(id)
	request.RequestedAt = request.RequestedAt.Add(offset)
}

func TestNextPendingPriorityBeforeFIFO(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 5)

	s.checkIn(t, "AAA-111", "CARD-A")
	s.checkIn(t, "BBB-222", "CARD-B")
	s.checkIn(t, "CCC-333", "CARD-C")

	// B arrives first as a standard request, then priority A, then
	// priority C. Dispatch order must be A, C, B.
	b := s.enqueue(t, "CARD-B", false)
	a := s.enqueue(t, "CARD-A", true)
	c := s.enqueue(t, "CARD-C", true)
	staggerRequest(s, b.ID, 0)
	staggerRequest(s, a.ID, time.Second)
	staggerRequest(s, c.ID, 2*time.Second)

	ctx := context.Background()
	wantOrder := []string{a.ID, c.ID, b.ID}
	for i, want := range wantOrder {
		next, err := s.retrieval.NextPending(ctx)
		if err != nil {
			t.Fatalf("next pending #%d: %v", i, err)
		}
		if next.ID != want {
			t.Fatalf("dispatch position %d = %s, want %s", i, next.ID, want)
		}

		driverID := "drv-" + next.ID
		s.addDriver(driverID, "Driver")
		if err := s.retrieval.Assign(ctx, next.ID, driverID); err != nil {
			t.Fatalf("assign %s: %v", next.ID, err)
		}
	}

	if _, err := s.retrieval.NextPending(ctx); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("empty queue: err = %v, want ErrNotFound", err)
	}
}

func TestQueueSnapshotSplitsLanes(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 5)

	s.checkIn(t, "AAA-111", "CARD-A")
	s.checkIn(t, "BBB-222", "CARD-B")
	s.checkIn(t, "CCC-333", "CARD-C")
	s.enqueue(t, "CARD-A", true)
	s.enqueue(t, "CARD-B", false)
	s.enqueue(t, "CARD-C", false)

	snapshot, err := s.retrieval.Queue(context.Background())
	if err != nil {
		t.Fatalf("queue: %v", err)
	}

	if snapshot.Total != 3 {
		t.Errorf("total = %d, want 3", snapshot.Total)
	}
	if len(snapshot.Priority) != 1 {
		t.Errorf("priority lane = %d rows, want 1", len(snapshot.Priority))
	}
	if len(snapshot.Standard) != 2 {
		t.Errorf("standard lane = %d rows, want 2", len(snapshot.Standard))
	}

	if row := snapshot.Priority[0]; row.LicensePlate != "AAA-111" || row.HookNumber != 1 {
		t.Errorf("priority row = %s on hook %d, want AAA-111 on hook 1", row.LicensePlate, row.HookNumber)
	}
}

func TestQueueIncludesAssignedRequests(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 5)

	s.checkIn(t, "AAA-111", "CARD-A")
	request := s.enqueue(t, "CARD-A", false)
	s.addDriver("drv-1", "Sam")
	if err := s.retrieval.Assign(context.Background(), request.ID, "drv-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	snapshot, err := s.retrieval.Queue(context.Background())
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if snapshot.Total != 1 {
		t.Fatalf("total = %d, want assigned request still visible", snapshot.Total)
	}
	if row := snapshot.Standard[0]; row.DriverID != "drv-1" || row.Status != domain.RequestStatusAssigned {
		t.Errorf("row = %s driver %q, want ASSIGNED by drv-1", row.Status, row.DriverID)
	}
}

func TestQueueOmitsTerminalRequests(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 5)

	s.checkIn(t, "AAA-111", "CARD-A")
	s.checkIn(t, "BBB-222", "CARD-B")
	keep := s.enqueue(t, "CARD-A", false)
	drop := s.enqueue(t, "CARD-B", false)

	if err := s.retrieval.Cancel(context.Background(), drop.ID, ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	snapshot, err := s.retrieval.Queue(context.Background())
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if snapshot.Total != 1 || snapshot.Standard[0].RequestID != keep.ID {
		t.Errorf("queue kept %d rows, want only %s", snapshot.Total, keep.ID)
	}
}

func TestPendingHandoversListsReadyOnly(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 5)

	s.checkIn(t, "AAA-111", "CARD-A")
	s.checkIn(t, "BBB-222", "CARD-B")
	ready := s.enqueue(t, "CARD-A", false)
	s.enqueue(t, "CARD-B", false)

	s.addDriver("drv-1", "Sam")
	ctx := context.Background()
	if err := s.retrieval.Assign(ctx, ready.ID, "drv-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	s.advanceToReady(t, ready.ID)

	entries, err := s.retrieval.PendingHandovers(ctx)
	if err != nil {
		t.Fatalf("pending handovers: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("handovers = %d, want 1", len(entries))
	}
	if entries[0].Request.ID != ready.ID {
		t.Errorf("handover request = %s, want %s", entries[0].Request.ID, ready.ID)
	}
	if entries[0].Vehicle.LicensePlate != "AAA-111" {
		t.Errorf("handover vehicle = %s, want AAA-111", entries[0].Vehicle.LicensePlate)
	}
}
