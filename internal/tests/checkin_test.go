package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"valet/internal/domain"
	"valet/internal/service"
)

func TestCheckInAllocatesLowestHook(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 5)

	first := s.checkIn(t, "AAA-111", "CARD-001")
	second := s.checkIn(t, "BBB-222", "CARD-002")

	if first.HookNumber != 1 {
		t.Errorf("first check-in got hook %d, want 1", first.HookNumber)
	}
	if second.HookNumber != 2 {
		t.Errorf("second check-in got hook %d, want 2", second.HookNumber)
	}
	if first.Vehicle.SequenceNumber != 1 || second.Vehicle.SequenceNumber != 2 {
		t.Errorf("sequence numbers = %d, %d; want 1, 2",
			first.Vehicle.SequenceNumber, second.Vehicle.SequenceNumber)
	}
}

func TestCheckInReusesFreedHook(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.checkIn(t, "AAA-111", "CARD-001")
	s.checkIn(t, "BBB-222", "CARD-002")

	// Free hook 1 and mark its vehicle retrieved so the card unbinds.
	vehicle := s.repos.Vehicles.GetVehicle(s.repos.Cards.GetCard("CARD-001").BoundVehicleID)
	vehicle.Status = domain.VehicleStatusRetrieved
	if err := s.hooks.Release(context.Background(), 1); err != nil {
		t.Fatalf("release hook 1: %v", err)
	}

	third := s.checkIn(t, "CCC-333", "CARD-003")
	if third.HookNumber != 1 {
		t.Errorf("check-in after release got hook %d, want lowest free hook 1", third.HookNumber)
	}
}

func TestCheckInNormalizesPlate(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	resp := s.checkIn(t, "  abc-123 ", "CARD-001")
	if resp.Vehicle.LicensePlate != "ABC-123" {
		t.Errorf("plate = %q, want %q", resp.Vehicle.LicensePlate, "ABC-123")
	}
}

func TestCheckInRejectsDuplicatePlate(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.checkIn(t, "ABC-123", "CARD-001")

	_, err := s.checkin.CheckIn(context.Background(), service.CheckInRequest{
		CardID:       "CARD-002",
		LicensePlate: "abc-123",
	})
	if !errors.Is(err, service.ErrVehicleAlreadyParked) {
		t.Errorf("duplicate plate check-in: err = %v, want ErrVehicleAlreadyParked", err)
	}
}

func TestCheckInIdempotentRetry(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	first := s.checkIn(t, "ABC-123", "CARD-001")
	retry := s.checkIn(t, "ABC-123", "CARD-001")

	if retry.Vehicle.ID != first.Vehicle.ID {
		t.Errorf("retry created vehicle %s, want existing %s", retry.Vehicle.ID, first.Vehicle.ID)
	}
	if retry.HookNumber != first.HookNumber {
		t.Errorf("retry got hook %d, want %d", retry.HookNumber, first.HookNumber)
	}

	stats, _ := s.hooks.Stats(context.Background())
	if stats.Occupied != 1 {
		t.Errorf("occupied hooks after retry = %d, want 1", stats.Occupied)
	}
}

func TestCheckInRejectsBoundCardForOtherPlate(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.checkIn(t, "ABC-123", "CARD-001")

	_, err := s.checkin.CheckIn(context.Background(), service.CheckInRequest{
		CardID:       "CARD-001",
		LicensePlate: "XYZ-789",
	})
	if !errors.Is(err, service.ErrCardAlreadyBound) {
		t.Errorf("bound card reuse: err = %v, want ErrCardAlreadyBound", err)
	}
}

func TestCheckInEmptyPlateRejected(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	_, err := s.checkin.CheckIn(context.Background(), service.CheckInRequest{
		LicensePlate: "   ",
	})
	if !errors.Is(err, service.ErrInvalidPlate) {
		t.Errorf("blank plate: err = %v, want ErrInvalidPlate", err)
	}
}

func TestCheckInFullLotRejected(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 2)

	s.checkIn(t, "AAA-111", "CARD-001")
	s.checkIn(t, "BBB-222", "CARD-002")

	_, err := s.checkin.CheckIn(context.Background(), service.CheckInRequest{
		CardID:       "CARD-003",
		LicensePlate: "CCC-333",
	})
	if !errors.Is(err, service.ErrNoHooksAvailable) {
		t.Errorf("full lot: err = %v, want ErrNoHooksAvailable", err)
	}
}

func TestCheckInReleasesHookWhenPersistFails(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.repos.Vehicles.CreateError = ErrMockDBConstraint

	_, err := s.checkin.CheckIn(context.Background(), service.CheckInRequest{
		CardID:       "CARD-001",
		LicensePlate: "ABC-123",
	})
	if !errors.Is(err, ErrMockDBConstraint) {
		t.Fatalf("err = %v, want the injected constraint error", err)
	}

	// The allocated hook must be returned to the pool.
	stats, _ := s.hooks.Stats(context.Background())
	if stats.Occupied != 0 {
		t.Errorf("occupied hooks after failed check-in = %d, want 0", stats.Occupied)
	}
}

func TestConcurrentCheckInsGetDistinctHooks(t *testing.T) {
	t.Parallel()
	const n = 10
	s := newValetServices(t, n)

	var wg sync.WaitGroup
	hooks := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := s.checkin.CheckIn(context.Background(), service.CheckInRequest{
				LicensePlate: "PLATE-" + string(rune('A'+i)),
			})
			if err != nil {
				t.Errorf("concurrent check-in %d: %v", i, err)
				return
			}
			hooks[i] = resp.HookNumber
		}(i)
	}
	wg.Wait()

	seen := make(map[int]bool)
	for _, h := range hooks {
		if h == 0 {
			continue
		}
		if seen[h] {
			t.Errorf("hook %d allocated twice", h)
		}
		seen[h] = true
	}
}

func TestGetVehicleByCardReportsFee(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	resp := s.checkIn(t, "ABC-123", "CARD-001")
	s.backdateCheckIn(resp.Vehicle.ID, 4*time.Hour)

	info, err := s.checkin.GetVehicleByCard(context.Background(), "CARD-001")
	if err != nil {
		t.Fatalf("get vehicle by card: %v", err)
	}

	// 4h parked: base 15 plus one started extra hour.
	if info.CurrentFee != 20 {
		t.Errorf("current fee = %v, want 20", info.CurrentFee)
	}
	if info.DurationMinutes < 239 || info.DurationMinutes > 241 {
		t.Errorf("duration = %d minutes, want about 240", info.DurationMinutes)
	}
}
