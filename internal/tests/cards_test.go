package tests

import (
	"context"
	"errors"
	"testing"

	"valet/internal/domain"
	"valet/internal/service"
)

func TestCanSafelyClearWhileVehicleInCustody(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.checkIn(t, "ABC-123", "CARD-001")

	safe, err := s.cards.CanSafelyClear(context.Background(), "CARD-001")
	if err != nil {
		t.Fatalf("can safely clear: %v", err)
	}
	if safe {
		t.Error("card bound to a parked vehicle reported safe to clear")
	}
}

func TestClearRefusedWhileVehicleInCustody(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.checkIn(t, "ABC-123", "CARD-001")

	err := s.cards.Clear(context.Background(), "CARD-001")
	if !errors.Is(err, service.ErrUnsafeToRelease) {
		t.Errorf("clear with vehicle in custody: err = %v, want ErrUnsafeToRelease", err)
	}
	if card := s.repos.Cards.GetCard("CARD-001"); card.Status != domain.CardStatusBound {
		t.Errorf("card status after refused clear = %s, want BOUND", card.Status)
	}
}

func TestClearSafetyCheckErrorIsUnsafe(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.checkIn(t, "ABC-123", "CARD-001")
	s.repos.Cards.CanSafelyClearError = ErrMockTimeout

	// A failed check must refuse the clear, never wave it through.
	err := s.cards.Clear(context.Background(), "CARD-001")
	if !errors.Is(err, ErrMockTimeout) {
		t.Errorf("clear with failing safety check: err = %v, want the injected error", err)
	}
	if card := s.repos.Cards.GetCard("CARD-001"); card.Status != domain.CardStatusBound {
		t.Errorf("card status = %s, want BOUND untouched", card.Status)
	}
}

func TestClearAfterRetrievalSucceeds(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	resp := s.checkIn(t, "ABC-123", "CARD-001")

	// Vehicle leaves custody without going through Complete.
	vehicle := s.repos.Vehicles.GetVehicle(resp.Vehicle.ID)
	vehicle.Status = domain.VehicleStatusRetrieved

	if err := s.cards.Clear(context.Background(), "CARD-001"); err != nil {
		t.Fatalf("clear after retrieval: %v", err)
	}

	card := s.repos.Cards.GetCard("CARD-001")
	if card.Status != domain.CardStatusUnbound {
		t.Errorf("card status = %s, want UNBOUND", card.Status)
	}
	if card.BoundVehicleID != "" {
		t.Errorf("bound vehicle = %q, want cleared", card.BoundVehicleID)
	}
	if card.TotalUses != 1 {
		t.Errorf("total uses = %d, want 1", card.TotalUses)
	}
}

func TestClearLockContention(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	resp := s.checkIn(t, "ABC-123", "CARD-001")
	s.repos.Vehicles.GetVehicle(resp.Vehicle.ID).Status = domain.VehicleStatusRetrieved

	s.locks.ForceAcquireFailure = true
	err := s.cards.Clear(context.Background(), "CARD-001")
	if !errors.Is(err, service.ErrCardAlreadyBound) {
		t.Errorf("clear while locked: err = %v, want ErrCardAlreadyBound", err)
	}
}

func TestReleaseUnboundCardRejected(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.repos.Cards.AddCard(&domain.Card{CardID: "CARD-001", Status: domain.CardStatusUnbound})

	err := s.cards.Release(context.Background(), "CARD-001")
	if !errors.Is(err, service.ErrCardNotBound) {
		t.Errorf("release unbound card: err = %v, want ErrCardNotBound", err)
	}
}

func TestBindAlreadyBoundCardRejected(t *testing.T) {
	t.Parallel()
	s := newValetServices(t, 3)

	s.checkIn(t, "ABC-123", "CARD-001")

	err := s.cards.Bind(context.Background(), "CARD-001", "some-other-vehicle")
	if !errors.Is(err, service.ErrCardAlreadyBound) {
		t.Errorf("rebind bound card: err = %v, want ErrCardAlreadyBound", err)
	}
}
