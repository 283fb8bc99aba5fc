package tests

import (
	"context"
	"testing"
	"time"

	"valet/internal/domain"
	"valet/internal/service"
)

// valetServices bundles the fully wired service layer over mock storage.
type valetServices struct {
	repos *MockRepos
	locks *MockLockStore

	hooks     *service.HookService
	cards     *service.CardService
	checkin   *service.CheckinService
	retrieval *service.RetrievalService
	drivers   *service.DriverService
	reader    *service.SimulatedCardReader
}

// newValetServices wires the service layer the way main does, minus redis
// caches, and seeds the key board.
func newValetServices(t *testing.T, totalHooks int) *valetServices {
	t.Helper()

	repos := NewMockRepos()
	locks := NewMockLockStore()
	reader := service.NewSimulatedCardReader()
	pricing := service.NewPricingService(service.DefaultPricingConfig())
	txManager := repos.TxManager()

	hooks := service.NewHookService(repos.Hooks, nil)
	if err := hooks.Init(context.Background(), totalHooks); err != nil {
		t.Fatalf("seed hooks: %v", err)
	}

	return &valetServices{
		repos:     repos,
		locks:     locks,
		hooks:     hooks,
		cards:     service.NewCardService(repos.Cards, locks, reader),
		checkin:   service.NewCheckinService(hooks, repos.Vehicles, txManager, pricing, reader),
		retrieval: service.NewRetrievalService(repos.Requests, repos.Vehicles, repos.Drivers, txManager, pricing, locks, nil),
		drivers:   service.NewDriverService(repos.Drivers),
		reader:    reader,
	}
}

// checkIn parks a vehicle and fails the test on error.
func (s *valetServices) checkIn(t *testing.T, plate, cardID string) *service.CheckInResponse {
	t.Helper()

	resp, err := s.checkin.CheckIn(context.Background(), service.CheckInRequest{
		CardID:       cardID,
		LicensePlate: plate,
	})
	if err != nil {
		t.Fatalf("check in %s: %v", plate, err)
	}
	return resp
}

// enqueue requests a retrieval and fails the test on error.
func (s *valetServices) enqueue(t *testing.T, cardID string, priority bool) *domain.RetrievalRequest {
	t.Helper()

	request, err := s.retrieval.Enqueue(context.Background(), service.EnqueueRequest{
		CardID:        cardID,
		IsPriority:    priority,
		PaymentMethod: domain.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("enqueue for card %s: %v", cardID, err)
	}
	return request
}

// addDriver registers an available driver directly in the mock store.
func (s *valetServices) addDriver(id, name string) {
	s.repos.Drivers.AddDriver(&domain.Driver{
		ID:     id,
		Name:   name,
		Status: domain.DriverStatusAvailable,
	})
}

// advanceToReady walks an assigned request through the execution steps.
func (s *valetServices) advanceToReady(t *testing.T, requestID string) {
	t.Helper()

	steps := []domain.RequestStatus{
		domain.RequestStatusAssigned,
		domain.RequestStatusKeysPicked,
		domain.RequestStatusWalking,
		domain.RequestStatusDriving,
	}
	for _, from := range steps {
		if _, err := s.retrieval.Advance(context.Background(), requestID, from); err != nil {
			t.Fatalf("advance from %s: %v", from, err)
		}
	}
}

// backdateCheckIn rewrites a vehicle's check-in time for pricing tests.
func (s *valetServices) backdateCheckIn(vehicleID string, by time.Duration) {
	vehicle := s.repos.Vehicles.GetVehicle(vehicleID)
	vehicle.CheckInTime = vehicle.CheckInTime.Add(-by)
}
