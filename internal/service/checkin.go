package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"valet/internal/domain"
	"valet/internal/repository"
)

// CheckinService handles vehicle check-in: hook allocation, card binding
// and ledger creation, with compensating release when a later step fails.
type CheckinService struct {
	hookService *HookService
	vehicleRepo repository.VehicleRepository
	txManager   repository.TxManager
	pricing     *PricingService
	writer      CardReader
}

// NewCheckinService creates a new CheckinService.
func NewCheckinService(
	hookService *HookService,
	vehicleRepo repository.VehicleRepository,
	txManager repository.TxManager,
	pricing *PricingService,
	writer CardReader,
) *CheckinService {
	return &CheckinService{
		hookService: hookService,
		vehicleRepo: vehicleRepo,
		txManager:   txManager,
		pricing:     pricing,
		writer:      writer,
	}
}

// CheckInRequest contains the parameters for checking in a vehicle.
type CheckInRequest struct {
	CardID        string // Optional: empty generates a fresh card ID
	LicensePlate  string
	Make          string
	Model         string
	Color         string
	CustomerPhone string
}

// CheckInResponse contains the result of a check-in.
type CheckInResponse struct {
	Vehicle    *domain.Vehicle
	CardID     string
	HookNumber int
}

// CheckIn allocates a hook, binds the card and creates the vehicle record.
// Retrying with the same card ID after a success returns the existing
// binding instead of double-allocating.
func (s *CheckinService) CheckIn(ctx context.Context, req CheckInRequest) (*CheckInResponse, error) {
	plate := strings.ToUpper(strings.TrimSpace(req.LicensePlate))
	if plate == "" {
		return nil, ErrInvalidPlate
	}

	// Idempotent retry: same card, same plate, binding already in place.
	if req.CardID != "" {
		existing, err := s.vehicleRepo.GetActiveByCardID(ctx, req.CardID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			if existing.LicensePlate == plate {
				return &CheckInResponse{
					Vehicle:    existing,
					CardID:     existing.CardID,
					HookNumber: existing.HookNumber,
				}, nil
			}
			return nil, ErrCardAlreadyBound
		}
	}

	if _, err := s.vehicleRepo.GetActiveByPlate(ctx, plate); err == nil {
		return nil, ErrVehicleAlreadyParked
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	cardID := req.CardID
	if cardID == "" {
		cardID = uuid.New().String()
	}
	vehicleID := uuid.New().String()

	// Allocate the hook first. Everything after this point must release
	// it again on failure so no hook is left claimed by a vehicle that
	// was never created.
	hookNumber, err := s.hookService.Allocate(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	if s.writer != nil {
		if err := s.writer.WriteCardID(ctx, cardID); err != nil {
			s.compensateHook(ctx, hookNumber)
			return nil, fmt.Errorf("write card tag: %w", err)
		}
	}

	var vehicle *domain.Vehicle
	err = s.txManager.WithinTx(ctx, func(r repository.Repos) error {
		_, err := r.Cards.GetByCardID(ctx, cardID)
		if errors.Is(err, repository.ErrNotFound) {
			err = r.Cards.Create(ctx, &domain.Card{
				CardID:    cardID,
				Status:    domain.CardStatusUnbound,
				CreatedAt: time.Now(),
			})
		}
		if err != nil {
			return err
		}

		bound, err := r.Cards.Bind(ctx, cardID, vehicleID)
		if err != nil {
			return err
		}
		if !bound {
			return ErrCardAlreadyBound
		}

		seq, err := r.Hooks.NextSequence(ctx)
		if err != nil {
			return err
		}

		vehicle = &domain.Vehicle{
			ID:             vehicleID,
			CardID:         cardID,
			HookNumber:     hookNumber,
			SequenceNumber: seq,
			LicensePlate:   plate,
			Make:           req.Make,
			Model:          req.Model,
			Color:          req.Color,
			CustomerPhone:  req.CustomerPhone,
			Status:         domain.VehicleStatusParked,
			CheckInTime:    time.Now(),
		}

		return r.Vehicles.Create(ctx, vehicle)
	})
	if err != nil {
		s.compensateHook(ctx, hookNumber)
		return nil, err
	}

	return &CheckInResponse{
		Vehicle:    vehicle,
		CardID:     cardID,
		HookNumber: hookNumber,
	}, nil
}

// compensateHook releases a hook claimed by a check-in that failed partway.
func (s *CheckinService) compensateHook(ctx context.Context, hookNumber int) {
	_ = s.hookService.Release(ctx, hookNumber)
}

// VehicleInfo is a vehicle with its running duration and current fee.
type VehicleInfo struct {
	Vehicle         *domain.Vehicle
	DurationMinutes int
	CurrentFee      float64
}

// GetVehicleByCard retrieves the vehicle bound to a card along with its
// live parking duration and the fee accrued so far.
func (s *CheckinService) GetVehicleByCard(ctx context.Context, cardID string) (*VehicleInfo, error) {
	if cardID == "" {
		return nil, ErrInvalidCardID
	}

	vehicle, err := s.vehicleRepo.GetActiveByCardID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	parked := time.Since(vehicle.CheckInTime)
	return &VehicleInfo{
		Vehicle:         vehicle,
		DurationMinutes: int(parked.Minutes()),
		CurrentFee:      s.pricing.Fee(parked),
	}, nil
}

// ListVehicles retrieves every vehicle still in custody.
func (s *CheckinService) ListVehicles(ctx context.Context) ([]*domain.Vehicle, error) {
	return s.vehicleRepo.ListActive(ctx)
}
