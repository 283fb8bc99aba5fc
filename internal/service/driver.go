package service

import (
	"context"

	"github.com/google/uuid"

	"valet/internal/domain"
	"valet/internal/repository"
)

// DriverService handles the driver roster. Busy/available is not settable
// here: that state belongs to the dispatch flow, which claims and releases
// drivers alongside their requests.
type DriverService struct {
	driverRepo repository.DriverRepository
}

// NewDriverService creates a new DriverService.
func NewDriverService(driverRepo repository.DriverRepository) *DriverService {
	return &DriverService{driverRepo: driverRepo}
}

// Register adds a new driver, available for assignment.
func (s *DriverService) Register(ctx context.Context, name, phone string) (*domain.Driver, error) {
	if name == "" {
		return nil, ErrInvalidDriverName
	}

	driver := &domain.Driver{
		ID:     uuid.New().String(),
		Name:   name,
		Phone:  phone,
		Status: domain.DriverStatusAvailable,
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}

	return driver, nil
}

// Get retrieves a driver by ID.
func (s *DriverService) Get(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	return s.driverRepo.GetByID(ctx, driverID)
}

// List retrieves all drivers.
func (s *DriverService) List(ctx context.Context) ([]*domain.Driver, error) {
	return s.driverRepo.GetAll(ctx)
}

// SetStatus toggles a driver between offline and available. A driver with
// a task in progress cannot go offline, and busy cannot be set directly.
func (s *DriverService) SetStatus(ctx context.Context, driverID string, status domain.DriverStatus) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	if status != domain.DriverStatusOffline && status != domain.DriverStatusAvailable {
		return ErrInvalidStatus
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return err
	}

	if driver.ActiveRequestID != "" {
		return ErrDriverHasActiveRequest
	}

	return s.driverRepo.UpdateStatus(ctx, driverID, status)
}
