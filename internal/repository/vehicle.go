package repository

import (
	"context"

	"valet/internal/domain"
)

// VehicleRepository defines the persistence operations for vehicles.
type VehicleRepository interface {
	// Create persists a new vehicle record.
	Create(ctx context.Context, vehicle *domain.Vehicle) error

	// GetByID retrieves a vehicle by ID.
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)

	// GetActiveByCardID retrieves the vehicle currently bound to a card,
	// i.e. the one whose status is not yet retrieved.
	GetActiveByCardID(ctx context.Context, cardID string) (*domain.Vehicle, error)

	// GetActiveByPlate retrieves a not-yet-retrieved vehicle by plate.
	GetActiveByPlate(ctx context.Context, plate string) (*domain.Vehicle, error)

	// ListByStatus retrieves vehicles in a given status, newest first.
	ListByStatus(ctx context.Context, status domain.VehicleStatus) ([]*domain.Vehicle, error)

	// ListActive retrieves every vehicle still in custody, by sequence.
	ListActive(ctx context.Context) ([]*domain.Vehicle, error)

	// UpdateStatusFrom moves a vehicle between statuses with a
	// compare-and-set on the current status. Returns false on mismatch.
	// When to is retrieved the check-out time is stamped.
	UpdateStatusFrom(ctx context.Context, id string, from, to domain.VehicleStatus) (bool, error)
}
