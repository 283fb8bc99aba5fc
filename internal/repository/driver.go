package repository

import (
	"context"

	"valet/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create adds a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// GetAll retrieves all drivers.
	GetAll(ctx context.Context) ([]*domain.Driver, error)

	// ClaimRequest marks an available driver busy with the given request.
	// Returns false when the driver already holds an active request or is
	// not available.
	ClaimRequest(ctx context.Context, driverID, requestID string) (bool, error)

	// ReleaseRequest clears the driver's active request and marks the
	// driver available. Returns false when no request was held.
	ReleaseRequest(ctx context.Context, driverID string) (bool, error)

	// UpdateStatus sets a driver's status directly. Used only for the
	// offline/available toggle; busy is owned by Claim/ReleaseRequest.
	UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error
}
