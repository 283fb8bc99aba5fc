package repository

import (
	"context"
	"time"

	"valet/internal/domain"
)

// RequestRepository defines the persistence operations for retrieval
// requests. Every state-changing method uses compare-and-set semantics:
// the update applies only while the request is in the expected status, and
// the boolean result reports whether it did.
type RequestRepository interface {
	// Create persists a new retrieval request.
	Create(ctx context.Context, request *domain.RetrievalRequest) error

	// GetByID retrieves a request by ID.
	GetByID(ctx context.Context, id string) (*domain.RetrievalRequest, error)

	// GetActiveByVehicleID retrieves the non-terminal request for a
	// vehicle, if one exists.
	GetActiveByVehicleID(ctx context.Context, vehicleID string) (*domain.RetrievalRequest, error)

	// NextPending returns the next request to assign: priority requests
	// first, FIFO within each class, ties broken by requested time.
	NextPending(ctx context.Context) (*domain.RetrievalRequest, error)

	// ListActive returns all non-terminal requests in dispatch order.
	ListActive(ctx context.Context) ([]*domain.RetrievalRequest, error)

	// ListByStatus returns requests in a given status, oldest first.
	ListByStatus(ctx context.Context, status domain.RequestStatus) ([]*domain.RetrievalRequest, error)

	// AssignFrom assigns a driver to a pending request.
	AssignFrom(ctx context.Context, id, driverID string, at time.Time) (bool, error)

	// AdvanceFrom moves a request one step along the execution path.
	AdvanceFrom(ctx context.Context, id string, from, to domain.RequestStatus) (bool, error)

	// CompleteFrom completes a ready request.
	CompleteFrom(ctx context.Context, id string, at time.Time) (bool, error)

	// CancelFrom cancels a request that is still in the given status.
	CancelFrom(ctx context.Context, id string, from domain.RequestStatus, reason string, at time.Time) (bool, error)

	// SetPaymentConfirmed records the payment collaborator's confirmation
	// and any tip collected with it.
	SetPaymentConfirmed(ctx context.Context, id string, tipAmount float64) (bool, error)

	// SetCardVerified records that the driver scanned the matching card.
	SetCardVerified(ctx context.Context, id string) (bool, error)
}
