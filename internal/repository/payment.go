package repository

import (
	"context"

	"valet/internal/domain"
)

// PaymentRepository defines the persistence operations for completed
// handover transactions.
type PaymentRepository interface {
	// Create persists a payment record.
	Create(ctx context.Context, record *domain.PaymentRecord) error

	// GetByRequestID retrieves the payment record for a request.
	GetByRequestID(ctx context.Context, requestID string) (*domain.PaymentRecord, error)
}
