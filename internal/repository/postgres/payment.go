package postgres

import (
	"context"
	"database/sql"
	"errors"

	"valet/internal/domain"
	"valet/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

// Create persists a payment record.
func (r *PaymentRepository) Create(ctx context.Context, record *domain.PaymentRecord) error {
	query := `
		INSERT INTO payments (id, request_id, vehicle_id, driver_id, amount, tip_amount, payment_method, duration_minutes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		record.ID,
		record.RequestID,
		record.VehicleID,
		record.DriverID,
		record.Amount,
		record.TipAmount,
		record.PaymentMethod,
		record.DurationMinutes,
		record.CreatedAt,
	)

	return err
}

// GetByRequestID retrieves the payment record for a request.
func (r *PaymentRepository) GetByRequestID(ctx context.Context, requestID string) (*domain.PaymentRecord, error) {
	query := `
		SELECT id, request_id, vehicle_id, driver_id, amount, tip_amount, payment_method, duration_minutes, created_at
		FROM payments WHERE request_id = $1
	`

	var record domain.PaymentRecord
	err := r.q.QueryRowContext(ctx, query, requestID).Scan(
		&record.ID,
		&record.RequestID,
		&record.VehicleID,
		&record.DriverID,
		&record.Amount,
		&record.TipAmount,
		&record.PaymentMethod,
		&record.DurationMinutes,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &record, nil
}
