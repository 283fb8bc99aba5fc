package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"valet/internal/domain"
	"valet/internal/repository"
)

// RequestRepository is a PostgreSQL implementation of repository.RequestRepository.
type RequestRepository struct {
	q Querier
}

// NewRequestRepository creates a new PostgreSQL request repository.
func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{q: db}
}

// NewRequestRepositoryWithTx creates a request repository using a transaction.
func NewRequestRepositoryWithTx(tx *sql.Tx) *RequestRepository {
	return &RequestRepository{q: tx}
}

const requestColumns = `id, vehicle_id, card_id, is_priority, payment_method, amount, tip_amount, status, assigned_driver_id, payment_confirmed, card_verified, requested_at, assigned_at, ready_at, completed_at, cancelled_at, cancel_reason`

// Create persists a new retrieval request.
func (r *RequestRepository) Create(ctx context.Context, request *domain.RetrievalRequest) error {
	query := `
		INSERT INTO retrieval_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	var assignedDriverID sql.NullString
	if request.AssignedDriverID != "" {
		assignedDriverID = sql.NullString{String: request.AssignedDriverID, Valid: true}
	}

	var cancelReason sql.NullString
	if request.CancelReason != "" {
		cancelReason = sql.NullString{String: request.CancelReason, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		request.ID,
		request.VehicleID,
		request.CardID,
		request.IsPriority,
		request.PaymentMethod,
		request.Amount,
		request.TipAmount,
		request.Status,
		assignedDriverID,
		request.PaymentConfirmed,
		request.CardVerified,
		request.RequestedAt,
		nullTime(request.AssignedAt),
		nullTime(request.ReadyAt),
		nullTime(request.CompletedAt),
		nullTime(request.CancelledAt),
		cancelReason,
	)

	return err
}

// GetByID retrieves a request by ID.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*domain.RetrievalRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM retrieval_requests WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetActiveByVehicleID retrieves the non-terminal request for a vehicle.
func (r *RequestRepository) GetActiveByVehicleID(ctx context.Context, vehicleID string) (*domain.RetrievalRequest, error) {
	query := `
		SELECT ` + requestColumns + ` FROM retrieval_requests
		WHERE vehicle_id = $1 AND status NOT IN ('COMPLETED', 'CANCELLED')
		LIMIT 1
	`
	return r.getOne(ctx, query, vehicleID)
}

// NextPending returns the next request to assign. Priority requests come
// first and each class is FIFO by requested time; this ordering is the
// queue's fairness contract.
func (r *RequestRepository) NextPending(ctx context.Context) (*domain.RetrievalRequest, error) {
	query := `
		SELECT ` + requestColumns + ` FROM retrieval_requests
		WHERE status = 'PENDING'
		ORDER BY is_priority DESC, requested_at ASC
		LIMIT 1
	`
	return r.getOne(ctx, query)
}

// ListActive returns all non-terminal requests in dispatch order.
func (r *RequestRepository) ListActive(ctx context.Context) ([]*domain.RetrievalRequest, error) {
	query := `
		SELECT ` + requestColumns + ` FROM retrieval_requests
		WHERE status NOT IN ('COMPLETED', 'CANCELLED')
		ORDER BY is_priority DESC, requested_at ASC
	`
	return r.list(ctx, query)
}

// ListByStatus returns requests in a given status, oldest first.
func (r *RequestRepository) ListByStatus(ctx context.Context, status domain.RequestStatus) ([]*domain.RetrievalRequest, error) {
	query := `
		SELECT ` + requestColumns + ` FROM retrieval_requests
		WHERE status = $1 ORDER BY requested_at ASC
	`
	return r.list(ctx, query, status)
}

// AssignFrom assigns a driver to a pending request. The status guard makes
// this the point of mutual exclusion between racing dispatchers: only the
// first caller's update matches a PENDING row.
func (r *RequestRepository) AssignFrom(ctx context.Context, id, driverID string, at time.Time) (bool, error) {
	query := `
		UPDATE retrieval_requests
		SET status = 'ASSIGNED', assigned_driver_id = $2, assigned_at = $3
		WHERE id = $1 AND status = 'PENDING'
	`
	return r.exec(ctx, query, id, driverID, at)
}

// AdvanceFrom moves a request one step along the execution path. A stale
// client repeating an advance matches zero rows and is rejected upstream.
func (r *RequestRepository) AdvanceFrom(ctx context.Context, id string, from, to domain.RequestStatus) (bool, error) {
	query := `
		UPDATE retrieval_requests
		SET status = $3,
		    ready_at = CASE WHEN $3 = 'READY' THEN NOW() ELSE ready_at END
		WHERE id = $1 AND status = $2
	`
	return r.exec(ctx, query, id, from, to)
}

// CompleteFrom completes a ready request.
func (r *RequestRepository) CompleteFrom(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE retrieval_requests
		SET status = 'COMPLETED', completed_at = $2
		WHERE id = $1 AND status = 'READY'
	`
	return r.exec(ctx, query, id, at)
}

// CancelFrom cancels a request that is still in the given status.
func (r *RequestRepository) CancelFrom(ctx context.Context, id string, from domain.RequestStatus, reason string, at time.Time) (bool, error) {
	query := `
		UPDATE retrieval_requests
		SET status = 'CANCELLED', cancel_reason = $3, cancelled_at = $4
		WHERE id = $1 AND status = $2
	`
	return r.exec(ctx, query, id, from, reason, at)
}

// SetPaymentConfirmed records payment confirmation and the tip collected.
func (r *RequestRepository) SetPaymentConfirmed(ctx context.Context, id string, tipAmount float64) (bool, error) {
	query := `
		UPDATE retrieval_requests
		SET payment_confirmed = TRUE, tip_amount = $2
		WHERE id = $1 AND status NOT IN ('COMPLETED', 'CANCELLED')
	`
	return r.exec(ctx, query, id, tipAmount)
}

// SetCardVerified records that the driver scanned the matching card.
func (r *RequestRepository) SetCardVerified(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE retrieval_requests
		SET card_verified = TRUE
		WHERE id = $1 AND status NOT IN ('COMPLETED', 'CANCELLED')
	`
	return r.exec(ctx, query, id)
}

func (r *RequestRepository) exec(ctx context.Context, query string, args ...any) (bool, error) {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *RequestRepository) getOne(ctx context.Context, query string, args ...any) (*domain.RetrievalRequest, error) {
	request, err := scanRequest(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return request, nil
}

func (r *RequestRepository) list(ctx context.Context, query string, args ...any) ([]*domain.RetrievalRequest, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*domain.RetrievalRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

func scanRequest(s scanner) (*domain.RetrievalRequest, error) {
	var request domain.RetrievalRequest
	var assignedDriverID, cancelReason sql.NullString
	var assignedAt, readyAt, completedAt, cancelledAt sql.NullTime

	if err := s.Scan(
		&request.ID,
		&request.VehicleID,
		&request.CardID,
		&request.IsPriority,
		&request.PaymentMethod,
		&request.Amount,
		&request.TipAmount,
		&request.Status,
		&assignedDriverID,
		&request.PaymentConfirmed,
		&request.CardVerified,
		&request.RequestedAt,
		&assignedAt,
		&readyAt,
		&completedAt,
		&cancelledAt,
		&cancelReason,
	); err != nil {
		return nil, err
	}

	if assignedDriverID.Valid {
		request.AssignedDriverID = assignedDriverID.String
	}
	if cancelReason.Valid {
		request.CancelReason = cancelReason.String
	}
	if assignedAt.Valid {
		request.AssignedAt = assignedAt.Time
	}
	if readyAt.Valid {
		request.ReadyAt = readyAt.Time
	}
	if completedAt.Valid {
		request.CompletedAt = completedAt.Time
	}
	if cancelledAt.Valid {
		request.CancelledAt = cancelledAt.Time
	}

	return &request, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
