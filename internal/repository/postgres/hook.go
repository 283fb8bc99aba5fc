package postgres

import (
	"context"
	"database/sql"
	"errors"

	"valet/internal/domain"
	"valet/internal/repository"
)

// HookRepository is a PostgreSQL implementation of repository.HookRepository.
type HookRepository struct {
	q Querier
}

// NewHookRepository creates a new PostgreSQL hook repository.
func NewHookRepository(db *sql.DB) *HookRepository {
	return &HookRepository{q: db}
}

// NewHookRepositoryWithTx creates a hook repository using a transaction.
func NewHookRepositoryWithTx(tx *sql.Tx) *HookRepository {
	return &HookRepository{q: tx}
}

// Seed ensures hooks 1..total exist. Safe to run on every startup.
func (r *HookRepository) Seed(ctx context.Context, total int) error {
	query := `
		INSERT INTO hooks (hook_number, status)
		SELECT n, 'AVAILABLE' FROM generate_series(1, $1) AS n
		ON CONFLICT (hook_number) DO NOTHING
	`
	_, err := r.q.ExecContext(ctx, query, total)
	return err
}

// Allocate claims the lowest-numbered available hook for a vehicle.
// The subselect locks the candidate row, so two concurrent allocations can
// never return the same hook; SKIP LOCKED makes the loser take the next
// free hook instead of blocking.
func (r *HookRepository) Allocate(ctx context.Context, vehicleID string) (int, error) {
	query := `
		UPDATE hooks
		SET status = 'OCCUPIED', bound_vehicle_id = $1, assigned_at = NOW()
		WHERE hook_number = (
			SELECT hook_number FROM hooks
			WHERE status = 'AVAILABLE'
			ORDER BY hook_number ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING hook_number
	`

	var hookNumber int
	err := r.q.QueryRowContext(ctx, query, vehicleID).Scan(&hookNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}

	return hookNumber, nil
}

// Release marks an occupied hook available again.
func (r *HookRepository) Release(ctx context.Context, hookNumber int) (bool, error) {
	query := `
		UPDATE hooks
		SET status = 'AVAILABLE', bound_vehicle_id = NULL, assigned_at = NULL
		WHERE hook_number = $1 AND status = 'OCCUPIED'
	`

	result, err := r.q.ExecContext(ctx, query, hookNumber)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// GetByNumber retrieves a single hook.
func (r *HookRepository) GetByNumber(ctx context.Context, hookNumber int) (*domain.Hook, error) {
	query := `SELECT hook_number, status, bound_vehicle_id FROM hooks WHERE hook_number = $1`

	hook, err := scanHook(r.q.QueryRowContext(ctx, query, hookNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return hook, nil
}

// GetAll retrieves every hook in board order.
func (r *HookRepository) GetAll(ctx context.Context) ([]*domain.Hook, error) {
	query := `SELECT hook_number, status, bound_vehicle_id FROM hooks ORDER BY hook_number ASC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hooks []*domain.Hook
	for rows.Next() {
		hook, err := scanHook(rows)
		if err != nil {
			return nil, err
		}
		hooks = append(hooks, hook)
	}
	return hooks, rows.Err()
}

// Stats returns a snapshot of pool occupancy.
func (r *HookRepository) Stats(ctx context.Context) (*domain.HookStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'AVAILABLE'),
			COUNT(*) FILTER (WHERE status = 'OCCUPIED')
		FROM hooks
	`

	var stats domain.HookStats
	err := r.q.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Available, &stats.Occupied)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// NextSequence returns the next check-in sequence number.
func (r *HookRepository) NextSequence(ctx context.Context) (int64, error) {
	var seq int64
	err := r.q.QueryRowContext(ctx, `SELECT nextval('checkin_sequence')`).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanHook(s scanner) (*domain.Hook, error) {
	var hook domain.Hook
	var boundVehicleID sql.NullString

	if err := s.Scan(&hook.Number, &hook.Status, &boundVehicleID); err != nil {
		return nil, err
	}

	if boundVehicleID.Valid {
		hook.BoundVehicleID = boundVehicleID.String
	}

	return &hook, nil
}
