package postgres

import (
	"context"
	"database/sql"
	"errors"

	"valet/internal/domain"
	"valet/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

// Create adds a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `INSERT INTO drivers (id, name, phone, status) VALUES ($1, $2, $3, $4)`
	_, err := r.q.ExecContext(ctx, query, driver.ID, driver.Name, driver.Phone, driver.Status)
	return err
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `
		SELECT id, COALESCE(name, ''), COALESCE(phone, ''), status, active_request_id
		FROM drivers WHERE id = $1
	`

	var driver domain.Driver
	var activeRequestID sql.NullString

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&driver.ID,
		&driver.Name,
		&driver.Phone,
		&driver.Status,
		&activeRequestID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if activeRequestID.Valid {
		driver.ActiveRequestID = activeRequestID.String
	}

	return &driver, nil
}

// GetAll retrieves all drivers.
func (r *DriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	query := `
		SELECT id, COALESCE(name, ''), COALESCE(phone, ''), status, active_request_id
		FROM drivers ORDER BY name
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		var driver domain.Driver
		var activeRequestID sql.NullString
		if err := rows.Scan(
			&driver.ID,
			&driver.Name,
			&driver.Phone,
			&driver.Status,
			&activeRequestID,
		); err != nil {
			return nil, err
		}
		if activeRequestID.Valid {
			driver.ActiveRequestID = activeRequestID.String
		}
		drivers = append(drivers, &driver)
	}
	return drivers, rows.Err()
}

// ClaimRequest marks an available driver busy with the given request.
// The guard on active_request_id enforces one active task per driver.
func (r *DriverRepository) ClaimRequest(ctx context.Context, driverID, requestID string) (bool, error) {
	query := `
		UPDATE drivers
		SET status = 'BUSY', active_request_id = $2
		WHERE id = $1 AND status = 'AVAILABLE' AND active_request_id IS NULL
	`

	result, err := r.q.ExecContext(ctx, query, driverID, requestID)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// ReleaseRequest clears the driver's active request.
func (r *DriverRepository) ReleaseRequest(ctx context.Context, driverID string) (bool, error) {
	query := `
		UPDATE drivers
		SET status = 'AVAILABLE', active_request_id = NULL
		WHERE id = $1 AND active_request_id IS NOT NULL
	`

	result, err := r.q.ExecContext(ctx, query, driverID)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// UpdateStatus sets a driver's status directly.
func (r *DriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	query := `UPDATE drivers SET status = $2 WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
