package postgres

import (
	"context"
	"database/sql"
	"errors"

	"valet/internal/domain"
	"valet/internal/repository"
)

// VehicleRepository is a PostgreSQL implementation of repository.VehicleRepository.
type VehicleRepository struct {
	q Querier
}

// NewVehicleRepository creates a new PostgreSQL vehicle repository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{q: db}
}

// NewVehicleRepositoryWithTx creates a vehicle repository using a transaction.
func NewVehicleRepositoryWithTx(tx *sql.Tx) *VehicleRepository {
	return &VehicleRepository{q: tx}
}

const vehicleColumns = `id, card_id, hook_number, sequence_number, license_plate, make, model, color, customer_phone, status, check_in_time, check_out_time`

// Create persists a new vehicle record.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	query := `
		INSERT INTO vehicles (` + vehicleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	var customerPhone sql.NullString
	if vehicle.CustomerPhone != "" {
		customerPhone = sql.NullString{String: vehicle.CustomerPhone, Valid: true}
	}

	var checkOutTime sql.NullTime
	if !vehicle.CheckOutTime.IsZero() {
		checkOutTime = sql.NullTime{Time: vehicle.CheckOutTime, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		vehicle.ID,
		vehicle.CardID,
		vehicle.HookNumber,
		vehicle.SequenceNumber,
		vehicle.LicensePlate,
		vehicle.Make,
		vehicle.Model,
		vehicle.Color,
		customerPhone,
		vehicle.Status,
		vehicle.CheckInTime,
		checkOutTime,
	)

	return err
}

// GetByID retrieves a vehicle by ID.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetActiveByCardID retrieves the vehicle currently bound to a card.
func (r *VehicleRepository) GetActiveByCardID(ctx context.Context, cardID string) (*domain.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + ` FROM vehicles
		WHERE card_id = $1 AND status <> 'RETRIEVED'
		ORDER BY check_in_time DESC LIMIT 1
	`
	return r.getOne(ctx, query, cardID)
}

// GetActiveByPlate retrieves a not-yet-retrieved vehicle by plate.
func (r *VehicleRepository) GetActiveByPlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + ` FROM vehicles
		WHERE license_plate = $1 AND status <> 'RETRIEVED'
		ORDER BY check_in_time DESC LIMIT 1
	`
	return r.getOne(ctx, query, plate)
}

// ListByStatus retrieves vehicles in a given status, newest first.
func (r *VehicleRepository) ListByStatus(ctx context.Context, status domain.VehicleStatus) ([]*domain.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + ` FROM vehicles
		WHERE status = $1 ORDER BY sequence_number DESC
	`
	return r.list(ctx, query, status)
}

// ListActive retrieves every vehicle still in custody.
func (r *VehicleRepository) ListActive(ctx context.Context) ([]*domain.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + ` FROM vehicles
		WHERE status <> 'RETRIEVED' ORDER BY sequence_number DESC
	`
	return r.list(ctx, query)
}

// UpdateStatusFrom moves a vehicle between statuses with a compare-and-set
// on the current status. A move to RETRIEVED stamps the check-out time.
func (r *VehicleRepository) UpdateStatusFrom(ctx context.Context, id string, from, to domain.VehicleStatus) (bool, error) {
	query := `
		UPDATE vehicles
		SET status = $3,
		    check_out_time = CASE WHEN $3 = 'RETRIEVED' THEN NOW() ELSE check_out_time END
		WHERE id = $1 AND status = $2
	`

	result, err := r.q.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *VehicleRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Vehicle, error) {
	vehicle, err := scanVehicle(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return vehicle, nil
}

func (r *VehicleRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Vehicle, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}
	return vehicles, rows.Err()
}

func scanVehicle(s scanner) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	var customerPhone sql.NullString
	var checkOutTime sql.NullTime

	if err := s.Scan(
		&vehicle.ID,
		&vehicle.CardID,
		&vehicle.HookNumber,
		&vehicle.SequenceNumber,
		&vehicle.LicensePlate,
		&vehicle.Make,
		&vehicle.Model,
		&vehicle.Color,
		&customerPhone,
		&vehicle.Status,
		&vehicle.CheckInTime,
		&checkOutTime,
	); err != nil {
		return nil, err
	}

	if customerPhone.Valid {
		vehicle.CustomerPhone = customerPhone.String
	}
	if checkOutTime.Valid {
		vehicle.CheckOutTime = checkOutTime.Time
	}

	return &vehicle, nil
}
