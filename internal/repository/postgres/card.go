package postgres

import (
	"context"
	"database/sql"
	"errors"

	"valet/internal/domain"
	"valet/internal/repository"
)

// CardRepository is a PostgreSQL implementation of repository.CardRepository.
type CardRepository struct {
	q Querier
}

// NewCardRepository creates a new PostgreSQL card repository.
func NewCardRepository(db *sql.DB) *CardRepository {
	return &CardRepository{q: db}
}

// NewCardRepositoryWithTx creates a card repository using a transaction.
func NewCardRepositoryWithTx(tx *sql.Tx) *CardRepository {
	return &CardRepository{q: tx}
}

// Create registers a card.
func (r *CardRepository) Create(ctx context.Context, card *domain.Card) error {
	query := `
		INSERT INTO nfc_cards (card_id, status, bound_vehicle_id, total_uses, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	var boundVehicleID sql.NullString
	if card.BoundVehicleID != "" {
		boundVehicleID = sql.NullString{String: card.BoundVehicleID, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		card.CardID,
		card.Status,
		boundVehicleID,
		card.TotalUses,
		card.CreatedAt,
	)

	return err
}

// GetByCardID retrieves a card by its physical identifier.
func (r *CardRepository) GetByCardID(ctx context.Context, cardID string) (*domain.Card, error) {
	query := `
		SELECT card_id, status, bound_vehicle_id, total_uses, last_used_at, created_at
		FROM nfc_cards WHERE card_id = $1
	`

	var card domain.Card
	var boundVehicleID sql.NullString
	var lastUsedAt sql.NullTime

	err := r.q.QueryRowContext(ctx, query, cardID).Scan(
		&card.CardID,
		&card.Status,
		&boundVehicleID,
		&card.TotalUses,
		&lastUsedAt,
		&card.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if boundVehicleID.Valid {
		card.BoundVehicleID = boundVehicleID.String
	}
	if lastUsedAt.Valid {
		card.LastUsedAt = lastUsedAt.Time
	}

	return &card, nil
}

// Bind binds an unbound card to a vehicle.
func (r *CardRepository) Bind(ctx context.Context, cardID, vehicleID string) (bool, error) {
	query := `
		UPDATE nfc_cards
		SET status = 'BOUND', bound_vehicle_id = $2, last_used_at = NOW()
		WHERE card_id = $1 AND status = 'UNBOUND'
	`

	result, err := r.q.ExecContext(ctx, query, cardID, vehicleID)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// ReleaseIfSafe unbinds the card unless a vehicle bound to it is still in
// custody. The NOT EXISTS guard runs in the same statement as the update,
// so the safety check cannot go stale between evaluation and write.
func (r *CardRepository) ReleaseIfSafe(ctx context.Context, cardID string) (bool, error) {
	query := `
		UPDATE nfc_cards
		SET status = 'UNBOUND', bound_vehicle_id = NULL,
		    total_uses = total_uses + 1, last_used_at = NOW()
		WHERE card_id = $1
		  AND status IN ('BOUND', 'PENDING_CLEAR')
		  AND NOT EXISTS (
			SELECT 1 FROM vehicles v
			WHERE v.card_id = $1 AND v.status <> 'RETRIEVED'
		  )
	`

	result, err := r.q.ExecContext(ctx, query, cardID)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// CanSafelyClear reports whether the physical tag may be erased.
func (r *CardRepository) CanSafelyClear(ctx context.Context, cardID string) (bool, error) {
	query := `
		SELECT NOT EXISTS (
			SELECT 1 FROM vehicles v
			WHERE v.card_id = $1 AND v.status <> 'RETRIEVED'
		)
	`

	var safe bool
	if err := r.q.QueryRowContext(ctx, query, cardID).Scan(&safe); err != nil {
		return false, err
	}

	return safe, nil
}

// SetStatus moves a card between lifecycle states with a compare-and-set
// on the current status.
func (r *CardRepository) SetStatus(ctx context.Context, cardID string, from, to domain.CardStatus) (bool, error) {
	query := `UPDATE nfc_cards SET status = $3 WHERE card_id = $1 AND status = $2`

	result, err := r.q.ExecContext(ctx, query, cardID, from, to)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}
