package repository

import (
	"context"

	"valet/internal/domain"
)

// CardRepository defines the persistence operations for NFC cards.
type CardRepository interface {
	// Create registers a card on its first successful tag write.
	Create(ctx context.Context, card *domain.Card) error

	// GetByCardID retrieves a card by its physical identifier.
	GetByCardID(ctx context.Context, cardID string) (*domain.Card, error)

	// Bind binds an unbound card to a vehicle. Returns false when the
	// card is not currently unbound.
	Bind(ctx context.Context, cardID, vehicleID string) (bool, error)

	// ReleaseIfSafe transitions the card to unbound, but only while no
	// vehicle bound to it has a status other than retrieved. The safety
	// predicate is evaluated in the same statement as the update so it
	// cannot go stale between check and write. Returns false when the
	// release was refused.
	ReleaseIfSafe(ctx context.Context, cardID string) (bool, error)

	// CanSafelyClear reports whether the physical tag may be erased:
	// true iff no vehicle bound to this card is still in custody.
	CanSafelyClear(ctx context.Context, cardID string) (bool, error)

	// SetStatus moves a card between lifecycle states with a
	// compare-and-set on the current status. Returns false on mismatch.
	SetStatus(ctx context.Context, cardID string, from, to domain.CardStatus) (bool, error)
}
