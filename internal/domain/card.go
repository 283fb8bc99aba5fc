package domain

import "time"

// CardStatus represents the lifecycle state of a reusable NFC card.
type CardStatus string

const (
	CardStatusUnbound      CardStatus = "UNBOUND"
	CardStatusBound        CardStatus = "BOUND"
	CardStatusPendingClear CardStatus = "PENDING_CLEAR"
)

// Card represents a physical NFC tag handed to the customer at check-in.
// A card is bound to at most one vehicle at a time and may only return to
// UNBOUND once that vehicle has been retrieved.
type Card struct {
	CardID         string
	Status         CardStatus
	BoundVehicleID string
	TotalUses      int
	LastUsedAt     time.Time
	CreatedAt      time.Time
}

// IsBound reports whether the card currently holds a vehicle binding.
func (c *Card) IsBound() bool {
	return c.Status == CardStatusBound || c.Status == CardStatusPendingClear
}
