package repository

import (
	"context"

	"valet/internal/domain"
)

// HookRepository defines the persistence operations for the hook pool.
type HookRepository interface {
	// Seed ensures hooks 1..total exist, all available. Idempotent.
	Seed(ctx context.Context, total int) error

	// Allocate atomically claims the lowest-numbered available hook for
	// the given vehicle and returns its number. Returns ErrNotFound when
	// no hook is free.
	Allocate(ctx context.Context, vehicleID string) (int, error)

	// Release marks an occupied hook available again. Returns false when
	// the hook was not occupied.
	Release(ctx context.Context, hookNumber int) (bool, error)

	// GetByNumber retrieves a single hook.
	GetByNumber(ctx context.Context, hookNumber int) (*domain.Hook, error)

	// GetAll retrieves every hook in board order.
	GetAll(ctx context.Context) ([]*domain.Hook, error)

	// Stats returns a snapshot of pool occupancy.
	Stats(ctx context.Context) (*domain.HookStats, error)

	// NextSequence returns the next check-in sequence number.
	NextSequence(ctx context.Context) (int64, error)
}
