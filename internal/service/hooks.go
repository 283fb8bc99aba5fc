package service

import (
	"context"
	"errors"

	"valet/internal/domain"
	internalRedis "valet/internal/redis"
	"valet/internal/repository"
)

// HookService owns the fixed pool of numbered key hooks.
type HookService struct {
	hookRepo   repository.HookRepository
	cacheStore *internalRedis.CacheStore
}

// NewHookService creates a new HookService.
func NewHookService(hookRepo repository.HookRepository, cacheStore *internalRedis.CacheStore) *HookService {
	return &HookService{
		hookRepo:   hookRepo,
		cacheStore: cacheStore,
	}
}

// Init seeds the hook board so hooks 1..total exist. Idempotent; run at
// startup.
func (s *HookService) Init(ctx context.Context, total int) error {
	return s.hookRepo.Seed(ctx, total)
}

// Allocate claims the lowest-numbered free hook for a vehicle.
func (s *HookService) Allocate(ctx context.Context, vehicleID string) (int, error) {
	hookNumber, err := s.hookRepo.Allocate(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrNoHooksAvailable
		}
		return 0, err
	}

	s.invalidateStats(ctx)

	return hookNumber, nil
}

// Release marks a hook available again. Releasing an already-free hook is
// reported as ErrHookNotOccupied so a double release surfaces to the
// caller instead of silently passing.
func (s *HookService) Release(ctx context.Context, hookNumber int) error {
	released, err := s.hookRepo.Release(ctx, hookNumber)
	if err != nil {
		return err
	}

	if !released {
		return ErrHookNotOccupied
	}

	s.invalidateStats(ctx)

	return nil
}

// Stats returns a snapshot of pool occupancy, served from cache when warm.
func (s *HookService) Stats(ctx context.Context) (*domain.HookStats, error) {
	if s.cacheStore != nil {
		cached, err := s.cacheStore.GetHookStats(ctx)
		if err == nil && cached != nil {
			return &domain.HookStats{
				Total:     cached.Total,
				Available: cached.Available,
				Occupied:  cached.Occupied,
			}, nil
		}
	}

	stats, err := s.hookRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetHookStats(ctx, &internalRedis.CachedHookStats{
			Total:     stats.Total,
			Available: stats.Available,
			Occupied:  stats.Occupied,
		})
	}

	return stats, nil
}

// Board returns every hook in board order.
func (s *HookService) Board(ctx context.Context) ([]*domain.Hook, error) {
	return s.hookRepo.GetAll(ctx)
}

func (s *HookService) invalidateStats(ctx context.Context) {
	if s.cacheStore == nil {
		return
	}
	_ = s.cacheStore.InvalidateHookStats(ctx)
}
