package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"valet/internal/domain"
	internalRedis "valet/internal/redis"
	"valet/internal/repository"
)

const cardClearLockTTL = 15 * time.Second

// CardService is the token registry: it owns the mapping from a physical
// card identifier to its active vehicle binding and gates every release
// behind the safety predicate. Clearing a card still bound to a parked
// vehicle would strand that vehicle's only retrieval key, so there is no
// fail-open path anywhere in this service: an error from the safety check
// is treated as unsafe.
type CardService struct {
	cardRepo  repository.CardRepository
	lockStore internalRedis.LockStoreInterface
	reader    CardReader
}

// NewCardService creates a new CardService.
func NewCardService(
	cardRepo repository.CardRepository,
	lockStore internalRedis.LockStoreInterface,
	reader CardReader,
) *CardService {
	return &CardService{
		cardRepo:  cardRepo,
		lockStore: lockStore,
		reader:    reader,
	}
}

// Bind binds a card to a vehicle, registering the card on first use.
func (s *CardService) Bind(ctx context.Context, cardID, vehicleID string) error {
	if cardID == "" {
		return ErrInvalidCardID
	}
	if vehicleID == "" {
		return ErrInvalidVehicleID
	}

	_, err := s.cardRepo.GetByCardID(ctx, cardID)
	if errors.Is(err, repository.ErrNotFound) {
		err = s.cardRepo.Create(ctx, &domain.Card{
			CardID:    cardID,
			Status:    domain.CardStatusUnbound,
			CreatedAt: time.Now(),
		})
	}
	if err != nil {
		return err
	}

	bound, err := s.cardRepo.Bind(ctx, cardID, vehicleID)
	if err != nil {
		return err
	}

	if !bound {
		return ErrCardAlreadyBound
	}

	return nil
}

// CanSafelyClear reports whether the physical tag may be erased. True iff
// no vehicle bound to this card is still in custody.
func (s *CardService) CanSafelyClear(ctx context.Context, cardID string) (bool, error) {
	if cardID == "" {
		return false, ErrInvalidCardID
	}

	return s.cardRepo.CanSafelyClear(ctx, cardID)
}

// Release transitions a bound card back to unbound. The safety predicate
// is re-evaluated inside the update itself, so a check-in racing this call
// cannot slip a new binding in between check and release.
func (s *CardService) Release(ctx context.Context, cardID string) error {
	if cardID == "" {
		return ErrInvalidCardID
	}

	card, err := s.cardRepo.GetByCardID(ctx, cardID)
	if err != nil {
		return err
	}

	if !card.IsBound() {
		return ErrCardNotBound
	}

	released, err := s.cardRepo.ReleaseIfSafe(ctx, cardID)
	if err != nil {
		return err
	}

	if !released {
		return ErrUnsafeToRelease
	}

	return nil
}

// Clear erases the physical tag and releases the registry binding. The
// card is locked for the duration so a concurrent check-in cannot rebind
// it between the safety check and the erase.
func (s *CardService) Clear(ctx context.Context, cardID string) error {
	if cardID == "" {
		return ErrInvalidCardID
	}

	if s.lockStore != nil {
		locked, err := s.lockStore.AcquireCardLock(ctx, cardID, cardClearLockTTL)
		if err != nil {
			return err
		}
		if !locked {
			return ErrCardAlreadyBound
		}
		defer func() { _ = s.lockStore.ReleaseCardLock(ctx, cardID) }()
	}

	safe, err := s.cardRepo.CanSafelyClear(ctx, cardID)
	if err != nil {
		// A failed safety check is unsafe, never a pass.
		return fmt.Errorf("card clear safety check: %w", err)
	}
	if !safe {
		return ErrUnsafeToRelease
	}

	// Park the binding in PENDING_CLEAR while the hardware erase runs so
	// the card cannot be handed out mid-clear.
	marked, err := s.cardRepo.SetStatus(ctx, cardID, domain.CardStatusBound, domain.CardStatusPendingClear)
	if err != nil {
		return err
	}

	if s.reader != nil {
		if err := s.reader.ClearTag(ctx, cardID); err != nil {
			if marked {
				_, _ = s.cardRepo.SetStatus(ctx, cardID, domain.CardStatusPendingClear, domain.CardStatusBound)
			}
			return fmt.Errorf("clear tag: %w", err)
		}
	}

	if marked {
		released, err := s.cardRepo.ReleaseIfSafe(ctx, cardID)
		if err != nil {
			return err
		}
		if !released {
			return ErrUnsafeToRelease
		}
	}

	return nil
}

// Get retrieves a card by its physical identifier.
func (s *CardService) Get(ctx context.Context, cardID string) (*domain.Card, error) {
	if cardID == "" {
		return nil, ErrInvalidCardID
	}

	return s.cardRepo.GetByCardID(ctx, cardID)
}
