package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireRequestLock attempts to acquire a lock for the given retrieval
// request. Returns true if the lock was acquired, false if already held.
// Two dispatchers racing to assign the same request serialize here before
// the database guard settles the winner.
func (s *LockStore) AcquireRequestLock(ctx context.Context, requestID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:request:%s", requestID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseRequestLock releases the lock for the given request.
func (s *LockStore) ReleaseRequestLock(ctx context.Context, requestID string) error {
	key := fmt.Sprintf("lock:request:%s", requestID)

	return s.client.Del(ctx, key).Err()
}

// AcquireCardLock attempts to acquire a lock for the given card. Held
// around the clear flow so the safety check and the physical erase cannot
// interleave with a concurrent check-in on the same card.
func (s *LockStore) AcquireCardLock(ctx context.Context, cardID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:card:%s", cardID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseCardLock releases the lock for the given card.
func (s *LockStore) ReleaseCardLock(ctx context.Context, cardID string) error {
	key := fmt.Sprintf("lock:card:%s", cardID)

	return s.client.Del(ctx, key).Err()
}
