package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles read-snapshot caching in Redis. Clients poll the
// queue and the hook board frequently; short TTLs keep those reads off
// the database without serving stale assignments for long.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	QueueCacheTTL     = 3 * time.Second // Queue order changes on every assign/advance
	HookStatsCacheTTL = 5 * time.Second
)

// Cache keys
const (
	queueCacheKey     = "cache:queue"
	hookStatsCacheKey = "cache:hooks:stats"
)

// CachedQueueEntry is one row of the cached dispatch queue snapshot.
type CachedQueueEntry struct {
	RequestID      string  `json:"request_id"`
	VehicleID      string  `json:"vehicle_id"`
	CardID         string  `json:"card_id"`
	HookNumber     int     `json:"hook_number"`
	LicensePlate   string  `json:"license_plate"`
	SequenceNumber int64   `json:"sequence_number"`
	IsPriority     bool    `json:"is_priority"`
	Status         string  `json:"status"`
	DriverID       string  `json:"driver_id,omitempty"`
	Amount         float64 `json:"amount"`
	RequestedAt    string  `json:"requested_at"`
}

// CachedHookStats is the cached hook board snapshot.
type CachedHookStats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Occupied  int `json:"occupied"`
}

// GetQueue retrieves the cached queue snapshot. Returns nil on cache miss.
func (s *CacheStore) GetQueue(ctx context.Context) ([]CachedQueueEntry, error) {
	data, err := s.client.Get(ctx, queueCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var entries []CachedQueueEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SetQueue stores the queue snapshot.
func (s *CacheStore) SetQueue(ctx context.Context, entries []CachedQueueEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, queueCacheKey, data, QueueCacheTTL).Err()
}

// InvalidateQueue removes the queue snapshot from cache. Called after any
// mutation that changes queue order or membership.
func (s *CacheStore) InvalidateQueue(ctx context.Context) error {
	return s.client.Del(ctx, queueCacheKey).Err()
}

// GetHookStats retrieves cached hook stats. Returns nil on cache miss.
func (s *CacheStore) GetHookStats(ctx context.Context) (*CachedHookStats, error) {
	data, err := s.client.Get(ctx, hookStatsCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var stats CachedHookStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SetHookStats stores hook stats.
func (s *CacheStore) SetHookStats(ctx context.Context, stats *CachedHookStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, hookStatsCacheKey, data, HookStatsCacheTTL).Err()
}

// InvalidateHookStats removes hook stats from cache.
func (s *CacheStore) InvalidateHookStats(ctx context.Context) error {
	return s.client.Del(ctx, hookStatsCacheKey).Err()
}
