package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/repository"
)

const statsKeyPrefix = "provider:stats:"

// ErrMiss is returned when no cached stats exist for a provider.
var ErrMiss = fmt.Errorf("stats cache miss")

// StatsCache caches per-provider appointment statistics in Redis with a short
// TTL. Stats are derived counts, so a stale read within the TTL is acceptable;
// appointment transitions invalidate the key eagerly anyway.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache creates a Redis-backed provider stats cache.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves cached stats for a provider. Returns ErrMiss when absent.
func (c *StatsCache) Get(ctx context.Context, providerID string) (*repository.AppointmentStats, error) {
	key := statsKeyPrefix + providerID

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("redis get provider stats: %w", err)
	}

	var stats repository.AppointmentStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("unmarshal provider stats: %w", err)
	}

	return &stats, nil
}

// Set stores stats for a provider with the configured TTL.
func (c *StatsCache) Set(ctx context.Context, providerID string, stats *repository.AppointmentStats) error {
	key := statsKeyPrefix + providerID

	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal provider stats: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set provider stats: %w", err)
	}

	return nil
}

// Invalidate drops the cached stats for a provider.
func (c *StatsCache) Invalidate(ctx context.Context, providerID string) error {
	key := statsKeyPrefix + providerID

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del provider stats: %w", err)
	}

	return nil
}
