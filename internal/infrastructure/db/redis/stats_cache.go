package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oralvis/oralvis-api/internal/core/ports"
)

const (
	statsKey = "stats:scans"
	statsTTL = time.Minute
)

// StatsCache holds the most recent scan statistics aggregate in Redis.
// Entries expire after statsTTL and are invalidated on every insert, so a
// cached read is never more than a minute stale.
type StatsCache struct {
	client *redis.Client
}

// NewStatsCache creates a StatsCache wrapping the given Redis client.
func NewStatsCache(client *redis.Client) *StatsCache {
	return &StatsCache{client: client}
}

// Get returns the cached aggregate and whether one was present.
func (c *StatsCache) Get(ctx context.Context) (*ports.ScanStats, bool, error) {
	val, err := c.client.Get(ctx, statsKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("stats cache get: %w", err)
	}

	var stats ports.ScanStats
	if err := json.Unmarshal([]byte(val), &stats); err != nil {
		return nil, false, fmt.Errorf("stats cache decode: %w", err)
	}
	return &stats, true, nil
}

// Set stores the aggregate with the cache TTL.
func (c *StatsCache) Set(ctx context.Context, stats *ports.ScanStats) error {
	b, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("stats cache encode: %w", err)
	}
	return c.client.Set(ctx, statsKey, b, statsTTL).Err()
}

// Invalidate drops the cached aggregate.
func (c *StatsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, statsKey).Err()
}
