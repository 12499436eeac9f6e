package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/model"
)

const costStandardKeyPrefix = "cost_standards:"

// CostStandardSource loads the rows an estimate needs.
type CostStandardSource interface {
	ListForEstimate(ctx context.Context, category, district string) ([]model.CostStandard, error)
}

// CostStandards is a read-through cache in front of a CostStandardSource.
// Redis failures fall back to the source; they never fail an estimate.
type CostStandards struct {
	rdb  *redis.Client
	next CostStandardSource
	ttl  time.Duration
}

// NewCostStandards wraps next with a Redis cache.
func NewCostStandards(rdb *redis.Client, next CostStandardSource, ttl time.Duration) *CostStandards {
	return &CostStandards{rdb: rdb, next: next, ttl: ttl}
}

// costStandardKey length-prefixes the district so that names containing
// the separator cannot collide.
func costStandardKey(category, district string) string {
	return costStandardKeyPrefix + strconv.Itoa(len(district)) + ":" + district + ":" + category
}

func (c *CostStandards) ListForEstimate(ctx context.Context, category, district string) ([]model.CostStandard, error) {
	key := costStandardKey(category, district)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var rows []model.CostStandard
		if err := json.Unmarshal(raw, &rows); err == nil {
			return rows, nil
		}
		slog.Warn("cache: corrupt cost standard entry", "key", key)
	case !errors.Is(err, redis.Nil):
		slog.Warn("cache: get failed", "key", key, "error", err)
	}

	rows, err := c.next.ListForEstimate(ctx, category, district)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(rows); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			slog.Warn("cache: set failed", "key", key, "error", err)
		}
	}
	return rows, nil
}

// Invalidate drops every cached cost-standard entry. Called after admin
// writes and imports.
func (c *CostStandards) Invalidate(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, costStandardKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
