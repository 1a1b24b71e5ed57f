package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/linhcentrio/16Food-QLSX/internal/mrp/engine"
	"github.com/redis/go-redis/v9"
)

// costCache holds computed cost breakdowns in redis, keyed by product and
// pricing date. A nil client disables caching; the read/write paths degrade
// to misses so cost calculation never depends on redis being up.
type costCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func newCostCache(rdb *redis.Client, ttl time.Duration) *costCache {
	return &costCache{rdb: rdb, ttl: ttl}
}

func costKey(productID string, asOf time.Time) string {
	return fmt.Sprintf("qlsx:cost:%s:%s", productID, asOf.Format("2006-01-02"))
}

func (c *costCache) Get(ctx context.Context, productID string, asOf time.Time) (*engine.CostBreakdown, bool) {
	if c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, costKey(productID, asOf)).Bytes()
	if err != nil {
		return nil, false
	}
	var breakdown engine.CostBreakdown
	if err := json.Unmarshal(raw, &breakdown); err != nil {
		return nil, false
	}
	return &breakdown, true
}

func (c *costCache) Put(ctx context.Context, breakdown *engine.CostBreakdown) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(breakdown)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, costKey(breakdown.ProductID, breakdown.PricingDate), raw, c.ttl)
}

// Invalidate drops every cached breakdown of the given products, all pricing
// dates included.
func (c *costCache) Invalidate(ctx context.Context, productIDs ...string) {
	if c.rdb == nil {
		return
	}
	for _, id := range productIDs {
		iter := c.rdb.Scan(ctx, 0, fmt.Sprintf("qlsx:cost:%s:*", id), 0).Iterator()
		for iter.Next(ctx) {
			c.rdb.Del(ctx, iter.Val())
		}
	}
}
