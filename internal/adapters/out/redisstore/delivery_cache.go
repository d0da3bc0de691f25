package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"deliveryhub/internal/core/application/usecases/queries"

	"github.com/redis/go-redis/v9"
)

// DefaultDeliveryCacheTTL bounds how stale a cached delivery view can get if an
// invalidation is lost.
const DefaultDeliveryCacheTTL = 5 * time.Minute

// InvalidationHold is how long an invalidated key refuses writes. A reader that
// loaded the row before the commit must finish within it or its write is lost.
const InvalidationHold = 30 * time.Second

const tombstone = "-"

// DeliveryCache stores delivery views as JSON. It implements queries.DeliveryCache
// for the read side and commands.CacheInvalidator for the write side.
//
// Set only fills an absent key and Invalidate leaves a tombstone, so a view read
// before an update cannot land after that update's invalidation.
type DeliveryCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewDeliveryCache(client redis.Cmdable, ttl time.Duration) *DeliveryCache {
	if ttl <= 0 {
		ttl = DefaultDeliveryCacheTTL
	}
	return &DeliveryCache{client: client, ttl: ttl}
}

func (c *DeliveryCache) Get(ctx context.Context, deliveryID string) (queries.DeliveryView, bool, error) {
	raw, err := c.client.Get(ctx, DeliveryKey(deliveryID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return queries.DeliveryView{}, false, nil
	}
	if err != nil {
		return queries.DeliveryView{}, false, fmt.Errorf("get cached delivery %s: %w", deliveryID, err)
	}
	if string(raw) == tombstone {
		return queries.DeliveryView{}, false, nil
	}

	var view queries.DeliveryView
	if err := json.Unmarshal(raw, &view); err != nil {
		// Drop it so the next Set can fill the key.
		_ = c.client.Del(ctx, DeliveryKey(deliveryID)).Err()
		return queries.DeliveryView{}, false, nil
	}
	return view, true, nil
}

func (c *DeliveryCache) Set(ctx context.Context, view queries.DeliveryView) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("encode delivery %s: %w", view.ID, err)
	}
	if err := c.client.SetNX(ctx, DeliveryKey(view.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache delivery %s: %w", view.ID, err)
	}
	return nil
}

func (c *DeliveryCache) Invalidate(ctx context.Context, deliveryID string) error {
	if err := c.client.Set(ctx, DeliveryKey(deliveryID), tombstone, InvalidationHold).Err(); err != nil {
		return fmt.Errorf("invalidate delivery %s: %w", deliveryID, err)
	}
	return nil
}

// DeliveryKey returns dh:delivery:{id}.
func DeliveryKey(deliveryID string) string {
	return buildKey("delivery", deliveryID)
}
