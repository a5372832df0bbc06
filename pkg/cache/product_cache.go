package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"terang/internal/models"
)

// recentKey tracks the most recently cached product ids, trimmed to a
// fixed length so the list stays bounded.
const (
	recentKey    = "products:recent"
	recentLength = 99
)

// ProductCache is a read-through product cache on Redis. The client is
// injected and the TTL fixed at construction; there is no package-level
// singleton.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProductCache creates a ProductCache with the given TTL.
func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{
		client: client,
		ttl:    ttl,
	}
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

// Get returns the cached product, or nil on a cache miss.
func (c *ProductCache) Get(ctx context.Context, id string) (*models.Product, error) {
	payload, err := c.client.Get(ctx, productKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read product %s from cache: %w", id, err)
	}

	var product models.Product
	if err := json.Unmarshal([]byte(payload), &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached product %s: %w", id, err)
	}
	return &product, nil
}

// Set stores a product with the configured TTL and records it on the
// bounded recent list.
func (c *ProductCache) Set(ctx context.Context, product *models.Product) error {
	payload, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product %s: %w", product.ID, err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, productKey(product.ID), payload, c.ttl)
	pipe.LPush(ctx, recentKey, product.ID)
	pipe.LTrim(ctx, recentKey, 0, recentLength)
	pipe.Expire(ctx, recentKey, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache product %s: %w", product.ID, err)
	}
	return nil
}

// Invalidate drops a product from the cache and the recent list.
func (c *ProductCache) Invalidate(ctx context.Context, id string) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, productKey(id))
	pipe.LRem(ctx, recentKey, 0, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate product %s: %w", id, err)
	}
	return nil
}
