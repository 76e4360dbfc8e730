// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arlo-hs/reelay/internal/metrics"
)

// emptyBatchMarker is stored as the sole element of an empty batch. Redis
// deletes a list when its last element is removed, so a bare empty list cannot
// represent "cached, but exhausted"; the marker can.
const emptyBatchMarker = "\x00empty"

// RedisBatchCache is the production BatchCache backed by Redis lists.
// Each batch is one list; writes replace the list atomically inside a
// pipeline so readers never observe a partially written batch.
type RedisBatchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBatchCache creates a Redis-backed batch cache. The TTL applies to
// every stored batch; generation keys live ten times longer so a user's
// generation does not reset to zero while any of their batches could still
// exist.
func NewRedisBatchCache(client *redis.Client, ttl time.Duration) *RedisBatchCache {
	return &RedisBatchCache{
		client: client,
		ttl:    ttl,
	}
}

// GetBatch implements BatchCache.
func (c *RedisBatchCache) GetBatch(ctx context.Context, userID, language string, batchIndex int) ([]string, bool, error) {
	gen, err := c.generation(ctx, userID)
	if err != nil {
		metrics.BatchCacheErrors.WithLabelValues("redis", "get").Inc()
		return nil, false, fmt.Errorf("read cache generation: %w", err)
	}

	key := batchKey(userID, gen, language, batchIndex)
	ids, err := c.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		metrics.BatchCacheErrors.WithLabelValues("redis", "get").Inc()
		return nil, false, fmt.Errorf("read batch %s: %w", key, err)
	}
	if len(ids) == 0 {
		metrics.RecordBatchCacheLookup("redis", false)
		return nil, false, nil
	}

	metrics.RecordBatchCacheLookup("redis", true)
	if len(ids) == 1 && ids[0] == emptyBatchMarker {
		return []string{}, true, nil
	}
	return ids, true, nil
}

// PutBatch implements BatchCache.
func (c *RedisBatchCache) PutBatch(ctx context.Context, userID, language string, batchIndex int, ids []string) error {
	gen, err := c.generation(ctx, userID)
	if err != nil {
		metrics.BatchCacheErrors.WithLabelValues("redis", "put").Inc()
		return fmt.Errorf("read cache generation: %w", err)
	}

	values := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		values = append(values, id)
	}
	if len(values) == 0 {
		values = append(values, emptyBatchMarker)
	}

	key := batchKey(userID, gen, language, batchIndex)
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.RPush(ctx, key, values...)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		metrics.BatchCacheErrors.WithLabelValues("redis", "put").Inc()
		return fmt.Errorf("write batch %s: %w", key, err)
	}
	return nil
}

// SizeBatch implements BatchCache. LLEN avoids transferring the batch; the
// first element is checked so the empty-batch marker does not count as an id.
func (c *RedisBatchCache) SizeBatch(ctx context.Context, userID, language string, batchIndex int) (int, bool, error) {
	gen, err := c.generation(ctx, userID)
	if err != nil {
		metrics.BatchCacheErrors.WithLabelValues("redis", "size").Inc()
		return 0, false, fmt.Errorf("read cache generation: %w", err)
	}

	key := batchKey(userID, gen, language, batchIndex)
	pipe := c.client.Pipeline()
	lenCmd := pipe.LLen(ctx, key)
	firstCmd := pipe.LIndex(ctx, key, 0)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		metrics.BatchCacheErrors.WithLabelValues("redis", "size").Inc()
		return 0, false, fmt.Errorf("read batch length %s: %w", key, err)
	}

	length := lenCmd.Val()
	if length == 0 {
		return 0, false, nil
	}
	if length == 1 && firstCmd.Val() == emptyBatchMarker {
		return 0, true, nil
	}
	return int(length), true, nil
}

// InvalidateUser implements BatchCache. Bumping the generation counter
// abandons every cached batch for the user; the orphans expire on their own.
func (c *RedisBatchCache) InvalidateUser(ctx context.Context, userID string) error {
	key := generationKey(userID)
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 10*c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		metrics.BatchCacheErrors.WithLabelValues("redis", "invalidate").Inc()
		return fmt.Errorf("bump cache generation for %s: %w", userID, err)
	}
	return nil
}

// Ping verifies connectivity for health checks.
func (c *RedisBatchCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// generation reads the user's current cache generation, treating a missing
// key as generation zero.
func (c *RedisBatchCache) generation(ctx context.Context, userID string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return gen, nil
}
