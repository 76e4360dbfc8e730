// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/arlo-hs/reelay/internal/metrics"
)

// memoryEntry is one cached batch with its expiration.
type memoryEntry struct {
	ids       []string
	expiresAt time.Time
}

// MemoryBatchCache is an in-process BatchCache with TTL expiration. It backs
// tests and single-node deployments where Redis is not configured.
type MemoryBatchCache struct {
	mu          sync.RWMutex
	entries     map[string]memoryEntry
	generations map[string]int64
	ttl         time.Duration
	stats       Stats

	stopOnce sync.Once
	stop     chan struct{}
}

// Stats tracks batch cache performance counters.
type Stats struct {
	mu          sync.RWMutex
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// NewMemoryBatchCache creates an in-memory batch cache with the given TTL.
// A background goroutine removes expired batches every 5 minutes; call Close
// to stop it.
func NewMemoryBatchCache(ttl time.Duration) *MemoryBatchCache {
	c := &MemoryBatchCache{
		entries:     make(map[string]memoryEntry),
		generations: make(map[string]int64),
		ttl:         ttl,
		stats: Stats{
			LastCleanup: time.Now(),
		},
		stop: make(chan struct{}),
	}

	go c.cleanupLoop()

	return c
}

// GetBatch implements BatchCache. Expired entries are removed on access and
// counted as misses.
func (c *MemoryBatchCache) GetBatch(_ context.Context, userID, language string, batchIndex int) ([]string, bool, error) {
	key := c.key(userID, language, batchIndex)

	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		metrics.RecordBatchCacheLookup("memory", false)
		return nil, false, nil
	}

	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.recordMiss()
		c.recordEviction()
		metrics.RecordBatchCacheLookup("memory", false)
		return nil, false, nil
	}

	c.recordHit()
	metrics.RecordBatchCacheLookup("memory", true)

	// Copy so callers cannot mutate the cached batch.
	ids := make([]string, len(entry.ids))
	copy(ids, entry.ids)
	return ids, true, nil
}

// PutBatch implements BatchCache.
func (c *MemoryBatchCache) PutBatch(_ context.Context, userID, language string, batchIndex int, ids []string) error {
	key := c.key(userID, language, batchIndex)

	stored := make([]string, len(ids))
	copy(stored, ids)

	c.mu.Lock()
	c.entries[key] = memoryEntry{
		ids:       stored,
		expiresAt: time.Now().Add(c.ttl),
	}
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.TotalKeys = total
	c.stats.mu.Unlock()

	return nil
}

// SizeBatch implements BatchCache.
func (c *MemoryBatchCache) SizeBatch(_ context.Context, userID, language string, batchIndex int) (int, bool, error) {
	key := c.key(userID, language, batchIndex)

	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists || time.Now().After(entry.expiresAt) {
		return 0, false, nil
	}
	return len(entry.ids), true, nil
}

// InvalidateUser implements BatchCache by bumping the user's generation.
// Stale entries stay in the map until the cleanup loop removes them.
func (c *MemoryBatchCache) InvalidateUser(_ context.Context, userID string) error {
	c.mu.Lock()
	c.generations[userID]++
	c.mu.Unlock()
	return nil
}

// GetStats returns a snapshot of the cache counters.
func (c *MemoryBatchCache) GetStats() Stats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()

	return Stats{
		Hits:        c.stats.Hits,
		Misses:      c.stats.Misses,
		Evictions:   c.stats.Evictions,
		TotalKeys:   c.stats.TotalKeys,
		LastCleanup: c.stats.LastCleanup,
	}
}

// HitRate returns the cache hit rate as a percentage.
func (c *MemoryBatchCache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// Close stops the background cleanup goroutine.
func (c *MemoryBatchCache) Close() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

// key folds the user's current generation into the map key.
func (c *MemoryBatchCache) key(userID, language string, batchIndex int) string {
	c.mu.RLock()
	gen := c.generations[userID]
	c.mu.RUnlock()
	return batchKey(userID, gen, language, batchIndex)
}

// cleanupLoop periodically removes expired entries.
func (c *MemoryBatchCache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

// cleanup removes all expired entries.
func (c *MemoryBatchCache) cleanup() {
	now := time.Now()
	c.mu.Lock()
	evictions := int64(0)
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			evictions++
		}
	}
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.Evictions += evictions
	c.stats.TotalKeys = total
	c.stats.LastCleanup = now
	c.stats.mu.Unlock()
}

func (c *MemoryBatchCache) recordHit() {
	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
}

func (c *MemoryBatchCache) recordMiss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
}

func (c *MemoryBatchCache) recordEviction() {
	c.stats.mu.Lock()
	c.stats.Evictions++
	c.stats.mu.Unlock()
}
