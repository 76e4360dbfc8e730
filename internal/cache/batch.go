// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

// Package cache implements the feed batch cache: ordered batches of content
// identifiers keyed by user, language, and batch index. Only identifiers are
// cached; items are re-hydrated on every page request so engagement counters
// and viewer flags never go stale with the batch.
//
// Two implementations are provided: a Redis-backed store for production
// (batches survive process restarts and are shared across replicas) and an
// in-memory store for tests and single-node deployments.
package cache

import (
	"context"
	"fmt"
)

// BatchCache stores ordered content-id batches per (user, language, batch index).
//
// A user-level generation counter is folded into every key: bumping the
// generation on InvalidateUser makes all of a user's cached batches
// unreachable at once without enumerating keys. Orphaned batches age out
// through their TTL.
type BatchCache interface {
	// GetBatch returns the cached id batch, or found=false on a miss.
	// Order is preserved exactly as stored.
	GetBatch(ctx context.Context, userID, language string, batchIndex int) (ids []string, found bool, err error)

	// PutBatch stores an id batch, replacing any previous value for the key.
	// Storing an empty batch is valid and remembers that the source was
	// exhausted at this index.
	PutBatch(ctx context.Context, userID, language string, batchIndex int, ids []string) error

	// SizeBatch returns the number of ids stored for the key without
	// transferring the batch, or found=false on a miss.
	SizeBatch(ctx context.Context, userID, language string, batchIndex int) (size int, found bool, err error)

	// InvalidateUser discards all cached batches for a user across every
	// language and batch index.
	InvalidateUser(ctx context.Context, userID string) error
}

// batchKey builds the cache key for one batch. The generation counter sits
// between the user and the language so a bump invalidates every language at
// once.
func batchKey(userID string, generation int64, language string, batchIndex int) string {
	return fmt.Sprintf("feed:batch:%s:%d:%s:%d", userID, generation, language, batchIndex)
}

// generationKey builds the key holding a user's current cache generation.
func generationKey(userID string) string {
	return fmt.Sprintf("feed:gen:%s", userID)
}
