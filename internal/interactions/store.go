// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

// Package interactions records user engagement: likes, saves, shares, and
// views. Each mutation commits the interaction row and its aggregate counter
// in one transaction, so the counter a client reads back is never ahead of or
// behind the row that justifies it. Everything else that follows from an
// interaction happens asynchronously via the event bus.
package interactions

import (
	"context"
)

// Mutation is the result of one interaction write.
type Mutation struct {
	// Count is the aggregate counter value after the write committed.
	Count int64

	// Changed reports whether the write altered state. Re-liking already
	// liked content, or unliking content that was never liked, commits
	// nothing and leaves the counter untouched.
	Changed bool
}

// Store persists interactions transactionally with their counters.
type Store interface {
	// Like records a like. Idempotent: a repeated like reports Changed=false
	// and returns the current count.
	Like(ctx context.Context, userID, contentID string) (Mutation, error)

	// Unlike removes a like. Removing an absent like reports Changed=false;
	// the counter never goes below zero.
	Unlike(ctx context.Context, userID, contentID string) (Mutation, error)

	// Save and Unsave mirror Like and Unlike for the save collection.
	Save(ctx context.Context, userID, contentID string) (Mutation, error)
	Unsave(ctx context.Context, userID, contentID string) (Mutation, error)

	// Share records a share. Shares are not unique per user; every call
	// appends a row and bumps the counter.
	Share(ctx context.Context, userID, contentID string) (Mutation, error)

	// View upserts the user's view record (refreshing its recency) and bumps
	// the view counter.
	View(ctx context.Context, userID, contentID string) (Mutation, error)
}
