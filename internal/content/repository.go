// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

// Package content provides read access to content metadata, creator profiles,
// engagement counters, and viewer relationship flags. The feed orchestrator
// hydrates cached id batches through this package in a single batched query
// per page.
package content

import (
	"context"
	"errors"

	"github.com/arlo-hs/reelay/internal/models"
)

// ErrNotFound reports that a content item does not exist or has been deleted.
var ErrNotFound = errors.New("content not found")

// Repository reads display-ready content for a specific viewer.
type Repository interface {
	// FindByContentIDs hydrates the given ids into feed items for the viewer,
	// in the order of the input slice. Ids that no longer resolve (deleted or
	// unknown content) are omitted silently; callers must tolerate a shorter
	// result.
	FindByContentIDs(ctx context.Context, viewerID string, contentIDs []string) ([]models.FeedItem, error)

	// FindRecentlyViewed returns the viewer's most recently viewed content
	// ids, newest first, capped at limit.
	FindRecentlyViewed(ctx context.Context, viewerID string, limit int) ([]string, error)

	// FindFollowingFeed returns items from creators the viewer follows,
	// newest first, capped at limit. A non-empty cursorContentID restricts the
	// result to items published before that content item; an unknown cursor id
	// yields an empty result.
	FindFollowingFeed(ctx context.Context, viewerID, cursorContentID string, limit int) ([]models.FeedItem, error)

	// FindCreatorID resolves the creator of a content item. Returns
	// ErrNotFound for unknown or deleted content.
	FindCreatorID(ctx context.Context, contentID string) (string, error)
}
