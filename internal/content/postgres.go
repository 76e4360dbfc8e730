// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arlo-hs/reelay/internal/models"
)

// PostgresRepository is the pgx-backed Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a Postgres-backed content repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// feedItemColumns is the shared select list for hydrated feed items.
// $1 is always the viewer id so the per-viewer flags can be computed in the
// same round trip as the metadata.
const feedItemColumns = `
	c.content_id,
	c.content_type,
	COALESCE(c.caption, ''),
	COALESCE(c.language, ''),
	COALESCE(c.category, ''),
	COALESCE(c.video_url, ''),
	COALESCE(c.thumbnail_url, ''),
	COALESCE(c.media_urls, '{}'),
	COALESCE(c.duration_sec, 0),
	c.published_at,
	u.user_id,
	u.username,
	COALESCE(u.display_name, ''),
	COALESCE(u.avatar_url, ''),
	EXISTS (SELECT 1 FROM follows f WHERE f.follower_id = $1 AND f.followee_id = u.user_id),
	COALESCE(e.likes, 0),
	COALESCE(e.saves, 0),
	COALESCE(e.shares, 0),
	COALESCE(e.views, 0),
	EXISTS (SELECT 1 FROM content_likes l WHERE l.user_id = $1 AND l.content_id = c.content_id),
	EXISTS (SELECT 1 FROM content_saves s WHERE s.user_id = $1 AND s.content_id = c.content_id)`

// FindByContentIDs implements Repository. One query hydrates the whole page;
// results come back in input order with unresolvable ids dropped.
func (r *PostgresRepository) FindByContentIDs(ctx context.Context, viewerID string, contentIDs []string) ([]models.FeedItem, error) {
	if len(contentIDs) == 0 {
		return []models.FeedItem{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+feedItemColumns+`
		FROM content c
		JOIN users u ON u.user_id = c.creator_id
		LEFT JOIN engagement_totals e ON e.content_id = c.content_id
		WHERE c.content_id = ANY($2)
		  AND c.deleted_at IS NULL`,
		viewerID, contentIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("query content batch: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]models.FeedItem, len(contentIDs))
	for rows.Next() {
		item, err := scanFeedItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content row: %w", err)
		}
		byID[item.ContentID] = item
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content rows: %w", err)
	}

	// Batch order is ranking order; the map loses it, so rebuild from input.
	items := make([]models.FeedItem, 0, len(byID))
	for _, id := range contentIDs {
		if item, ok := byID[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// FindRecentlyViewed implements Repository.
func (r *PostgresRepository) FindRecentlyViewed(ctx context.Context, viewerID string, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT content_id
		FROM content_views
		WHERE user_id = $1
		ORDER BY viewed_at DESC
		LIMIT $2`,
		viewerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recently viewed: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, limit)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan viewed id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate viewed rows: %w", err)
	}
	return ids, nil
}

// FindFollowingFeed implements Repository. Keyset pagination on
// (published_at, content_id) keeps deep pages as cheap as the first one; the
// cursor content's publication instant is resolved in the same query.
func (r *PostgresRepository) FindFollowingFeed(ctx context.Context, viewerID, cursorContentID string, limit int) ([]models.FeedItem, error) {
	query := `
		SELECT ` + feedItemColumns + `
		FROM content c
		JOIN users u ON u.user_id = c.creator_id
		JOIN follows fw ON fw.followee_id = c.creator_id AND fw.follower_id = $1
		LEFT JOIN engagement_totals e ON e.content_id = c.content_id
		WHERE c.deleted_at IS NULL`
	args := []any{viewerID}

	if cursorContentID != "" {
		// The cursor row is matched without the deleted_at filter so
		// pagination survives the cursor content being taken down.
		query += `
		  AND (c.published_at, c.content_id) < (
			SELECT published_at, content_id FROM content WHERE content_id = $2)`
		args = append(args, cursorContentID)
	}

	query += fmt.Sprintf(`
		ORDER BY c.published_at DESC, c.content_id DESC
		LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query following feed: %w", err)
	}
	defer rows.Close()

	items := make([]models.FeedItem, 0, limit)
	for rows.Next() {
		item, err := scanFeedItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan following row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate following rows: %w", err)
	}
	return items, nil
}

// FindCreatorID implements Repository.
func (r *PostgresRepository) FindCreatorID(ctx context.Context, contentID string) (string, error) {
	var creatorID string
	err := r.pool.QueryRow(ctx, `
		SELECT creator_id
		FROM content
		WHERE content_id = $1
		  AND deleted_at IS NULL`,
		contentID,
	).Scan(&creatorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("query creator id: %w", err)
	}
	return creatorID, nil
}

// Ping verifies connectivity for health checks.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// scanFeedItem reads one feedItemColumns row into a FeedItem, shaping media
// fields by content type.
func scanFeedItem(rows pgx.Rows) (models.FeedItem, error) {
	var (
		item      models.FeedItem
		videoURL  string
		mediaURLs []string
	)
	err := rows.Scan(
		&item.ContentID,
		&item.Type,
		&item.Caption,
		&item.Language,
		&item.Category,
		&videoURL,
		&item.ThumbnailURL,
		&mediaURLs,
		&item.DurationSec,
		&item.PublishedAt,
		&item.Creator.UserID,
		&item.Creator.Username,
		&item.Creator.DisplayName,
		&item.Creator.AvatarURL,
		&item.Creator.IsFollowed,
		&item.Counts.Likes,
		&item.Counts.Saves,
		&item.Counts.Shares,
		&item.Counts.Views,
		&item.Viewer.IsLiked,
		&item.Viewer.IsSaved,
	)
	if err != nil {
		return models.FeedItem{}, err
	}

	switch item.Type {
	case models.ContentTypeGallery:
		item.MediaURLs = mediaURLs
	default:
		item.VideoURL = videoURL
	}
	return item, nil
}
