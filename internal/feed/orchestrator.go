// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/arlo-hs/reelay/internal/cache"
	"github.com/arlo-hs/reelay/internal/config"
	"github.com/arlo-hs/reelay/internal/content"
	"github.com/arlo-hs/reelay/internal/logging"
	"github.com/arlo-hs/reelay/internal/metrics"
	"github.com/arlo-hs/reelay/internal/models"
	"github.com/arlo-hs/reelay/internal/recommend"
)

// Orchestrator assembles feed pages.
//
// The main feed reads content ids from the batch cache, regenerating a batch
// through the recommendation provider on a miss, then hydrates the page slice
// through the content repository. Only ids are ever cached; counts and viewer
// flags are always read fresh at hydration time.
type Orchestrator struct {
	cache    cache.BatchCache
	provider recommend.Provider
	repo     content.Repository
	cfg      config.FeedConfig
}

// NewOrchestrator creates a feed orchestrator.
func NewOrchestrator(c cache.BatchCache, p recommend.Provider, r content.Repository, cfg config.FeedConfig) *Orchestrator {
	return &Orchestrator{
		cache:    c,
		provider: p,
		repo:     r,
		cfg:      cfg,
	}
}

// GetMainFeed returns one page of the personalized feed.
//
// The cursor addresses an absolute offset into the user's ranked id stream.
// A page is served entirely from the one batch its offset falls in: the
// slice is [withinBatchOffset, withinBatchOffset+limit+1), where the extra
// id decides HasNext. When fewer than limit+1 ids remain in the batch the
// page is the batch tail and pagination ends there. Cached ids that no
// longer resolve are dropped silently, so a page may come back shorter than
// the requested limit while HasNext is still true.
//
// cached reports whether the page was served without regenerating the batch.
func (o *Orchestrator) GetMainFeed(ctx context.Context, userID, language, cursor string, limit int) (page *models.FeedPage, cached bool, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordFeedRequest("main", time.Since(start), err)
	}()

	language = o.normalizeLanguage(language)
	limit = o.clampLimit(limit)
	offset := decodeOffsetCursor(cursor)
	batchIndex := int(offset / int64(o.cfg.BatchSize))
	within := int(offset % int64(o.cfg.BatchSize))

	batch, cached, err := o.loadBatch(ctx, userID, language, batchIndex)
	if err != nil {
		return nil, false, err
	}

	var ids []string
	if within < len(batch) {
		end := within + limit + 1
		if end > len(batch) {
			end = len(batch)
		}
		ids = batch[within:end]
	}

	hasNext := len(ids) > limit
	if hasNext {
		ids = ids[:limit]
	}

	items, err := o.hydrate(ctx, userID, ids)
	if err != nil {
		return nil, false, err
	}

	page = &models.FeedPage{
		Content: items,
		HasNext: hasNext,
	}
	if hasNext {
		page.NextCursor = encodeOffsetCursor(offset + int64(limit))
	}
	return page, cached, nil
}

// GetFollowingFeed returns one page of the chronological feed of followed
// creators. It never touches the batch cache or the recommender; recency is
// the ranking. The cursor is the content id of the last item on the previous
// page.
func (o *Orchestrator) GetFollowingFeed(ctx context.Context, userID, cursor string, limit int) (page *models.FeedPage, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordFeedRequest("following", time.Since(start), err)
	}()

	limit = o.clampLimit(limit)

	items, err := o.repo.FindFollowingFeed(ctx, userID, cursor, limit+1)
	if err != nil {
		return nil, fmt.Errorf("load following feed: %w", err)
	}

	hasNext := len(items) > limit
	if hasNext {
		items = items[:limit]
	}

	page = &models.FeedPage{
		Content: items,
		HasNext: hasNext,
	}
	if hasNext {
		page.NextCursor = items[len(items)-1].ContentID
	}
	return page, nil
}

// Refresh discards every cached batch for the user so their next page is
// re-ranked from scratch.
func (o *Orchestrator) Refresh(ctx context.Context, userID string) error {
	if err := o.cache.InvalidateUser(ctx, userID); err != nil {
		return fmt.Errorf("invalidate feed cache: %w", err)
	}
	logging.Debug().Str("user_id", userID).Msg("Feed cache invalidated")
	return nil
}

// loadBatch returns one id batch, from cache when possible. Cache errors
// degrade to a miss; provider errors are fatal for the request because there
// is no ranking to serve without it.
func (o *Orchestrator) loadBatch(ctx context.Context, userID, language string, batchIndex int) ([]string, bool, error) {
	batch, found, err := o.cache.GetBatch(ctx, userID, language, batchIndex)
	if err != nil {
		logging.Warn().
			Err(err).
			Str("user_id", userID).
			Int("batch_index", batchIndex).
			Msg("Batch cache read failed, regenerating")
	} else if found {
		return batch, true, nil
	}

	batch, err = o.generateBatch(ctx, userID, language, batchIndex)
	if err != nil {
		return nil, false, err
	}
	return batch, false, nil
}

// generateBatch asks the provider for a fresh batch and caches it. The
// recently-viewed exclusion keeps regenerated batches from resurfacing what
// the user just watched.
func (o *Orchestrator) generateBatch(ctx context.Context, userID, language string, batchIndex int) ([]string, error) {
	start := time.Now()

	exclude, err := o.repo.FindRecentlyViewed(ctx, userID, o.cfg.ExcludeRecentlyViewed)
	if err != nil {
		// Worst case the user sees a repeat; not worth failing the feed.
		logging.Warn().Err(err).Str("user_id", userID).Msg("Recently-viewed lookup failed")
		exclude = nil
	}

	batch, err := o.provider.Recommend(ctx, recommend.Request{
		UserID:            userID,
		Language:          language,
		Limit:             o.cfg.BatchSize,
		ExcludeContentIDs: exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("generate batch %d: %w", batchIndex, err)
	}
	metrics.BatchGenerationDuration.Observe(time.Since(start).Seconds())

	if err := o.cache.PutBatch(ctx, userID, language, batchIndex, batch); err != nil {
		logging.Warn().
			Err(err).
			Str("user_id", userID).
			Int("batch_index", batchIndex).
			Msg("Batch cache write failed")
	}
	return batch, nil
}

// hydrate turns a page of ids into display-ready items, preserving order and
// dropping ids that no longer resolve.
func (o *Orchestrator) hydrate(ctx context.Context, userID string, ids []string) ([]models.FeedItem, error) {
	start := time.Now()
	items, err := o.repo.FindByContentIDs(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate feed page: %w", err)
	}
	metrics.HydrationDuration.Observe(time.Since(start).Seconds())

	if dropped := len(ids) - len(items); dropped > 0 {
		metrics.HydrationDropped.Add(float64(dropped))
		logging.Debug().
			Str("user_id", userID).
			Int("dropped", dropped).
			Msg("Dropped unresolvable content ids during hydration")
	}
	return items, nil
}

// clampLimit applies the default and maximum page size.
func (o *Orchestrator) clampLimit(limit int) int {
	if limit <= 0 {
		return o.cfg.DefaultPageSize
	}
	if limit > o.cfg.MaxPageSize {
		return o.cfg.MaxPageSize
	}
	return limit
}

// normalizeLanguage applies the default language.
func (o *Orchestrator) normalizeLanguage(language string) string {
	if language == "" {
		return o.cfg.DefaultLanguage
	}
	return language
}
