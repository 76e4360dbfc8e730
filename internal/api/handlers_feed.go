// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/arlo-hs/reelay/internal/recommend"
)

// feedRequest carries the validated query parameters of a feed page request.
type feedRequest struct {
	Limit    int    `validate:"omitempty,gte=1,lte=1000"`
	Language string `validate:"omitempty,bcp47_language_tag"`
	Cursor   string `validate:"omitempty,max=64"`
}

// Feed handles GET /api/v1/feed.
//
// Query parameters:
//   - cursor: opaque pagination token from a previous page (optional)
//   - limit: page size (optional, clamped server-side)
//   - language: preferred content language (optional)
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	req := feedRequest{
		Limit:    getIntParam(r, "limit", 0),
		Language: r.URL.Query().Get("language"),
		Cursor:   r.URL.Query().Get("cursor"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	page, cached, err := h.feed.GetMainFeed(r.Context(), userID, req.Language, req.Cursor, req.Limit)
	if err != nil {
		if errors.Is(err, recommend.ErrUnavailable) {
			respondError(w, http.StatusServiceUnavailable, "FEED_UNAVAILABLE",
				"Feed is temporarily unavailable, please retry", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "SERVICE_ERROR",
			"Failed to assemble feed", err)
		return
	}

	respondSuccess(w, page, started, cached)
}

// FollowingFeed handles GET /api/v1/feed/following.
func (h *Handler) FollowingFeed(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	req := feedRequest{
		Limit:  getIntParam(r, "limit", 0),
		Cursor: r.URL.Query().Get("cursor"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	page, err := h.feed.GetFollowingFeed(r.Context(), userID, req.Cursor, req.Limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "SERVICE_ERROR",
			"Failed to load following feed", err)
		return
	}

	respondSuccess(w, page, started, false)
}

// RefreshFeed handles POST /api/v1/feed/refresh. The next page request
// re-ranks from scratch.
func (h *Handler) RefreshFeed(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.feed.Refresh(r.Context(), userID); err != nil {
		respondError(w, http.StatusInternalServerError, "SERVICE_ERROR",
			"Failed to refresh feed", err)
		return
	}

	respondSuccess(w, map[string]string{"status": "refreshed"}, started, false)
}
