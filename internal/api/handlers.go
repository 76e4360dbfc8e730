// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

// Package api implements the HTTP surface of Reelay: feed pages, interaction
// endpoints, and health probes, all wrapped in the standard APIResponse
// envelope.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/arlo-hs/reelay/internal/models"
)

// FeedService is the slice of the feed orchestrator the handlers need.
type FeedService interface {
	GetMainFeed(ctx context.Context, userID, language, cursor string, limit int) (*models.FeedPage, bool, error)
	GetFollowingFeed(ctx context.Context, userID, cursor string, limit int) (*models.FeedPage, error)
	Refresh(ctx context.Context, userID string) error
}

// InteractionService is the slice of the interaction service the handlers
// need. Every method returns the post-mutation counter value.
type InteractionService interface {
	Like(ctx context.Context, userID, contentID string) (int64, error)
	Unlike(ctx context.Context, userID, contentID string) (int64, error)
	Save(ctx context.Context, userID, contentID string) (int64, error)
	Unsave(ctx context.Context, userID, contentID string) (int64, error)
	Share(ctx context.Context, userID, contentID string) (int64, error)
	View(ctx context.Context, userID, contentID string) (int64, error)
}

// Pinger reports dependency health.
type Pinger func(ctx context.Context) error

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	feed         FeedService
	interactions InteractionService

	dbPing    Pinger
	cachePing Pinger
	version   string
	startedAt time.Time
}

// NewHandler creates the API handler set.
func NewHandler(feed FeedService, interactions InteractionService, dbPing, cachePing Pinger, version string) *Handler {
	return &Handler{
		feed:         feed,
		interactions: interactions,
		dbPing:       dbPing,
		cachePing:    cachePing,
		version:      version,
		startedAt:    time.Now(),
	}
}

// HealthLive is the liveness probe: the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, map[string]string{"status": "alive"}, time.Now(), false)
}

// HealthReady is the readiness probe: dependencies answer.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{
		"database": "ok",
		"cache":    "ok",
	}
	healthy := true

	if h.dbPing != nil {
		if err := h.dbPing(ctx); err != nil {
			checks["database"] = err.Error()
			healthy = false
		}
	}
	if h.cachePing != nil {
		if err := h.cachePing(ctx); err != nil {
			checks["cache"] = err.Error()
			healthy = false
		}
	}

	if !healthy {
		respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Status:   "error",
			Data:     checks,
			Metadata: models.Metadata{Timestamp: time.Now()},
			Error: &models.APIError{
				Code:    "SERVICE_ERROR",
				Message: "One or more dependencies are unavailable",
			},
		})
		return
	}
	respondSuccess(w, checks, time.Now(), false)
}

// Health reports overall service status with uptime and version.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, map[string]interface{}{
		"status":         "ok",
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	}, time.Now(), false)
}
