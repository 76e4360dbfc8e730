// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// interactionRequest carries the validated path parameter of an interaction.
type interactionRequest struct {
	ContentID string `validate:"required,uuid4"`
}

// interactionOp is one InteractionService method.
type interactionOp func(ctx context.Context, userID, contentID string) (int64, error)

// handleInteraction runs one interaction endpoint: extract identity and
// content id, perform the mutation, respond with the fresh counter value
// under the given key.
func (h *Handler) handleInteraction(w http.ResponseWriter, r *http.Request, counterKey string, op interactionOp) {
	started := time.Now()
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	req := interactionRequest{ContentID: chi.URLParam(r, "id")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	count, err := op(r.Context(), userID, req.ContentID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERACTION_FAILED",
			"Failed to record interaction", err)
		return
	}

	respondSuccess(w, map[string]int64{counterKey: count}, started, false)
}

// Like handles POST /api/v1/content/{id}/like.
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	h.handleInteraction(w, r, "likes", h.interactions.Like)
}

// Unlike handles DELETE /api/v1/content/{id}/like.
func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.handleInteraction(w, r, "likes", h.interactions.Unlike)
}

// Save handles POST /api/v1/content/{id}/save.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	h.handleInteraction(w, r, "saves", h.interactions.Save)
}

// Unsave handles DELETE /api/v1/content/{id}/save.
func (h *Handler) Unsave(w http.ResponseWriter, r *http.Request) {
	h.handleInteraction(w, r, "saves", h.interactions.Unsave)
}

// Share handles POST /api/v1/content/{id}/share.
func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	h.handleInteraction(w, r, "shares", h.interactions.Share)
}

// View handles POST /api/v1/content/{id}/view.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	h.handleInteraction(w, r, "views", h.interactions.View)
}
