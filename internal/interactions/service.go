// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

package interactions

import (
	"context"
	"time"

	"github.com/arlo-hs/reelay/internal/events"
	"github.com/arlo-hs/reelay/internal/metrics"
)

// Publisher is the slice of the event bus the service needs.
type Publisher interface {
	Publish(ev events.Event)
}

// Service coordinates interaction writes and event publication.
//
// The critical path of every operation is exactly one transaction: the
// interaction row plus its counter. The event publish after commit is
// non-blocking; side effects ride the bus.
type Service struct {
	store Store
	bus   Publisher
}

// NewService creates the interaction service.
func NewService(store Store, bus Publisher) *Service {
	return &Service{store: store, bus: bus}
}

// Like records a like and returns the resulting like count.
func (s *Service) Like(ctx context.Context, userID, contentID string) (int64, error) {
	return s.mutate(ctx, userID, contentID, counterLikes, events.InteractionLike, s.store.Like)
}

// Unlike removes a like and returns the resulting like count.
func (s *Service) Unlike(ctx context.Context, userID, contentID string) (int64, error) {
	return s.mutate(ctx, userID, contentID, counterLikes, events.InteractionUnlike, s.store.Unlike)
}

// Save records a save and returns the resulting save count.
func (s *Service) Save(ctx context.Context, userID, contentID string) (int64, error) {
	return s.mutate(ctx, userID, contentID, counterSaves, events.InteractionSave, s.store.Save)
}

// Unsave removes a save and returns the resulting save count.
func (s *Service) Unsave(ctx context.Context, userID, contentID string) (int64, error) {
	return s.mutate(ctx, userID, contentID, counterSaves, events.InteractionUnsave, s.store.Unsave)
}

// Share records a share and returns the resulting share count.
func (s *Service) Share(ctx context.Context, userID, contentID string) (int64, error) {
	return s.mutate(ctx, userID, contentID, counterShares, events.InteractionShare, s.store.Share)
}

// View records a view and returns the resulting view count.
func (s *Service) View(ctx context.Context, userID, contentID string) (int64, error) {
	return s.mutate(ctx, userID, contentID, counterViews, events.InteractionView, s.store.View)
}

// op is the shape shared by all Store mutations.
type op func(ctx context.Context, userID, contentID string) (Mutation, error)

// mutate runs one store operation, records its metric, and publishes an
// event if state actually changed. Idempotent repeats publish nothing: no
// state changed, so there is nothing for subscribers to react to.
func (s *Service) mutate(ctx context.Context, userID, contentID, counter string, kind events.InteractionType, fn op) (int64, error) {
	start := time.Now()
	m, err := fn(ctx, userID, contentID)
	metrics.RecordCounterMutation(counter, time.Since(start), err)
	if err != nil {
		return 0, err
	}

	if m.Changed {
		// Creator id resolves on the subscriber side, off the request path.
		s.bus.Publish(events.NewInteractionEvent(userID, contentID, "", kind))
	}
	return m.Count, nil
}
