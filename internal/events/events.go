// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

// Package events implements the in-process event bus that decouples
// interaction side effects from the request path. Counter writes commit
// synchronously in the interaction transaction; everything downstream of them
// (signal recording for the recommender, push notifications) consumes events
// from this bus.
//
// Delivery is best effort: a full buffer drops the event rather than blocking
// a request handler, and a failing subscriber never affects other subscribers
// or the publisher.
package events

import (
	"time"

	"github.com/google/uuid"
)

// InteractionType enumerates the user actions that produce events.
type InteractionType string

const (
	InteractionLike   InteractionType = "like"
	InteractionUnlike InteractionType = "unlike"
	InteractionSave   InteractionType = "save"
	InteractionUnsave InteractionType = "unsave"
	InteractionShare  InteractionType = "share"
	InteractionView   InteractionType = "view"
)

// Implicit reports whether the interaction was produced by passive
// consumption rather than a deliberate user action. Implicit signals carry
// less recommendation weight and never trigger notifications.
func (t InteractionType) Implicit() bool {
	return t == InteractionView
}

// InteractionEvent is published after an interaction has been durably
// recorded. Subscribers can rely on the underlying row and counter update
// having committed before the event existed.
type InteractionEvent struct {
	EventID    string          `json:"event_id"`
	UserID     string          `json:"user_id"`
	ContentID  string          `json:"content_id"`
	CreatorID  string          `json:"creator_id"`
	Type       InteractionType `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Kind returns the metrics label for this event family.
func (InteractionEvent) Kind() string { return "interaction" }

// Event is the closed set of payloads the bus carries.
type Event interface {
	Kind() string
}

// NewInteractionEvent builds an InteractionEvent with a fresh id and
// timestamp.
func NewInteractionEvent(userID, contentID, creatorID string, t InteractionType) InteractionEvent {
	return InteractionEvent{
		EventID:    uuid.NewString(),
		UserID:     userID,
		ContentID:  contentID,
		CreatorID:  creatorID,
		Type:       t,
		OccurredAt: time.Now().UTC(),
	}
}
