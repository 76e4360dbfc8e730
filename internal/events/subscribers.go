// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

package events

import (
	"context"
	"fmt"

	"github.com/arlo-hs/reelay/internal/logging"
)

// SignalStore persists interaction signals for the recommendation pipeline.
type SignalStore interface {
	RecordSignal(ctx context.Context, ev InteractionEvent) error
}

// SignalRecorder feeds every interaction event into the signal store. The
// recommender trains on these signals offline; losing one under pressure
// degrades relevance slightly but never correctness, which is why signal
// recording lives behind the bus instead of in the request transaction.
type SignalRecorder struct {
	store SignalStore
}

// NewSignalRecorder creates the signal recording subscriber.
func NewSignalRecorder(store SignalStore) *SignalRecorder {
	return &SignalRecorder{store: store}
}

// Name implements Subscriber.
func (r *SignalRecorder) Name() string { return "signal-recorder" }

// Handle implements Subscriber.
func (r *SignalRecorder) Handle(ctx context.Context, ev Event) error {
	ie, ok := ev.(InteractionEvent)
	if !ok {
		return nil
	}
	if err := r.store.RecordSignal(ctx, ie); err != nil {
		return fmt.Errorf("record signal %s: %w", ie.EventID, err)
	}
	return nil
}

// PushSender delivers a push notification to a single user. Implementations
// wrap whatever push gateway is deployed; delivery is fire-and-forget.
type PushSender interface {
	SendPush(ctx context.Context, recipientID, title, body string) error
}

// CreatorResolver maps a content id to its creator. The content repository
// satisfies it.
type CreatorResolver interface {
	FindCreatorID(ctx context.Context, contentID string) (string, error)
}

// NotificationNotifier turns positive interactions into creator
// notifications. Only deliberate, positive actions notify: likes, saves, and
// shares. Removals and implicit views stay silent, as do self-interactions.
//
// Creator lookup happens here, on the subscriber goroutine, so the request
// path pays for nothing beyond the interaction write itself.
type NotificationNotifier struct {
	sender   PushSender
	resolver CreatorResolver
}

// NewNotificationNotifier creates the notification subscriber.
func NewNotificationNotifier(sender PushSender, resolver CreatorResolver) *NotificationNotifier {
	return &NotificationNotifier{sender: sender, resolver: resolver}
}

// Name implements Subscriber.
func (n *NotificationNotifier) Name() string { return "notification-notifier" }

// Handle implements Subscriber.
func (n *NotificationNotifier) Handle(ctx context.Context, ev Event) error {
	ie, ok := ev.(InteractionEvent)
	if !ok {
		return nil
	}
	if !positiveInteraction(ie.Type) {
		return nil
	}
	if ie.CreatorID == "" {
		creatorID, err := n.resolver.FindCreatorID(ctx, ie.ContentID)
		if err != nil {
			// Content may have been deleted between interaction and
			// delivery; nothing to notify then.
			return nil
		}
		ie.CreatorID = creatorID
	}
	title, body, notify := notificationText(ie)
	if !notify {
		return nil
	}
	if err := n.sender.SendPush(ctx, ie.CreatorID, title, body); err != nil {
		return fmt.Errorf("send push for %s: %w", ie.EventID, err)
	}
	logging.Debug().
		Str("creator_id", ie.CreatorID).
		Str("type", string(ie.Type)).
		Msg("Creator notification sent")
	return nil
}

// positiveInteraction reports whether an interaction type can ever notify.
func positiveInteraction(t InteractionType) bool {
	switch t {
	case InteractionLike, InteractionSave, InteractionShare:
		return true
	default:
		return false
	}
}

// notificationText maps an interaction to its notification copy, or reports
// that no notification should be sent.
func notificationText(ie InteractionEvent) (title, body string, notify bool) {
	if ie.CreatorID == "" || ie.CreatorID == ie.UserID {
		return "", "", false
	}
	switch ie.Type {
	case InteractionLike:
		return "New like", "Someone liked your video", true
	case InteractionSave:
		return "New save", "Someone saved your video", true
	case InteractionShare:
		return "New share", "Someone shared your video", true
	default:
		return "", "", false
	}
}
