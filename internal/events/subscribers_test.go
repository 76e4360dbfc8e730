// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

package events

import (
	"context"
	"errors"
	"testing"
)

type fakeSignalStore struct {
	recorded []InteractionEvent
	err      error
}

func (s *fakeSignalStore) RecordSignal(_ context.Context, ev InteractionEvent) error {
	if s.err != nil {
		return s.err
	}
	s.recorded = append(s.recorded, ev)
	return nil
}

type fakePushSender struct {
	sent []string // recipient ids
	err  error
}

func (s *fakePushSender) SendPush(_ context.Context, recipientID, _, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, recipientID)
	return nil
}

type fakeCreatorResolver struct {
	creators map[string]string
}

func (r *fakeCreatorResolver) FindCreatorID(_ context.Context, contentID string) (string, error) {
	if id, ok := r.creators[contentID]; ok {
		return id, nil
	}
	return "", errors.New("content not found")
}

func TestSignalRecorderRecordsAllInteractions(t *testing.T) {
	store := &fakeSignalStore{}
	rec := NewSignalRecorder(store)
	ctx := context.Background()

	for _, typ := range []InteractionType{
		InteractionLike, InteractionUnlike, InteractionView, InteractionShare,
	} {
		ev := NewInteractionEvent("u1", "c1", "cr1", typ)
		if err := rec.Handle(ctx, ev); err != nil {
			t.Fatalf("Handle(%s) failed: %v", typ, err)
		}
	}

	if len(store.recorded) != 4 {
		t.Errorf("recorded %d signals, want 4", len(store.recorded))
	}
}

func TestSignalRecorderPropagatesStoreError(t *testing.T) {
	rec := NewSignalRecorder(&fakeSignalStore{err: errors.New("db down")})
	ev := NewInteractionEvent("u1", "c1", "cr1", InteractionLike)
	if err := rec.Handle(context.Background(), ev); err == nil {
		t.Error("expected store error to propagate")
	}
}

func TestNotificationNotifier(t *testing.T) {
	tests := []struct {
		name      string
		userID    string
		creatorID string
		typ       InteractionType
		wantPush  bool
	}{
		{"like notifies creator", "u1", "cr1", InteractionLike, true},
		{"save notifies creator", "u1", "cr1", InteractionSave, true},
		{"share notifies creator", "u1", "cr1", InteractionShare, true},
		{"unlike stays silent", "u1", "cr1", InteractionUnlike, false},
		{"unsave stays silent", "u1", "cr1", InteractionUnsave, false},
		{"view stays silent", "u1", "cr1", InteractionView, false},
		{"self-like stays silent", "u1", "u1", InteractionLike, false},
		{"missing creator stays silent", "u1", "", InteractionLike, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakePushSender{}
			n := NewNotificationNotifier(sender, &fakeCreatorResolver{})
			ev := NewInteractionEvent(tt.userID, "c1", tt.creatorID, tt.typ)

			if err := n.Handle(context.Background(), ev); err != nil {
				t.Fatalf("Handle failed: %v", err)
			}

			if tt.wantPush {
				if len(sender.sent) != 1 || sender.sent[0] != tt.creatorID {
					t.Errorf("sent = %v, want one push to %s", sender.sent, tt.creatorID)
				}
			} else if len(sender.sent) != 0 {
				t.Errorf("unexpected push sent: %v", sender.sent)
			}
		})
	}
}

func TestNotificationNotifierResolvesCreator(t *testing.T) {
	sender := &fakePushSender{}
	n := NewNotificationNotifier(sender, &fakeCreatorResolver{
		creators: map[string]string{"c1": "cr9"},
	})

	// Event carries no creator id; the notifier must resolve it.
	ev := NewInteractionEvent("u1", "c1", "", InteractionLike)
	if err := n.Handle(context.Background(), ev); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "cr9" {
		t.Errorf("sent = %v, want push to cr9", sender.sent)
	}
}

func TestNotificationNotifierSkipsDeletedContent(t *testing.T) {
	sender := &fakePushSender{}
	n := NewNotificationNotifier(sender, &fakeCreatorResolver{})

	ev := NewInteractionEvent("u1", "gone", "", InteractionLike)
	if err := n.Handle(context.Background(), ev); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("unexpected push for deleted content: %v", sender.sent)
	}
}
