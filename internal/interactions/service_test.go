// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

package interactions

import (
	"context"
	"errors"
	"testing"

	"github.com/arlo-hs/reelay/internal/events"
)

// fakeStore implements Store with an in-memory model of unique interactions
// and floor-at-zero counters, mirroring the SQL semantics.
type fakeStore struct {
	likes    map[string]bool // userID+"/"+contentID
	saves    map[string]bool
	counters map[string]int64 // counter+"/"+contentID
	err      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		likes:    make(map[string]bool),
		saves:    make(map[string]bool),
		counters: make(map[string]int64),
	}
}

func (f *fakeStore) adjust(counter, contentID string, delta int64) int64 {
	key := counter + "/" + contentID
	v := f.counters[key] + delta
	if v < 0 {
		v = 0
	}
	f.counters[key] = v
	return v
}

func (f *fakeStore) insertUnique(set map[string]bool, counter, userID, contentID string) (Mutation, error) {
	if f.err != nil {
		return Mutation{}, f.err
	}
	key := userID + "/" + contentID
	if set[key] {
		return Mutation{Count: f.counters[counter+"/"+contentID], Changed: false}, nil
	}
	set[key] = true
	return Mutation{Count: f.adjust(counter, contentID, 1), Changed: true}, nil
}

func (f *fakeStore) deleteUnique(set map[string]bool, counter, userID, contentID string) (Mutation, error) {
	if f.err != nil {
		return Mutation{}, f.err
	}
	key := userID + "/" + contentID
	if !set[key] {
		return Mutation{Count: f.counters[counter+"/"+contentID], Changed: false}, nil
	}
	delete(set, key)
	return Mutation{Count: f.adjust(counter, contentID, -1), Changed: true}, nil
}

func (f *fakeStore) Like(_ context.Context, userID, contentID string) (Mutation, error) {
	return f.insertUnique(f.likes, counterLikes, userID, contentID)
}

func (f *fakeStore) Unlike(_ context.Context, userID, contentID string) (Mutation, error) {
	return f.deleteUnique(f.likes, counterLikes, userID, contentID)
}

func (f *fakeStore) Save(_ context.Context, userID, contentID string) (Mutation, error) {
	return f.insertUnique(f.saves, counterSaves, userID, contentID)
}

func (f *fakeStore) Unsave(_ context.Context, userID, contentID string) (Mutation, error) {
	return f.deleteUnique(f.saves, counterSaves, userID, contentID)
}

func (f *fakeStore) Share(_ context.Context, _, contentID string) (Mutation, error) {
	if f.err != nil {
		return Mutation{}, f.err
	}
	return Mutation{Count: f.adjust(counterShares, contentID, 1), Changed: true}, nil
}

func (f *fakeStore) View(_ context.Context, _, contentID string) (Mutation, error) {
	if f.err != nil {
		return Mutation{}, f.err
	}
	return Mutation{Count: f.adjust(counterViews, contentID, 1), Changed: true}, nil
}

// capturingBus records published events synchronously.
type capturingBus struct {
	published []events.Event
}

func (b *capturingBus) Publish(ev events.Event) {
	b.published = append(b.published, ev)
}

func TestServiceLikePublishesEvent(t *testing.T) {
	bus := &capturingBus{}
	svc := NewService(newFakeStore(), bus)

	count, err := svc.Like(context.Background(), "u1", "c1")
	if err != nil {
		t.Fatalf("Like failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.published))
	}
	ev := bus.published[0].(events.InteractionEvent)
	if ev.Type != events.InteractionLike || ev.UserID != "u1" || ev.ContentID != "c1" {
		t.Errorf("event = %+v", ev)
	}
}

func TestServiceRepeatedLikeIsIdempotent(t *testing.T) {
	bus := &capturingBus{}
	svc := NewService(newFakeStore(), bus)
	ctx := context.Background()

	if _, err := svc.Like(ctx, "u1", "c1"); err != nil {
		t.Fatalf("Like failed: %v", err)
	}
	count, err := svc.Like(ctx, "u1", "c1")
	if err != nil {
		t.Fatalf("repeated Like failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count after repeat = %d, want 1", count)
	}
	// No state change, no event.
	if len(bus.published) != 1 {
		t.Errorf("published %d events, want 1", len(bus.published))
	}
}

func TestServiceUnlikeFloorsAtZero(t *testing.T) {
	bus := &capturingBus{}
	svc := NewService(newFakeStore(), bus)
	ctx := context.Background()

	// Unlike without a prior like: no change, counter stays at zero.
	count, err := svc.Unlike(ctx, "u1", "c1")
	if err != nil {
		t.Fatalf("Unlike failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
	if len(bus.published) != 0 {
		t.Errorf("published %d events, want 0", len(bus.published))
	}
}

func TestServiceLikeUnlikeRoundTrip(t *testing.T) {
	bus := &capturingBus{}
	svc := NewService(newFakeStore(), bus)
	ctx := context.Background()

	if _, err := svc.Like(ctx, "u1", "c1"); err != nil {
		t.Fatalf("Like failed: %v", err)
	}
	count, err := svc.Unlike(ctx, "u1", "c1")
	if err != nil {
		t.Fatalf("Unlike failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
	if len(bus.published) != 2 {
		t.Fatalf("published %d events, want 2", len(bus.published))
	}
	if bus.published[1].(events.InteractionEvent).Type != events.InteractionUnlike {
		t.Errorf("second event = %+v", bus.published[1])
	}
}

func TestServiceShareAlwaysCounts(t *testing.T) {
	bus := &capturingBus{}
	svc := NewService(newFakeStore(), bus)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		count, err := svc.Share(ctx, "u1", "c1")
		if err != nil {
			t.Fatalf("Share failed: %v", err)
		}
		if count != want {
			t.Errorf("count = %d, want %d", count, want)
		}
	}
	if len(bus.published) != 3 {
		t.Errorf("published %d events, want 3", len(bus.published))
	}
}

func TestServiceViewPublishesImplicitSignal(t *testing.T) {
	bus := &capturingBus{}
	svc := NewService(newFakeStore(), bus)

	if _, err := svc.View(context.Background(), "u1", "c1"); err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.published))
	}
	ev := bus.published[0].(events.InteractionEvent)
	if ev.Type != events.InteractionView || !ev.Type.Implicit() {
		t.Errorf("event = %+v, want implicit view", ev)
	}
}

func TestServiceStoreFailurePublishesNothing(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("tx aborted")
	bus := &capturingBus{}
	svc := NewService(store, bus)

	if _, err := svc.Like(context.Background(), "u1", "c1"); err == nil {
		t.Fatal("expected error from failing store")
	}
	// The write failed, so downstream must see no event.
	if len(bus.published) != 0 {
		t.Errorf("published %d events after failed write, want 0", len(bus.published))
	}
}
