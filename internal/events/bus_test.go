// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// recordingSubscriber collects every event it receives.
type recordingSubscriber struct {
	name string

	mu     sync.Mutex
	events []Event
}

func (s *recordingSubscriber) Name() string { return s.name }

func (s *recordingSubscriber) Handle(_ context.Context, ev Event) error {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	return nil
}

func (s *recordingSubscriber) received() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// faultySubscriber fails or panics on every event.
type faultySubscriber struct {
	name  string
	panic bool

	mu    sync.Mutex
	calls int
}

func (s *faultySubscriber) Name() string { return s.name }

func (s *faultySubscriber) Handle(_ context.Context, _ Event) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.panic {
		panic("subscriber exploded")
	}
	return errors.New("handler failed")
}

// startBus runs the bus and returns a stop function that waits for shutdown.
func startBus(t *testing.T, b *Bus) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = b.Serve(ctx)
		close(done)
	}()
	return func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("bus did not stop")
		}
	}
}

// waitFor polls until cond returns true or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestBusDeliversToAllSubscribers(t *testing.T) {
	b := NewBus(16, 16)
	s1 := &recordingSubscriber{name: "s1"}
	s2 := &recordingSubscriber{name: "s2"}
	if err := b.Subscribe(s1); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if err := b.Subscribe(s2); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	stop := startBus(t, b)
	defer stop()

	ev := NewInteractionEvent("u1", "c1", "cr1", InteractionLike)
	b.Publish(ev)

	waitFor(t, func() bool {
		return len(s1.received()) == 1 && len(s2.received()) == 1
	})

	got := s1.received()[0].(InteractionEvent)
	if got.EventID != ev.EventID || got.Type != InteractionLike {
		t.Errorf("delivered event mismatch: %+v", got)
	}
}

func TestBusPreservesOrderPerSubscriber(t *testing.T) {
	b := NewBus(64, 64)
	s := &recordingSubscriber{name: "s"}
	if err := b.Subscribe(s); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	stop := startBus(t, b)
	defer stop()

	want := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		ev := NewInteractionEvent("u1", "c1", "cr1", InteractionView)
		want = append(want, ev.EventID)
		b.Publish(ev)
	}

	waitFor(t, func() bool { return len(s.received()) == 20 })

	for i, ev := range s.received() {
		if ev.(InteractionEvent).EventID != want[i] {
			t.Fatalf("event %d out of order", i)
		}
	}
}

func TestBusIsolatesFailingSubscriber(t *testing.T) {
	tests := []struct {
		name  string
		panic bool
	}{
		{"erroring subscriber", false},
		{"panicking subscriber", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBus(16, 16)
			bad := &faultySubscriber{name: "bad", panic: tt.panic}
			good := &recordingSubscriber{name: "good"}
			if err := b.Subscribe(bad); err != nil {
				t.Fatalf("Subscribe failed: %v", err)
			}
			if err := b.Subscribe(good); err != nil {
				t.Fatalf("Subscribe failed: %v", err)
			}
			stop := startBus(t, b)
			defer stop()

			for i := 0; i < 5; i++ {
				b.Publish(NewInteractionEvent("u1", "c1", "cr1", InteractionLike))
			}

			waitFor(t, func() bool { return len(good.received()) == 5 })

			bad.mu.Lock()
			calls := bad.calls
			bad.mu.Unlock()
			if calls == 0 {
				t.Error("faulty subscriber was never invoked")
			}
		})
	}
}

func TestBusPublishNeverBlocks(t *testing.T) {
	// Bus is never started, so the publish buffer fills and overflow must
	// drop instead of blocking.
	b := NewBus(4, 4)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(NewInteractionEvent("u1", "c1", "cr1", InteractionShare))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full buffer")
	}
}

func TestBusSubscribeAfterStartFails(t *testing.T) {
	b := NewBus(4, 4)
	stop := startBus(t, b)
	defer stop()

	waitFor(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.started
	})

	if err := b.Subscribe(&recordingSubscriber{name: "late"}); err == nil {
		t.Error("expected Subscribe after start to fail")
	}
}

func TestInteractionTypeImplicit(t *testing.T) {
	tests := []struct {
		typ  InteractionType
		want bool
	}{
		{InteractionLike, false},
		{InteractionUnlike, false},
		{InteractionSave, false},
		{InteractionUnsave, false},
		{InteractionShare, false},
		{InteractionView, true},
	}

	for _, tt := range tests {
		if got := tt.typ.Implicit(); got != tt.want {
			t.Errorf("%s.Implicit() = %v, want %v", tt.typ, got, tt.want)
		}
	}
}
