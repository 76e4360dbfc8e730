// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/arlo-hs/reelay/internal/logging"
	"github.com/arlo-hs/reelay/internal/metrics"
)

// Subscriber consumes events from the bus. Handle runs on the subscriber's
// own goroutine; a returned error is logged and counted but never propagated,
// and a panic is recovered the same way.
type Subscriber interface {
	// Name identifies the subscriber in logs and metrics.
	Name() string

	// Handle processes one event. The context is the bus's serve context and
	// is canceled on shutdown.
	Handle(ctx context.Context, ev Event) error
}

// Bus is a bounded, non-blocking multicast event bus.
//
// Publishers write into a single buffered channel; a dispatcher goroutine
// fans events out to one buffered queue per subscriber. Sends never block:
// when the publish buffer or a subscriber queue is full the event is dropped
// and counted. Subscribers are isolated from each other by their own queues
// and goroutines.
//
// The Bus is constructed explicitly and passed to its users; there is no
// package-level instance. Register subscribers before Serve starts.
type Bus struct {
	publishCh   chan Event
	subBuffer   int
	subscribers []*subscription

	mu      sync.Mutex
	started bool
}

type subscription struct {
	sub Subscriber
	ch  chan Event
}

// NewBus creates a bus with the given publish buffer capacity and
// per-subscriber queue capacity.
func NewBus(bufferSize, subscriberBuffer int) *Bus {
	if bufferSize < 1 {
		bufferSize = 1
	}
	if subscriberBuffer < 1 {
		subscriberBuffer = 1
	}
	return &Bus{
		publishCh: make(chan Event, bufferSize),
		subBuffer: subscriberBuffer,
	}
}

// Subscribe registers a subscriber. It must be called before the bus starts
// serving; registration after startup returns an error instead of racing the
// dispatcher.
func (b *Bus) Subscribe(sub Subscriber) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return fmt.Errorf("cannot subscribe %q: bus already started", sub.Name())
	}
	b.subscribers = append(b.subscribers, &subscription{
		sub: sub,
		ch:  make(chan Event, b.subBuffer),
	})
	return nil
}

// Publish offers an event to the bus without blocking. When the publish
// buffer is full the event is dropped, counted, and logged; the caller's
// request path is never delayed.
func (b *Bus) Publish(ev Event) {
	select {
	case b.publishCh <- ev:
		metrics.EventsPublished.WithLabelValues(ev.Kind()).Inc()
	default:
		metrics.EventsDropped.WithLabelValues(ev.Kind(), "publish").Inc()
		logging.Warn().
			Str("kind", ev.Kind()).
			Msg("Event bus publish buffer full, event dropped")
	}
}

// Serve runs the dispatcher and one worker goroutine per subscriber until
// the context is canceled. It implements suture.Service.
func (b *Bus) Serve(ctx context.Context) error {
	b.mu.Lock()
	b.started = true
	subs := b.subscribers
	b.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range subs {
		wg.Add(1)
		go func(s *subscription) {
			defer wg.Done()
			b.runSubscriber(ctx, s)
		}(s)
	}

	logging.Info().
		Int("subscribers", len(subs)).
		Int("buffer", cap(b.publishCh)).
		Msg("Event bus started")

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			b.mu.Lock()
			b.started = false
			b.mu.Unlock()
			logging.Info().Msg("Event bus stopped")
			return ctx.Err()
		case ev := <-b.publishCh:
			b.dispatch(ev, subs)
		}
	}
}

// dispatch fans one event out to every subscriber queue without blocking.
func (b *Bus) dispatch(ev Event, subs []*subscription) {
	for _, s := range subs {
		select {
		case s.ch <- ev:
		default:
			metrics.EventsDropped.WithLabelValues(ev.Kind(), "subscriber").Inc()
			logging.Warn().
				Str("kind", ev.Kind()).
				Str("subscriber", s.sub.Name()).
				Msg("Subscriber queue full, event dropped")
		}
	}
}

// runSubscriber drains one subscriber queue until shutdown.
func (b *Bus) runSubscriber(ctx context.Context, s *subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.ch:
			b.handleOne(ctx, s, ev)
		}
	}
}

// handleOne invokes a subscriber handler behind a recover boundary so one
// misbehaving subscriber cannot take down the bus.
func (b *Bus) handleOne(ctx context.Context, s *subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			metrics.SubscriberFailures.WithLabelValues(s.sub.Name()).Inc()
			logging.Error().
				Str("subscriber", s.sub.Name()).
				Str("kind", ev.Kind()).
				Interface("panic", r).
				Msg("Subscriber panicked handling event")
		}
	}()

	if err := s.sub.Handle(ctx, ev); err != nil {
		metrics.SubscriberFailures.WithLabelValues(s.sub.Name()).Inc()
		logging.Error().
			Err(err).
			Str("subscriber", s.sub.Name()).
			Str("kind", ev.Kind()).
			Msg("Subscriber failed handling event")
		return
	}
	metrics.EventsDelivered.WithLabelValues(s.sub.Name()).Inc()
}

// String implements fmt.Stringer for supervisor logs.
func (b *Bus) String() string { return "event-bus" }
