// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

package events

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arlo-hs/reelay/internal/logging"
)

// PostgresSignalStore persists interaction signals in the interaction_signals
// table. Signals are append-only; the recommendation pipeline reads and
// compacts them out of band.
type PostgresSignalStore struct {
	pool *pgxpool.Pool
}

// NewPostgresSignalStore creates a Postgres-backed signal store.
func NewPostgresSignalStore(pool *pgxpool.Pool) *PostgresSignalStore {
	return &PostgresSignalStore{pool: pool}
}

// RecordSignal implements SignalStore. Replayed events are absorbed by the
// primary key on event id, so at-least-once delivery upstream stays safe.
func (s *PostgresSignalStore) RecordSignal(ctx context.Context, ev InteractionEvent) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO interaction_signals (event_id, user_id, content_id, signal_type, implicit, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id) DO NOTHING`,
		ev.EventID, ev.UserID, ev.ContentID, string(ev.Type), ev.Type.Implicit(), ev.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert interaction signal: %w", err)
	}
	return nil
}

// LogPushSender is a PushSender that only logs. It stands in until a real
// push gateway is configured.
type LogPushSender struct{}

// SendPush implements PushSender.
func (LogPushSender) SendPush(_ context.Context, recipientID, title, body string) error {
	logging.Debug().
		Str("recipient_id", recipientID).
		Str("title", title).
		Str("body", body).
		Msg("Push notification (log sender)")
	return nil
}
