// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

package interactions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// counter column names, whitelisted because they are spliced into SQL.
const (
	counterLikes  = "likes"
	counterSaves  = "saves"
	counterShares = "shares"
	counterViews  = "views"
)

// PostgresStore is the pgx-backed interaction Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed interaction store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Like implements Store.
func (s *PostgresStore) Like(ctx context.Context, userID, contentID string) (Mutation, error) {
	return s.insertUnique(ctx, "content_likes", counterLikes, userID, contentID)
}

// Unlike implements Store.
func (s *PostgresStore) Unlike(ctx context.Context, userID, contentID string) (Mutation, error) {
	return s.deleteUnique(ctx, "content_likes", counterLikes, userID, contentID)
}

// Save implements Store.
func (s *PostgresStore) Save(ctx context.Context, userID, contentID string) (Mutation, error) {
	return s.insertUnique(ctx, "content_saves", counterSaves, userID, contentID)
}

// Unsave implements Store.
func (s *PostgresStore) Unsave(ctx context.Context, userID, contentID string) (Mutation, error) {
	return s.deleteUnique(ctx, "content_saves", counterSaves, userID, contentID)
}

// Share implements Store. Every share appends a row; there is no uniqueness
// to enforce.
func (s *PostgresStore) Share(ctx context.Context, userID, contentID string) (Mutation, error) {
	var m Mutation
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO content_shares (share_id, user_id, content_id, created_at)
			VALUES ($1, $2, $3, now())`,
			uuid.NewString(), userID, contentID,
		)
		if err != nil {
			return fmt.Errorf("insert share row: %w", err)
		}
		count, err := adjustCounter(ctx, tx, contentID, counterShares, 1)
		if err != nil {
			return err
		}
		m = Mutation{Count: count, Changed: true}
		return nil
	})
	if err != nil {
		return Mutation{}, err
	}
	return m, nil
}

// View implements Store. The view row is upserted so the recently-viewed
// list stays one row per (user, content) with a fresh timestamp, while the
// counter counts every view.
func (s *PostgresStore) View(ctx context.Context, userID, contentID string) (Mutation, error) {
	var m Mutation
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO content_views (user_id, content_id, viewed_at)
			VALUES ($1, $2, now())
			ON CONFLICT (user_id, content_id) DO UPDATE SET viewed_at = now()`,
			userID, contentID,
		)
		if err != nil {
			return fmt.Errorf("upsert view row: %w", err)
		}
		count, err := adjustCounter(ctx, tx, contentID, counterViews, 1)
		if err != nil {
			return err
		}
		m = Mutation{Count: count, Changed: true}
		return nil
	})
	if err != nil {
		return Mutation{}, err
	}
	return m, nil
}

// insertUnique inserts a unique (user, content) interaction row and bumps
// its counter in the same transaction. A conflicting row means the state
// already holds; the counter is read but not touched.
func (s *PostgresStore) insertUnique(ctx context.Context, table, counter, userID, contentID string) (Mutation, error) {
	var m Mutation
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, fmt.Sprintf(`
			INSERT INTO %s (user_id, content_id, created_at)
			VALUES ($1, $2, now())
			ON CONFLICT (user_id, content_id) DO NOTHING`, table),
			userID, contentID,
		)
		if err != nil {
			return fmt.Errorf("insert %s row: %w", table, err)
		}

		if tag.RowsAffected() == 0 {
			count, err := readCounter(ctx, tx, contentID, counter)
			if err != nil {
				return err
			}
			m = Mutation{Count: count, Changed: false}
			return nil
		}

		count, err := adjustCounter(ctx, tx, contentID, counter, 1)
		if err != nil {
			return err
		}
		m = Mutation{Count: count, Changed: true}
		return nil
	})
	if err != nil {
		return Mutation{}, err
	}
	return m, nil
}

// deleteUnique removes a unique interaction row and decrements its counter
// in the same transaction. Deleting an absent row leaves the counter alone.
func (s *PostgresStore) deleteUnique(ctx context.Context, table, counter, userID, contentID string) (Mutation, error) {
	var m Mutation
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, fmt.Sprintf(`
			DELETE FROM %s WHERE user_id = $1 AND content_id = $2`, table),
			userID, contentID,
		)
		if err != nil {
			return fmt.Errorf("delete %s row: %w", table, err)
		}

		if tag.RowsAffected() == 0 {
			count, err := readCounter(ctx, tx, contentID, counter)
			if err != nil {
				return err
			}
			m = Mutation{Count: count, Changed: false}
			return nil
		}

		count, err := adjustCounter(ctx, tx, contentID, counter, -1)
		if err != nil {
			return err
		}
		m = Mutation{Count: count, Changed: true}
		return nil
	})
	if err != nil {
		return Mutation{}, err
	}
	return m, nil
}

// adjustCounter applies a delta to one aggregate counter and returns the new
// value. GREATEST clamps at zero inside the statement itself, so concurrent
// decrements can never race the counter negative.
func adjustCounter(ctx context.Context, tx pgx.Tx, contentID, counter string, delta int64) (int64, error) {
	var count int64
	err := tx.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO engagement_totals (content_id, %[1]s)
		VALUES ($1, GREATEST($2::bigint, 0))
		ON CONFLICT (content_id)
		DO UPDATE SET %[1]s = GREATEST(engagement_totals.%[1]s + $2, 0)
		RETURNING %[1]s`, counter),
		contentID, delta,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("adjust %s counter: %w", counter, err)
	}
	return count, nil
}

// readCounter returns the current value of one aggregate counter, zero when
// no aggregate row exists yet.
func readCounter(ctx context.Context, tx pgx.Tx, contentID, counter string) (int64, error) {
	var count int64
	err := tx.QueryRow(ctx, fmt.Sprintf(`
		SELECT COALESCE(%[1]s, 0) FROM engagement_totals WHERE content_id = $1`, counter),
		contentID,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("read %s counter: %w", counter, err)
	}
	return count, nil
}
