package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionsTable = "http_sessions"

// PostgresStore persists sessions in a Postgres table. The backing table is
// created on construction if absent, so the session subsystem does not depend
// on the application's migration pipeline.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates the store and its backing table.
// A construction error is non-fatal to the caller by contract: the store
// selector falls back to the in-memory store instead.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	const ddl = `
		CREATE TABLE IF NOT EXISTS ` + sessionsTable + ` (
			id               TEXT PRIMARY KEY,
			user_id          UUID NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL,
			last_accessed_at TIMESTAMPTZ NOT NULL,
			expires_at       TIMESTAMPTZ NOT NULL
		)`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create sessions table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Get returns the session by id or ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	const q = `
		SELECT id, user_id, created_at, last_accessed_at, expires_at
		FROM ` + sessionsTable + ` WHERE id = $1`

	var sess Session
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&sess.ID, &sess.UserID, &sess.CreatedAt, &sess.LastAccessedAt, &sess.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

// Save upserts the session row keyed by id.
func (s *PostgresStore) Save(ctx context.Context, sess *Session) error {
	const q = `
		INSERT INTO ` + sessionsTable + ` (id, user_id, created_at, last_accessed_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			user_id          = EXCLUDED.user_id,
			last_accessed_at = EXCLUDED.last_accessed_at,
			expires_at       = EXCLUDED.expires_at`

	_, err := s.pool.Exec(ctx, q,
		sess.ID, sess.UserID, sess.CreatedAt, sess.LastAccessedAt, sess.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes the session row. Missing rows return ErrNotFound.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+sessionsTable+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpired prunes all expired rows and returns the count.
func (s *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+sessionsTable+` WHERE expires_at < now()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
