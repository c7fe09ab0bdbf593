package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// User is an application user mapped from a Google identity.
type User struct {
	ID        uuid.UUID `json:"id"`
	GoogleID  string    `json:"-"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserStore persists application users in Postgres.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a user store on the given pool.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// UpsertUserParams carries the verified identity attributes from the OAuth provider.
type UpsertUserParams struct {
	GoogleID  string
	Email     string
	Name      string
	AvatarURL string
}

// Upsert creates the user on first sight of the external identity and
// refreshes display attributes on every subsequent login.
func (s *UserStore) Upsert(ctx context.Context, params UpsertUserParams) (*User, error) {
	const q = `
		INSERT INTO users (id, google_id, email, name, avatar_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (google_id) DO UPDATE SET
			email      = EXCLUDED.email,
			name       = EXCLUDED.name,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = now()
		RETURNING id, google_id, email, name, avatar_url, created_at, updated_at`

	var u User
	err := s.pool.QueryRow(ctx, q,
		uuid.New(), params.GoogleID, params.Email, params.Name, params.AvatarURL,
	).Scan(&u.ID, &u.GoogleID, &u.Email, &u.Name, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return &u, nil
}

// GetByID fetches a user by id. Sessions store only this id; the full
// principal is re-read here on every request so mutable fields stay fresh.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	const q = `
		SELECT id, google_id, email, name, avatar_url, created_at, updated_at
		FROM users WHERE id = $1`

	var u User
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&u.ID, &u.GoogleID, &u.Email, &u.Name, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
