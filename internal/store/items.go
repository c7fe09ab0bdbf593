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

// Item is an item-for-sale listing posted by a user.
type Item struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	PriceCents  int       `json:"price_cents"`
	Photos      []string  `json:"photos"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemStore persists item listings in Postgres.
type ItemStore struct {
	pool *pgxpool.Pool
}

// NewItemStore creates an item store on the given pool.
func NewItemStore(pool *pgxpool.Pool) *ItemStore {
	return &ItemStore{pool: pool}
}

const itemColumns = "id, user_id, title, description, category, price_cents, photos, created_at, updated_at"

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.UserID, &it.Title, &it.Description, &it.Category,
		&it.PriceCents, &it.Photos, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}
	return &it, nil
}

// List returns the most recent item listings.
func (s *ItemStore) List(ctx context.Context, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// Get fetches an item listing by id.
func (s *ItemStore) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	return scanItem(s.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
}

// CreateItemParams carries the fields of a new item listing.
type CreateItemParams struct {
	Title       string
	Description string
	Category    string
	PriceCents  int
}

// Create inserts an item listing owned by userID.
func (s *ItemStore) Create(ctx context.Context, userID uuid.UUID, params CreateItemParams) (*Item, error) {
	return scanItem(s.pool.QueryRow(ctx, `
		INSERT INTO items (id, user_id, title, description, category, price_cents)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+itemColumns,
		uuid.New(), userID, params.Title, params.Description, params.Category, params.PriceCents))
}

// Update modifies an item listing, filtered by owner id as a second line of
// defense behind the ownership gate.
func (s *ItemStore) Update(ctx context.Context, id, ownerID uuid.UUID, params CreateItemParams) (*Item, error) {
	return scanItem(s.pool.QueryRow(ctx, `
		UPDATE items SET
			title       = $3,
			description = $4,
			category    = $5,
			price_cents = $6,
			updated_at  = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+itemColumns,
		id, ownerID, params.Title, params.Description, params.Category, params.PriceCents))
}

// Delete removes an item listing, filtered by owner id.
func (s *ItemStore) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM items WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddPhoto appends a photo URL to the listing, filtered by owner id.
func (s *ItemStore) AddPhoto(ctx context.Context, id, ownerID uuid.UUID, url string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE items SET photos = array_append(photos, $3), updated_at = now()
		WHERE id = $1 AND user_id = $2`, id, ownerID, url)
	if err != nil {
		return fmt.Errorf("add item photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// OwnerOf returns the owner id of the item, or ErrNotFound.
func (s *ItemStore) OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var ownerID uuid.UUID
	err := s.pool.QueryRow(ctx, `SELECT user_id FROM items WHERE id = $1`, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("item owner lookup: %w", err)
	}
	return ownerID, nil
}
