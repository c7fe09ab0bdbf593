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

// Room is a room listing posted by a user.
type Room struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	RentMonthly int       `json:"rent_monthly"`
	Photos      []string  `json:"photos"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoomStore persists room listings in Postgres.
type RoomStore struct {
	pool *pgxpool.Pool
}

// NewRoomStore creates a room store on the given pool.
func NewRoomStore(pool *pgxpool.Pool) *RoomStore {
	return &RoomStore{pool: pool}
}

const roomColumns = "id, user_id, title, description, address, rent_monthly, photos, created_at, updated_at"

func scanRoom(row pgx.Row) (*Room, error) {
	var r Room
	err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.Description, &r.Address,
		&r.RentMonthly, &r.Photos, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan room: %w", err)
	}
	return &r, nil
}

// List returns the most recent room listings.
func (s *RoomStore) List(ctx context.Context, limit int) ([]Room, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+roomColumns+` FROM rooms ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	rooms := make([]Room, 0)
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *r)
	}
	return rooms, rows.Err()
}

// Get fetches a room listing by id.
func (s *RoomStore) Get(ctx context.Context, id uuid.UUID) (*Room, error) {
	return scanRoom(s.pool.QueryRow(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id))
}

// CreateRoomParams carries the fields of a new room listing.
type CreateRoomParams struct {
	Title       string
	Description string
	Address     string
	RentMonthly int
}

// Create inserts a room listing owned by userID.
func (s *RoomStore) Create(ctx context.Context, userID uuid.UUID, params CreateRoomParams) (*Room, error) {
	return scanRoom(s.pool.QueryRow(ctx, `
		INSERT INTO rooms (id, user_id, title, description, address, rent_monthly)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+roomColumns,
		uuid.New(), userID, params.Title, params.Description, params.Address, params.RentMonthly))
}

// Update modifies a room listing. The query is additionally filtered by
// owner id so a gate bypass cannot cause a cross-user mutation.
func (s *RoomStore) Update(ctx context.Context, id, ownerID uuid.UUID, params CreateRoomParams) (*Room, error) {
	return scanRoom(s.pool.QueryRow(ctx, `
		UPDATE rooms SET
			title        = $3,
			description  = $4,
			address      = $5,
			rent_monthly = $6,
			updated_at   = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+roomColumns,
		id, ownerID, params.Title, params.Description, params.Address, params.RentMonthly))
}

// Delete removes a room listing, filtered by owner id.
func (s *RoomStore) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM rooms WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddPhoto appends a photo URL to the listing, filtered by owner id.
func (s *RoomStore) AddPhoto(ctx context.Context, id, ownerID uuid.UUID, url string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE rooms SET photos = array_append(photos, $3), updated_at = now()
		WHERE id = $1 AND user_id = $2`, id, ownerID, url)
	if err != nil {
		return fmt.Errorf("add room photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// OwnerOf returns the owner id of the room, or ErrNotFound.
func (s *RoomStore) OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var ownerID uuid.UUID
	err := s.pool.QueryRow(ctx, `SELECT user_id FROM rooms WHERE id = $1`, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("room owner lookup: %w", err)
	}
	return ownerID, nil
}
