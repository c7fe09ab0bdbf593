package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is the server-side record correlating a client-held cookie token
// with an authenticated principal. Only the application user id is stored;
// mutable principal fields are always fetched fresh from the user store.
type Session struct {
	// ID is the opaque session identifier carried by the cookie.
	// 32 random bytes hex-encoded, never sequential, never reused.
	ID string

	// UserID references the authenticated application user.
	// uuid.Nil means the session is anonymous.
	UserID uuid.UUID

	CreatedAt      time.Time
	LastAccessedAt time.Time
	ExpiresAt      time.Time
}

// IsAuthenticated reports whether the session carries a principal reference.
func (s Session) IsAuthenticated() bool {
	return s.UserID != uuid.Nil
}

// IsExpired reports whether the session has passed its absolute lifetime.
func (s Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// NewID generates a cryptographically secure session identifier:
// 32 random bytes (256 bits of entropy) hex-encoded.
func NewID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrIDGeneration, err)
	}
	return hex.EncodeToString(b), nil
}
