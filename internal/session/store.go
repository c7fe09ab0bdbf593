package session

import "context"

// Store defines the persistence interface for session records.
// Implementations must be safe for concurrent use; the subsystem itself does
// not serialize requests that share one session id.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes all expired sessions and returns how many were deleted.
	DeleteExpired(ctx context.Context) (int64, error)
}
