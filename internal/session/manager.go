package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Manager handles the session lifecycle: creation on login, validated
// retrieval, optional rolling renewal, and destruction on logout.
type Manager struct {
	store         Store
	ttl           time.Duration
	rolling       bool
	touchInterval time.Duration
	log           *slog.Logger
}

// NewManager creates a session manager on top of the given store.
func NewManager(store Store, cfg Config, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		store:         store,
		ttl:           cfg.TTL,
		rolling:       cfg.Rolling,
		touchInterval: cfg.TouchInterval,
		log:           log.With("component", "session"),
	}
}

// Get retrieves a session by id and validates its expiration.
// When rolling renewal is enabled and the touch interval has elapsed, the
// session's expiry is extended and written back to the store.
func (m *Manager) Get(ctx context.Context, id string) (Session, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}

	if sess.IsExpired() {
		return Session{}, ErrExpired
	}

	if m.rolling && time.Since(sess.LastAccessedAt) >= m.touchInterval {
		now := time.Now()
		sess.LastAccessedAt = now
		sess.ExpiresAt = now.Add(m.ttl)
		if err := m.store.Save(ctx, sess); err != nil {
			// Renewal failure degrades session lifetime, not the request.
			m.log.WarnContext(ctx, "failed to extend rolling session", "error", err)
		}
	}

	return *sess, nil
}

// Authenticate creates a fresh session for the given user. A new id is
// generated on every login so a pre-login cookie value never becomes an
// authenticated one.
func (m *Manager) Authenticate(ctx context.Context, userID uuid.UUID) (Session, error) {
	id, err := NewID()
	if err != nil {
		return Session{}, err
	}

	now := time.Now()
	sess := Session{
		ID:             id,
		UserID:         userID,
		CreatedAt:      now,
		LastAccessedAt: now,
		ExpiresAt:      now.Add(m.ttl),
	}

	if err := m.store.Save(ctx, &sess); err != nil {
		return Session{}, errors.Join(ErrSaveSession, err)
	}

	return sess, nil
}

// Destroy invalidates the server-side session record by id. Destroying a
// session that no longer exists is not an error, which makes logout
// idempotent from the client's perspective.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return errors.Join(ErrDeleteSession, err)
	}
	return nil
}

// TTL returns the configured absolute session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Rolling reports whether sliding renewal is enabled.
func (m *Manager) Rolling() bool {
	return m.rolling
}

// StartCleanup prunes expired sessions on a fixed interval until the context
// is canceled. Intended to run as a background goroutine from main.
func (m *Manager) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.store.DeleteExpired(ctx)
			if err != nil {
				m.log.WarnContext(ctx, "session cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				m.log.DebugContext(ctx, "pruned expired sessions", "count", n)
			}
		}
	}
}
