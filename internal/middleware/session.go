package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/unishare/backend/internal/cookie"
	"github.com/unishare/backend/internal/response"
	"github.com/unishare/backend/internal/session"
	"github.com/unishare/backend/internal/store"
)

// PrincipalSource resolves a session's user reference to a full principal.
// The principal is fetched fresh on every request; mutable user fields are
// never trusted from a cached copy.
type PrincipalSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*store.User, error)
}

// SessionConfig wires the session restoration middleware.
type SessionConfig struct {
	Manager    *session.Manager
	Cookies    *cookie.Manager
	CookieName string
	Users      PrincipalSource
	Logger     *slog.Logger

	// CookieOpts is the delivery policy applied when the session cookie is
	// re-issued under rolling renewal.
	CookieOpts []cookie.Option
}

// Sessions restores the session and principal referenced by the request's
// session cookie. Requests without a valid cookie proceed anonymously; no
// session is allocated for them. An invalid, expired or destroyed session
// clears the stale cookie and also proceeds anonymously, leaving rejection
// to the gates downstream.
func Sessions(cfg SessionConfig) func(http.Handler) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log = log.With("component", "http.session")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := cfg.Cookies.GetSigned(r, cfg.CookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := cfg.Manager.Get(r.Context(), id)
			if err != nil {
				if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrExpired) {
					cfg.Cookies.Delete(w, cfg.CookieName)
				} else {
					log.WarnContext(r.Context(), "session lookup failed", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			// Under rolling renewal the server-side expiry moves on touch;
			// the browser cookie must follow or it is discarded at the
			// original absolute lifetime.
			if cfg.Manager.Rolling() {
				opts := append(slices.Clone(cfg.CookieOpts),
					cookie.WithMaxAge(int(time.Until(sess.ExpiresAt).Seconds())),
				)
				cfg.Cookies.SetSigned(w, cfg.CookieName, sess.ID, opts...)
			}

			ctx := withSession(r.Context(), sess)

			if sess.IsAuthenticated() {
				user, err := cfg.Users.GetByID(ctx, sess.UserID)
				switch {
				case errors.Is(err, store.ErrNotFound):
					// Session references a vanished user; treat as anonymous.
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				case err != nil:
					// An unreachable user store is an outage, not a missing
					// principal; degrading to anonymous here would turn it
					// into a misleading 401 downstream.
					log.ErrorContext(ctx, "principal lookup failed", "error", err)
					respErr := response.ErrServerError
					response.JSON(w, respErr.Status, respErr)
					return
				}
				ctx = withPrincipal(ctx, user)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
