package auth

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/unishare/backend/internal/cookie"
	"github.com/unishare/backend/internal/middleware"
	"github.com/unishare/backend/internal/response"
	"github.com/unishare/backend/internal/session"
	"github.com/unishare/backend/internal/store"
)

const (
	stateCookieName = "unishare.oauthstate"
	stateTTLSeconds = 600
)

// UserUpserter maps a verified external identity to an application user,
// creating one on first sight.
type UserUpserter interface {
	Upsert(ctx context.Context, params store.UpsertUserParams) (*store.User, error)
}

// HandlerConfig wires the auth endpoints.
type HandlerConfig struct {
	// SessionCookieName names the session cookie, e.g. "unishare.sid".
	SessionCookieName string
	// SessionCookieOpts is the environment-derived cookie policy
	// (secure/samesite) applied to issued session cookies.
	SessionCookieOpts []cookie.Option
	// FrontendURL is the post-login redirect target.
	FrontendURL string
	// FailureURL receives the user agent when the handshake fails.
	FailureURL string
}

// Handler implements the /auth routes: initiation, callback, principal
// introspection and logout.
type Handler struct {
	provider Provider
	users    UserUpserter
	sessions *session.Manager
	cookies  *cookie.Manager
	cfg      HandlerConfig
	respond  response.Writer
	log      *slog.Logger
}

// NewHandler creates the auth handler.
func NewHandler(
	provider Provider,
	users UserUpserter,
	sessions *session.Manager,
	cookies *cookie.Manager,
	cfg HandlerConfig,
	respond response.Writer,
	log *slog.Logger,
) *Handler {
	if log == nil {
		log = slog.Default()
	}
	if cfg.FailureURL == "" {
		cfg.FailureURL = cfg.FrontendURL
	}
	return &Handler{
		provider: provider,
		users:    users,
		sessions: sessions,
		cookies:  cookies,
		cfg:      cfg,
		respond:  respond,
		log:      log.With("component", "auth"),
	}
}

// Mount registers the auth routes on the given router.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/google", h.Login)
	r.Get("/google/callback", h.Callback)
	r.With(middleware.RequireAuth).Get("/me", h.Me)
	r.Get("/logout", h.Logout)
}

// stateCookieOpts derives the short-lived state cookie policy from the
// session cookie policy. SameSite is relaxed to Lax because the provider's
// redirect back is a top-level navigation.
func (h *Handler) stateCookieOpts() []cookie.Option {
	return append(slices.Clone(h.cfg.SessionCookieOpts),
		cookie.WithMaxAge(stateTTLSeconds),
		cookie.WithSameSite(http.SameSiteLaxMode),
	)
}

// Login redirects the user agent to the provider's consent screen. The CSRF
// state travels in a signed short-lived cookie; no session is allocated for
// the round-trip.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := session.NewID()
	if err != nil {
		h.respond.Error(w, err)
		return
	}

	h.cookies.SetSigned(w, stateCookieName, state, h.stateCookieOpts()...)
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback completes the handshake: it checks the CSRF state, exchanges the
// code for a verified identity, upserts the application user and issues a
// fresh session holding only the user id. Any failure redirects to the
// configured failure destination.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	state, err := h.cookies.GetSigned(r, stateCookieName)
	h.cookies.Delete(w, stateCookieName, h.stateCookieOpts()...)
	if err != nil ||
		subtle.ConstantTimeCompare([]byte(state), []byte(r.URL.Query().Get("state"))) != 1 {
		h.log.WarnContext(ctx, "oauth state mismatch")
		http.Redirect(w, r, h.cfg.FailureURL, http.StatusFound)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, h.cfg.FailureURL, http.StatusFound)
		return
	}

	identity, err := h.provider.Exchange(ctx, code)
	if err != nil {
		h.log.WarnContext(ctx, "oauth code exchange failed", "error", err)
		http.Redirect(w, r, h.cfg.FailureURL, http.StatusFound)
		return
	}

	user, err := h.users.Upsert(ctx, store.UpsertUserParams{
		GoogleID:  identity.Subject,
		Email:     identity.Email,
		Name:      identity.Name,
		AvatarURL: identity.Picture,
	})
	if err != nil {
		h.log.ErrorContext(ctx, "user upsert failed", "error", err)
		http.Redirect(w, r, h.cfg.FailureURL, http.StatusFound)
		return
	}

	sess, err := h.sessions.Authenticate(ctx, user.ID)
	if err != nil {
		h.log.ErrorContext(ctx, "session creation failed", "error", err)
		http.Redirect(w, r, h.cfg.FailureURL, http.StatusFound)
		return
	}

	opts := append(slices.Clone(h.cfg.SessionCookieOpts),
		cookie.WithMaxAge(int(time.Until(sess.ExpiresAt).Seconds())),
	)
	h.cookies.SetSigned(w, h.cfg.SessionCookieName, sess.ID, opts...)

	http.Redirect(w, r, h.cfg.FrontendURL, http.StatusFound)
}

// Me returns the authenticated principal.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respErr := response.ErrUnauthenticated
		response.JSON(w, respErr.Status, respErr)
		return
	}
	response.JSON(w, http.StatusOK, principal)
}

// Logout destroys the server-side session record first, then clears the
// cookie, then redirects. A stolen cookie must not remain usable after
// logout. Calling logout without a live session is not an error.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if id, err := h.cookies.GetSigned(r, h.cfg.SessionCookieName); err == nil {
		// Destroy tolerates an already-deleted record, so a repeated logout
		// simply finds no active session.
		if err := h.sessions.Destroy(ctx, id); err != nil {
			h.log.ErrorContext(ctx, "session destroy failed", "error", err)
			h.respond.Error(w, err)
			return
		}
	}

	h.cookies.Delete(w, h.cfg.SessionCookieName, h.cfg.SessionCookieOpts...)
	http.Redirect(w, r, h.cfg.FrontendURL, http.StatusFound)
}
