package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unishare/backend/internal/auth"
	"github.com/unishare/backend/internal/cookie"
	"github.com/unishare/backend/internal/response"
	"github.com/unishare/backend/internal/session"
	"github.com/unishare/backend/internal/store"
)

const (
	frontendURL       = "http://localhost:3000"
	sessionCookieName = "unishare.sid"
	stateCookieName   = "unishare.oauthstate"
)

type fakeProvider struct {
	identity    auth.Identity
	exchangeErr error
	gotCode     string
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.google.test/auth?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (auth.Identity, error) {
	p.gotCode = code
	if p.exchangeErr != nil {
		return auth.Identity{}, p.exchangeErr
	}
	return p.identity, nil
}

type fakeUpserter struct {
	user *store.User
	err  error
	got  store.UpsertUserParams
}

func (u *fakeUpserter) Upsert(_ context.Context, params store.UpsertUserParams) (*store.User, error) {
	u.got = params
	if u.err != nil {
		return nil, u.err
	}
	return u.user, nil
}

type fixture struct {
	provider *fakeProvider
	users    *fakeUpserter
	sessions *session.Manager
	cookies  *cookie.Manager
	handler  *auth.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cookies, err := cookie.New([]string{"test-secret-key-for-cookies-0123456789"})
	require.NoError(t, err)

	provider := &fakeProvider{identity: auth.Identity{
		Subject:       "google-subject-1",
		Email:         "student@university.example",
		EmailVerified: true,
		Name:          "Sam Student",
		Picture:       "https://lh3.example/avatar.png",
	}}
	users := &fakeUpserter{user: &store.User{ID: uuid.New(), Email: "student@university.example"}}
	sessions := session.NewManager(session.NewMemoryStore(), session.Config{TTL: time.Hour}, nil)

	handler := auth.NewHandler(provider, users, sessions, cookies, auth.HandlerConfig{
		SessionCookieName: sessionCookieName,
		FrontendURL:       frontendURL,
		FailureURL:        frontendURL + "/login?error=auth",
	}, response.Writer{Debug: true}, nil)

	return &fixture{provider: provider, users: users, sessions: sessions, cookies: cookies, handler: handler}
}

func cookieByName(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// startLogin performs the initiation redirect and returns the state value plus
// a callback request carrying the state cookie.
func startLogin(t *testing.T, f *fixture) (string, *http.Request) {
	t.Helper()

	w := httptest.NewRecorder()
	f.handler.Login(w, httptest.NewRequest(http.MethodGet, "/auth/google", nil))
	require.Equal(t, http.StatusFound, w.Code)

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)

	r := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state="+state+"&code=auth-code-1", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return state, r
}

func TestLogin(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	w := httptest.NewRecorder()
	f.handler.Login(w, httptest.NewRequest(http.MethodGet, "/auth/google", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "https://accounts.google.test/auth")

	state := cookieByName(t, w, stateCookieName)
	require.NotNil(t, state, "state cookie must be set")
	assert.True(t, state.HttpOnly)
	assert.Equal(t, 600, state.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, state.SameSite)

	// No session cookie before the callback completes.
	assert.Nil(t, cookieByName(t, w, sessionCookieName))
}

func TestCallback(t *testing.T) {
	t.Parallel()

	t.Run("successful handshake issues a session and redirects home", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		_, r := startLogin(t, f)

		w := httptest.NewRecorder()
		f.handler.Callback(w, r)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, frontendURL, w.Header().Get("Location"))
		assert.Equal(t, "auth-code-1", f.provider.gotCode)
		assert.Equal(t, "google-subject-1", f.users.got.GoogleID)

		sid := cookieByName(t, w, sessionCookieName)
		require.NotNil(t, sid, "session cookie must be set")
		assert.Positive(t, sid.MaxAge)

		// The cookie references a live server-side session for the user.
		verify := httptest.NewRequest(http.MethodGet, "/", nil)
		verify.AddCookie(sid)
		id, err := f.cookies.GetSigned(verify, sessionCookieName)
		require.NoError(t, err)
		sess, err := f.sessions.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, f.users.user.ID, sess.UserID)

		// The one-shot state cookie is cleared.
		state := cookieByName(t, w, stateCookieName)
		require.NotNil(t, state)
		assert.Negative(t, state.MaxAge)
	})

	t.Run("state mismatch redirects to the failure url", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		_, r := startLogin(t, f)
		r.URL.RawQuery = "state=attacker-chosen&code=auth-code-1"

		w := httptest.NewRecorder()
		f.handler.Callback(w, r)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Contains(t, w.Header().Get("Location"), "error=auth")
		assert.Nil(t, cookieByName(t, w, sessionCookieName))
	})

	t.Run("unset failure url falls back to the frontend", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		handler := auth.NewHandler(f.provider, f.users, f.sessions, f.cookies, auth.HandlerConfig{
			SessionCookieName: sessionCookieName,
			FrontendURL:       frontendURL,
		}, response.Writer{Debug: true}, nil)

		r := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=any&code=auth-code-1", nil)
		w := httptest.NewRecorder()
		handler.Callback(w, r)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, frontendURL, w.Header().Get("Location"))
	})

	t.Run("missing state cookie redirects to the failure url", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		r := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=any&code=auth-code-1", nil)

		w := httptest.NewRecorder()
		f.handler.Callback(w, r)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Contains(t, w.Header().Get("Location"), "error=auth")
	})

	t.Run("missing code redirects to the failure url", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		state, r := startLogin(t, f)
		r.URL.RawQuery = "state=" + state

		w := httptest.NewRecorder()
		f.handler.Callback(w, r)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Contains(t, w.Header().Get("Location"), "error=auth")
	})

	t.Run("exchange failure never issues a session", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.provider.exchangeErr = errors.New("invalid_grant")
		_, r := startLogin(t, f)

		w := httptest.NewRecorder()
		f.handler.Callback(w, r)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Contains(t, w.Header().Get("Location"), "error=auth")
		assert.Nil(t, cookieByName(t, w, sessionCookieName))
	})

	t.Run("upsert failure redirects to the failure url", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.users.err = errors.New("connection refused")
		_, r := startLogin(t, f)

		w := httptest.NewRecorder()
		f.handler.Callback(w, r)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Contains(t, w.Header().Get("Location"), "error=auth")
		assert.Nil(t, cookieByName(t, w, sessionCookieName))
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	// Runs the full login handshake and returns a request carrying the issued
	// session cookie.
	loggedInRequest := func(t *testing.T, f *fixture) *http.Request {
		t.Helper()

		_, callback := startLogin(t, f)
		w := httptest.NewRecorder()
		f.handler.Callback(w, callback)

		sid := cookieByName(t, w, sessionCookieName)
		require.NotNil(t, sid)

		r := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
		r.AddCookie(sid)
		return r
	}

	t.Run("destroys the session and clears the cookie", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		r := loggedInRequest(t, f)

		id, err := f.cookies.GetSigned(r, sessionCookieName)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		f.handler.Logout(w, r)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, frontendURL, w.Header().Get("Location"))

		cleared := cookieByName(t, w, sessionCookieName)
		require.NotNil(t, cleared)
		assert.Negative(t, cleared.MaxAge)

		// A replayed cookie finds no server-side session.
		_, err = f.sessions.Get(context.Background(), id)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("repeated logout succeeds", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		r := loggedInRequest(t, f)

		first := httptest.NewRecorder()
		f.handler.Logout(first, r)
		require.Equal(t, http.StatusFound, first.Code)

		second := httptest.NewRecorder()
		f.handler.Logout(second, r)
		assert.Equal(t, http.StatusFound, second.Code)
	})

	t.Run("logout without a session still redirects", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		w := httptest.NewRecorder()
		f.handler.Logout(w, httptest.NewRequest(http.MethodGet, "/auth/logout", nil))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, frontendURL, w.Header().Get("Location"))
	})
}
