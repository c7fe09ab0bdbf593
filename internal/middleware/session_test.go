package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unishare/backend/internal/cookie"
	"github.com/unishare/backend/internal/middleware"
	"github.com/unishare/backend/internal/session"
	"github.com/unishare/backend/internal/store"
)

const sessionCookieName = "unishare.sid"

type fakeUsers struct {
	users map[uuid.UUID]*store.User
	err   error
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*store.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return user, nil
}

type restoreFixture struct {
	manager *session.Manager
	cookies *cookie.Manager
	users   *fakeUsers
	handler func(next http.Handler) http.Handler
}

func newRestoreFixture(t *testing.T) *restoreFixture {
	t.Helper()

	return newRestoreFixtureWith(t, session.Config{TTL: time.Hour})
}

func newRestoreFixtureWith(t *testing.T, cfg session.Config) *restoreFixture {
	t.Helper()

	cookies, err := cookie.New([]string{"test-secret-key-for-cookies-0123456789"})
	require.NoError(t, err)

	manager := session.NewManager(session.NewMemoryStore(), cfg, nil)
	users := &fakeUsers{users: make(map[uuid.UUID]*store.User)}

	return &restoreFixture{
		manager: manager,
		cookies: cookies,
		users:   users,
		handler: middleware.Sessions(middleware.SessionConfig{
			Manager:    manager,
			Cookies:    cookies,
			CookieName: sessionCookieName,
			Users:      users,
		}),
	}
}

func requestWith(c *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(c)
	return r
}

// login creates a user, authenticates a session for them and returns a
// request carrying the matching signed cookie.
func (f *restoreFixture) login(t *testing.T) (*store.User, *http.Request) {
	t.Helper()

	user := &store.User{ID: uuid.New(), Email: "student@university.example"}
	f.users.users[user.ID] = user

	sess, err := f.manager.Authenticate(context.Background(), user.ID)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	f.cookies.SetSigned(w, sessionCookieName, sess.ID)

	r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return user, r
}

func TestSessions(t *testing.T) {
	t.Parallel()

	t.Run("restores principal from a valid cookie", func(t *testing.T) {
		t.Parallel()

		f := newRestoreFixture(t)
		user, r := f.login(t)

		var gotUser *store.User
		var gotSession session.Session
		var hasSession bool
		w := httptest.NewRecorder()
		f.handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser, _ = middleware.PrincipalFromContext(r.Context())
			gotSession, hasSession = middleware.SessionFromContext(r.Context())
		})).ServeHTTP(w, r)

		require.NotNil(t, gotUser)
		assert.Equal(t, user.ID, gotUser.ID)
		assert.True(t, hasSession)
		assert.Equal(t, user.ID, gotSession.UserID)
	})

	t.Run("no cookie proceeds anonymously", func(t *testing.T) {
		t.Parallel()

		f := newRestoreFixture(t)

		var ok bool
		w := httptest.NewRecorder()
		f.handler(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			_, ok = middleware.PrincipalFromContext(r.Context())
		})).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.False(t, ok)
		assert.Empty(t, w.Result().Cookies(), "anonymous requests must not allocate a session")
	})

	t.Run("forged cookie proceeds anonymously", func(t *testing.T) {
		t.Parallel()

		f := newRestoreFixture(t)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "forged-value"})

		var ok bool
		w := httptest.NewRecorder()
		f.handler(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			_, ok = middleware.PrincipalFromContext(r.Context())
		})).ServeHTTP(w, r)

		assert.False(t, ok)
	})

	t.Run("destroyed session clears the stale cookie", func(t *testing.T) {
		t.Parallel()

		f := newRestoreFixture(t)
		_, r := f.login(t)

		// Simulate logout on another device holding the same cookie.
		sid, err := f.cookies.GetSigned(r, sessionCookieName)
		require.NoError(t, err)
		require.NoError(t, f.manager.Destroy(context.Background(), sid))

		var ok bool
		w := httptest.NewRecorder()
		f.handler(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			_, ok = middleware.PrincipalFromContext(r.Context())
		})).ServeHTTP(w, r)

		assert.False(t, ok)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, sessionCookieName, cookies[0].Name)
		assert.Negative(t, cookies[0].MaxAge)
	})

	t.Run("vanished user proceeds anonymously", func(t *testing.T) {
		t.Parallel()

		f := newRestoreFixture(t)
		user, r := f.login(t)
		delete(f.users.users, user.ID)

		var ok bool
		w := httptest.NewRecorder()
		f.handler(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			_, ok = middleware.PrincipalFromContext(r.Context())
		})).ServeHTTP(w, r)

		assert.False(t, ok)
	})

	t.Run("user store failure yields a server error, not anonymous", func(t *testing.T) {
		t.Parallel()

		f := newRestoreFixture(t)
		_, r := f.login(t)
		f.users.err = errors.New("connection refused")

		var reached bool
		w := httptest.NewRecorder()
		f.handler(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			reached = true
		})).ServeHTTP(w, r)

		// A valid authenticated session must not read as unauthenticated
		// just because the user store is down.
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.False(t, reached)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "server_error", body["error"])
	})

	t.Run("rolling renewal re-issues the cookie with the extended lifetime", func(t *testing.T) {
		t.Parallel()

		f := newRestoreFixtureWith(t, session.Config{TTL: time.Hour, Rolling: true, TouchInterval: time.Nanosecond})
		_, r := f.login(t)

		w := httptest.NewRecorder()
		f.handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(w, r)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, sessionCookieName, cookies[0].Name)
		assert.Greater(t, cookies[0].MaxAge, 3500, "cookie lifetime must track the extended expiry")

		got, err := f.cookies.GetSigned(requestWith(cookies[0]), sessionCookieName)
		require.NoError(t, err)
		sid, err := f.cookies.GetSigned(r, sessionCookieName)
		require.NoError(t, err)
		assert.Equal(t, sid, got, "re-issue must keep the same session id")
	})

	t.Run("fixed lifetime sessions never re-issue the cookie", func(t *testing.T) {
		t.Parallel()

		f := newRestoreFixture(t)
		_, r := f.login(t)

		w := httptest.NewRecorder()
		f.handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(w, r)

		assert.Empty(t, w.Result().Cookies())
	})
}
