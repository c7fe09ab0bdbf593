package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unishare/backend/internal/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("SESSION_SECRET", "test-secret-key-for-cookies-0123456789")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/unishare_test")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/callback")
}

func TestLoad(t *testing.T) {
	t.Run("defaults are applied", func(t *testing.T) {
		setRequiredEnv(t)

		var cfg config.Config
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, "unishare-backend", cfg.AppName)
		assert.Equal(t, "development", cfg.Env)
		assert.Equal(t, "http://localhost:3000", cfg.FrontendURL)
		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, "unishare.sid", cfg.Session.CookieName)
		assert.Equal(t, "postgres", cfg.Session.Backend)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("missing session secret fails", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SESSION_SECRET", "")

		var cfg config.Config
		assert.Error(t, config.Load(&cfg))
	})

	t.Run("comma-separated secrets support rotation", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SESSION_SECRET", "first-secret-key-for-cookies-0123456789,second-secret-key-for-cookies-012345678")

		var cfg config.Config
		require.NoError(t, config.Load(&cfg))
		assert.Len(t, cfg.CookieSecrets, 2)
	})

	t.Run("auth failure url is configurable", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("AUTH_FAILURE_URL", "http://localhost:3000/login?error=auth")

		var cfg config.Config
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "http://localhost:3000/login?error=auth", cfg.AuthFailureURL)
	})

	t.Run("production env is recognized case-insensitively", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("APP_ENV", "Production")

		var cfg config.Config
		require.NoError(t, config.Load(&cfg))
		assert.True(t, cfg.IsProduction())
	})
}

func TestAllowedOrigins(t *testing.T) {
	t.Run("frontend origin is always first", func(t *testing.T) {
		cfg := config.Config{FrontendURL: "https://app.unishare.example"}
		assert.Equal(t, []string{"https://app.unishare.example"}, cfg.AllowedOrigins())
	})

	t.Run("frontend path is stripped to the origin", func(t *testing.T) {
		cfg := config.Config{FrontendURL: "https://app.unishare.example/welcome"}
		assert.Equal(t, []string{"https://app.unishare.example"}, cfg.AllowedOrigins())
	})

	t.Run("extras are appended and deduplicated", func(t *testing.T) {
		cfg := config.Config{
			FrontendURL: "https://app.unishare.example",
			ExtraOrigins: []string{
				"http://localhost:3000",
				" https://app.unishare.example ",
				"http://localhost:3000",
			},
		}
		assert.Equal(t, []string{"https://app.unishare.example", "http://localhost:3000"}, cfg.AllowedOrigins())
	})

	t.Run("invalid entries are dropped", func(t *testing.T) {
		cfg := config.Config{
			FrontendURL:  "https://app.unishare.example",
			ExtraOrigins: []string{"not-a-url", ""},
		}
		assert.Equal(t, []string{"https://app.unishare.example"}, cfg.AllowedOrigins())
	})
}

func TestFrontendIsCrossSite(t *testing.T) {
	t.Parallel()

	assert.True(t, config.Config{FrontendURL: "https://app.unishare.example"}.FrontendIsCrossSite())
	assert.False(t, config.Config{FrontendURL: "http://localhost:3000"}.FrontendIsCrossSite())
	assert.False(t, config.Config{FrontendURL: "::bad::"}.FrontendIsCrossSite())
}
