package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/unishare/backend/internal/auth"
	"github.com/unishare/backend/internal/db"
	"github.com/unishare/backend/internal/server"
	"github.com/unishare/backend/internal/session"
	"github.com/unishare/backend/internal/storage"
)

// Config aggregates all environment-driven settings of the backend.
type Config struct {
	AppName string `env:"APP_NAME" envDefault:"unishare-backend"`
	Env     string `env:"APP_ENV" envDefault:"development"`

	// FrontendURL is the deployed frontend origin; it is always part of the
	// CORS allow-list and receives post-login and post-logout redirects.
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	// ExtraOrigins adds further allowed origins, comma-separated.
	ExtraOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// AuthFailureURL receives the user agent when the login handshake fails.
	// Defaults to the frontend origin when unset.
	AuthFailureURL string `env:"AUTH_FAILURE_URL"`

	// CookieSecrets sign the session cookie; the first secret signs, all
	// verify, enabling rotation.
	CookieSecrets []string `env:"SESSION_SECRET,required" envSeparator:","`

	Server  server.Config
	DB      db.Config
	Session session.Config
	Google  auth.Config
	S3      storage.Config
}

// Load reads .env (when present) and parses environment variables into cfg.
func Load(cfg *Config) error {
	_ = godotenv.Load()
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

// MustLoad panics on configuration errors; intended for startup.
func MustLoad(cfg *Config) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// IsProduction reports whether the process runs in production mode.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// AllowedOrigins returns the CORS allow-list: the frontend origin plus any
// configured extras, deduplicated, order preserved.
func (c Config) AllowedOrigins() []string {
	origins := make([]string, 0, len(c.ExtraOrigins)+1)
	if o := originOf(c.FrontendURL); o != "" {
		origins = append(origins, o)
	}
	for _, raw := range c.ExtraOrigins {
		o := originOf(strings.TrimSpace(raw))
		if o != "" && !slices.Contains(origins, o) {
			origins = append(origins, o)
		}
	}
	return origins
}

// FrontendIsCrossSite reports whether the frontend is served from an HTTPS
// origin of its own, which requires SameSite=None; Secure cookie delivery.
func (c Config) FrontendIsCrossSite() bool {
	u, err := url.Parse(c.FrontendURL)
	if err != nil {
		return false
	}
	return u.Scheme == "https"
}

// originOf reduces a URL to its origin (scheme://host[:port]).
func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
