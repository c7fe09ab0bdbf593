package session

import "time"

// Config holds session lifecycle configuration with environment variable support.
type Config struct {
	// TTL is the absolute session lifetime from creation.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	// Rolling enables sliding renewal: session expiry is extended on activity.
	// Off by default, giving sessions a fixed absolute lifetime.
	Rolling bool `env:"SESSION_ROLLING" envDefault:"false"`

	// TouchInterval throttles rolling renewal writes. A rolling session is
	// only extended when at least this much time passed since the last touch.
	TouchInterval time.Duration `env:"SESSION_TOUCH_INTERVAL" envDefault:"5m"`

	// CleanupInterval is how often expired rows are pruned from the store.
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"15m"`

	// Backend selects the persistent store implementation used in production:
	// "postgres" (default) or "redis".
	Backend string `env:"SESSION_STORE" envDefault:"postgres"`

	// RedisURL configures the redis backend, e.g. redis://localhost:6379/0.
	RedisURL string `env:"REDIS_URL"`

	// CookieName is the name of the session cookie.
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"unishare.sid"`
}
