package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/unishare/backend/internal/response"
)

// CORSConfig configures the per-request origin decision.
type CORSConfig struct {
	// AllowedOrigins is the static allow-list; origins must match verbatim.
	AllowedOrigins []string

	// Production tightens the no-Origin case: requests without an Origin
	// header (curl, server-to-server tools) are only trusted outside
	// production.
	Production bool

	// AllowedMethods and AllowedHeaders are advertised on preflight.
	AllowedMethods []string
	AllowedHeaders []string

	// MaxAge is the preflight cache lifetime in seconds (default 24h).
	MaxAge int
}

// CORS decides per inbound request whether the Origin is permitted and emits
// the matching headers. Cookie-carrying cross-origin requests require the
// credentials flag and forbid the wildcard origin, so the specific requesting
// origin is always echoed back. Preflight OPTIONS requests are answered
// directly, short-circuiting the routing pipeline. Rejections produce a 403
// naming the rejected origin and the allow-list.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	if len(cfg.AllowedMethods) == 0 {
		cfg.AllowedMethods = []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		}
	}
	if len(cfg.AllowedHeaders) == 0 {
		cfg.AllowedHeaders = []string{"Accept", "Content-Type", "Origin", "X-Requested-With"}
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 86400
	}

	allowMethods := strings.Join(cfg.AllowedMethods, ",")
	allowHeaders := strings.Join(cfg.AllowedHeaders, ",")

	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		allowed[origin] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin == "" {
				if cfg.Production {
					writeCORSRejection(w, origin, cfg.AllowedOrigins)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if !allowed[origin] {
				writeCORSRejection(w, origin, cfg.AllowedOrigins)
				return
			}

			headers := w.Header()
			headers.Set("Access-Control-Allow-Origin", origin)
			headers.Set("Access-Control-Allow-Credentials", "true")
			headers.Add("Vary", "Origin")

			if r.Method == http.MethodOptions {
				headers.Set("Access-Control-Allow-Methods", allowMethods)
				headers.Set("Access-Control-Allow-Headers", allowHeaders)
				headers.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeCORSRejection(w http.ResponseWriter, origin string, allowedOrigins []string) {
	if allowedOrigins == nil {
		allowedOrigins = []string{}
	}
	err := response.ErrCORSRejected.
		WithMessage("Origin not allowed").
		WithDetails(map[string]any{
			"origin":         origin,
			"allowedOrigins": allowedOrigins,
		})
	response.JSON(w, err.Status, err)
}
