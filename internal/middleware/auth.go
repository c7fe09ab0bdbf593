package middleware

import (
	"net/http"

	"github.com/unishare/backend/internal/response"
)

// RequireAuth admits a request only when an authenticated principal was
// restored from the session. It is a pure gate: no session state is mutated,
// rejected requests get a 401 with a machine-readable reason.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			respErr := response.ErrUnauthenticated
			response.JSON(w, respErr.Status, respErr)
			return
		}
		next.ServeHTTP(w, r)
	})
}
