package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/unishare/backend/internal/response"
	"github.com/unishare/backend/internal/store"
)

// OwnerFunc fetches the owner id of the resource with the given id.
// It returns store.ErrNotFound when the resource does not exist.
type OwnerFunc func(ctx context.Context, id uuid.UUID) (uuid.UUID, error)

// OwnershipConfig configures the ownership gate for one resource collection.
type OwnershipConfig struct {
	// Param is the chi path parameter holding the resource id (default "id").
	Param string
	// Owner looks up the resource's owner in the backing store.
	Owner OwnerFunc
}

// RequireOwner verifies that the authenticated principal owns the resource
// referenced by the request path. A missing resource yields 404 rather than
// leaking an ownership distinction; a foreign owner yields 403; a
// backing-store failure yields 500. The check is advisory defense in depth:
// mutating queries downstream additionally filter by owner id.
func RequireOwner(cfg OwnershipConfig) func(http.Handler) http.Handler {
	if cfg.Param == "" {
		cfg.Param = "id"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				respErr := response.ErrUnauthenticated
				response.JSON(w, respErr.Status, respErr)
				return
			}

			id, err := uuid.Parse(chi.URLParam(r, cfg.Param))
			if err != nil {
				respErr := response.ErrNotFound
				response.JSON(w, respErr.Status, respErr)
				return
			}

			ownerID, err := cfg.Owner(r.Context(), id)
			switch {
			case errors.Is(err, store.ErrNotFound):
				respErr := response.ErrNotFound
				response.JSON(w, respErr.Status, respErr)
				return
			case err != nil:
				respErr := response.ErrOwnershipCheck
				response.JSON(w, respErr.Status, respErr)
				return
			case ownerID != principal.ID:
				respErr := response.ErrForbidden
				response.JSON(w, respErr.Status, respErr)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
