package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/unishare/backend/internal/response"
	"github.com/unishare/backend/internal/store"
)

// mapStoreErr converts store errors to their response equivalents.
func mapStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return response.ErrNotFound
	}
	return err
}

// Healthz reports process liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports readiness by probing the given checks.
func Readyz(checks ...func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				response.JSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
					"reason": err.Error(),
				})
				return
			}
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
