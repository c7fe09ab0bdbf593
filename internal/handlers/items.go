package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/unishare/backend/internal/middleware"
	"github.com/unishare/backend/internal/response"
	"github.com/unishare/backend/internal/store"
)

// ItemRepository is the item listing persistence consumed by the handler.
type ItemRepository interface {
	List(ctx context.Context, limit int) ([]store.Item, error)
	Get(ctx context.Context, id uuid.UUID) (*store.Item, error)
	Create(ctx context.Context, userID uuid.UUID, params store.CreateItemParams) (*store.Item, error)
	Update(ctx context.Context, id, ownerID uuid.UUID, params store.CreateItemParams) (*store.Item, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	AddPhoto(ctx context.Context, id, ownerID uuid.UUID, url string) error
}

// Items serves the item listing CRUD routes.
type Items struct {
	repo     ItemRepository
	photos   PhotoUploader
	validate *validator.Validate
	respond  response.Writer
	log      *slog.Logger
}

// NewItems creates the items handler.
func NewItems(repo ItemRepository, photos PhotoUploader, respond response.Writer, log *slog.Logger) *Items {
	if log == nil {
		log = slog.Default()
	}
	return &Items{
		repo:     repo,
		photos:   photos,
		validate: validator.New(),
		respond:  respond,
		log:      log.With("component", "handlers.items"),
	}
}

type itemPayload struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Category    string `json:"category" validate:"max=100"`
	PriceCents  int    `json:"price_cents" validate:"gte=0"`
}

func (p itemPayload) params() store.CreateItemParams {
	return store.CreateItemParams{
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		PriceCents:  p.PriceCents,
	}
}

// List returns the most recent item listings.
func (h *Items) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context(), 50)
	if err != nil {
		h.log.ErrorContext(r.Context(), "list items failed", "error", err)
		h.respond.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

// Get returns one item listing.
func (h *Items) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Error(w, response.ErrNotFound)
		return
	}

	item, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.respond.Error(w, mapStoreErr(err))
		return
	}
	response.JSON(w, http.StatusOK, item)
}

// Create inserts an item listing owned by the authenticated principal.
func (h *Items) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.respond.Error(w, response.ErrUnauthenticated)
		return
	}

	var payload itemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respond.Error(w, response.ErrValidation.WithMessage("Malformed JSON body"))
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		h.respond.Error(w, response.ErrValidation.WithMessage(err.Error()))
		return
	}

	item, err := h.repo.Create(r.Context(), principal.ID, payload.params())
	if err != nil {
		h.log.ErrorContext(r.Context(), "create item failed", "error", err)
		h.respond.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, item)
}

// Update modifies an item listing behind the ownership gate.
func (h *Items) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.respond.Error(w, response.ErrUnauthenticated)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Error(w, response.ErrNotFound)
		return
	}

	var payload itemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respond.Error(w, response.ErrValidation.WithMessage("Malformed JSON body"))
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		h.respond.Error(w, response.ErrValidation.WithMessage(err.Error()))
		return
	}

	item, err := h.repo.Update(r.Context(), id, principal.ID, payload.params())
	if err != nil {
		h.respond.Error(w, mapStoreErr(err))
		return
	}
	response.JSON(w, http.StatusOK, item)
}

// Delete removes an item listing.
func (h *Items) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.respond.Error(w, response.ErrUnauthenticated)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Error(w, response.ErrNotFound)
		return
	}

	if err := h.repo.Delete(r.Context(), id, principal.ID); err != nil {
		h.respond.Error(w, mapStoreErr(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadPhoto stores a photo in object storage and appends its URL to the listing.
func (h *Items) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	uploadListingPhoto(w, r, "items", h.photos, h.repo.AddPhoto, h.respond, h.log)
}
