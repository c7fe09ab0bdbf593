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

// RoomRepository is the room listing persistence consumed by the handler.
type RoomRepository interface {
	List(ctx context.Context, limit int) ([]store.Room, error)
	Get(ctx context.Context, id uuid.UUID) (*store.Room, error)
	Create(ctx context.Context, userID uuid.UUID, params store.CreateRoomParams) (*store.Room, error)
	Update(ctx context.Context, id, ownerID uuid.UUID, params store.CreateRoomParams) (*store.Room, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	AddPhoto(ctx context.Context, id, ownerID uuid.UUID, url string) error
}

// Rooms serves the room listing CRUD routes.
type Rooms struct {
	repo     RoomRepository
	photos   PhotoUploader
	validate *validator.Validate
	respond  response.Writer
	log      *slog.Logger
}

// NewRooms creates the rooms handler.
func NewRooms(repo RoomRepository, photos PhotoUploader, respond response.Writer, log *slog.Logger) *Rooms {
	if log == nil {
		log = slog.Default()
	}
	return &Rooms{
		repo:     repo,
		photos:   photos,
		validate: validator.New(),
		respond:  respond,
		log:      log.With("component", "handlers.rooms"),
	}
}

type roomPayload struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Address     string `json:"address" validate:"max=500"`
	RentMonthly int    `json:"rent_monthly" validate:"gte=0"`
}

func (p roomPayload) params() store.CreateRoomParams {
	return store.CreateRoomParams{
		Title:       p.Title,
		Description: p.Description,
		Address:     p.Address,
		RentMonthly: p.RentMonthly,
	}
}

// List returns the most recent room listings.
func (h *Rooms) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.repo.List(r.Context(), 50)
	if err != nil {
		h.log.ErrorContext(r.Context(), "list rooms failed", "error", err)
		h.respond.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, rooms)
}

// Get returns one room listing.
func (h *Rooms) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respond.Error(w, response.ErrNotFound)
		return
	}

	room, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.respond.Error(w, mapStoreErr(err))
		return
	}
	response.JSON(w, http.StatusOK, room)
}

// Create inserts a room listing owned by the authenticated principal.
func (h *Rooms) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.respond.Error(w, response.ErrUnauthenticated)
		return
	}

	var payload roomPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respond.Error(w, response.ErrValidation.WithMessage("Malformed JSON body"))
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		h.respond.Error(w, response.ErrValidation.WithMessage(err.Error()))
		return
	}

	room, err := h.repo.Create(r.Context(), principal.ID, payload.params())
	if err != nil {
		h.log.ErrorContext(r.Context(), "create room failed", "error", err)
		h.respond.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, room)
}

// Update modifies a room listing. The ownership gate ran before this handler;
// the repository filters by owner id again as defense in depth.
func (h *Rooms) Update(w http.ResponseWriter, r *http.Request) {
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

	var payload roomPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respond.Error(w, response.ErrValidation.WithMessage("Malformed JSON body"))
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		h.respond.Error(w, response.ErrValidation.WithMessage(err.Error()))
		return
	}

	room, err := h.repo.Update(r.Context(), id, principal.ID, payload.params())
	if err != nil {
		h.respond.Error(w, mapStoreErr(err))
		return
	}
	response.JSON(w, http.StatusOK, room)
}

// Delete removes a room listing.
func (h *Rooms) Delete(w http.ResponseWriter, r *http.Request) {
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
func (h *Rooms) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	uploadListingPhoto(w, r, "rooms", h.photos, h.repo.AddPhoto, h.respond, h.log)
}
