package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/unishare/backend/internal/middleware"
	"github.com/unishare/backend/internal/response"
)

// maxPhotoBytes caps listing photo uploads at 10MB.
const maxPhotoBytes = 10 << 20

// PhotoUploader stores a photo and returns its public URL.
type PhotoUploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// addPhotoFunc appends a stored photo URL to a listing, filtered by owner id.
type addPhotoFunc func(ctx context.Context, id, ownerID uuid.UUID, url string) error

// uploadListingPhoto handles the multipart photo upload shared by the room
// and item handlers. Keys are namespaced per collection and listing so a
// listing's photos can be enumerated and removed together.
func uploadListingPhoto(
	w http.ResponseWriter,
	r *http.Request,
	collection string,
	photos PhotoUploader,
	addPhoto addPhotoFunc,
	respond response.Writer,
	log *slog.Logger,
) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respond.Error(w, response.ErrUnauthenticated)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, response.ErrNotFound)
		return
	}

	if photos == nil {
		respond.Error(w, response.ErrServerError.WithMessage("Photo storage is not configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	file, header, err := r.FormFile("photo")
	if err != nil {
		respond.Error(w, response.ErrValidation.WithMessage("Expected multipart field 'photo'"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ext := filepath.Ext(header.Filename)
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		}
	}

	key := fmt.Sprintf("listings/%s/%s/%s%s", collection, id, uuid.New(), ext)
	url, err := photos.Upload(r.Context(), key, contentType, file)
	if err != nil {
		log.ErrorContext(r.Context(), "photo upload failed", "error", err)
		respond.Error(w, err)
		return
	}

	if err := addPhoto(r.Context(), id, principal.ID, url); err != nil {
		respond.Error(w, mapStoreErr(err))
		return
	}

	response.JSON(w, http.StatusCreated, map[string]string{"url": url})
}
