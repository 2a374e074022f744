package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fnaconcept/site/internal/domain"
	"github.com/fnaconcept/site/internal/metrics"
	"github.com/fnaconcept/site/internal/service"
)

// imageCacheControl lets browsers and CDNs keep variants for a day.
const imageCacheControl = "public, max-age=86400"

// MediaHandler serves resized images.
type MediaHandler struct {
	images service.ImageService
	logger *slog.Logger
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(images service.ImageService, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{
		images: images,
		logger: logger,
	}
}

// RegisterRoutes registers the media routes with the provided mux.
//
// Routes:
// - GET /img/{name}?w=N -> Image
func (h *MediaHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /img/{name}", h.Image)
}

// =============================================================================
// GET /img/{name} - Image Variant
// =============================================================================

// Image serves the named image fitted to the width given by the w query
// parameter.
func (h *MediaHandler) Image(w http.ResponseWriter, r *http.Request) {
	const op = "media.image"

	width, err := strconv.Atoi(r.URL.Query().Get("w"))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "w must be an integer width"))
		return
	}

	variant, cached, err := h.images.Variant(r.Context(), r.PathValue("name"), width)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	metrics.ImageVariantServed(cached)

	w.Header().Set("ETag", variant.ETag)
	w.Header().Set("Cache-Control", imageCacheControl)
	if r.Header.Get("If-None-Match") == variant.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", variant.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(variant.Data)))
	_, _ = w.Write(variant.Data)
}
