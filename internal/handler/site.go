// Package handler contains HTTP handlers for the FNA Concept site.
//
// This file implements the public pages: the one-page site, section links
// and the health check.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fnaconcept/site/internal/contact"
	"github.com/fnaconcept/site/internal/csrf"
	"github.com/fnaconcept/site/internal/site"
)

// =============================================================================
// Template Data Types
// =============================================================================

// HomePageData contains data for the home page.
type HomePageData struct {
	CurrentPath string
	Content     *site.Content
	Year        int
	Contact     ContactFormView
}

// =============================================================================
// Handler Configuration
// =============================================================================

// SiteHandler serves the public pages.
type SiteHandler struct {
	content  *site.Content
	sections *site.Sections
	renderer TemplateRenderer
	csrf     *csrf.Protector
	logger   *slog.Logger
	now      func() time.Time
}

// NewSiteHandler creates a new SiteHandler.
func NewSiteHandler(
	content *site.Content,
	sections *site.Sections,
	renderer TemplateRenderer,
	protector *csrf.Protector,
	logger *slog.Logger,
) *SiteHandler {
	return &SiteHandler{
		content:  content,
		sections: sections,
		renderer: renderer,
		csrf:     protector,
		logger:   logger,
		now:      time.Now,
	}
}

// =============================================================================
// Route Registration
// =============================================================================

// RegisterRoutes registers the page routes with the provided mux.
//
// Routes:
// - GET /               -> Home
// - GET /section/{id}   -> Section (redirect to the anchor)
// - GET /health         -> Health
// - /                   -> 404 for everything else
func (h *SiteHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /section/{id}", h.Section)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("/", h.NotFound)
}

// =============================================================================
// GET / - Home Page
// =============================================================================

// Home renders the one-page site with an empty contact form.
func (h *SiteHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctrl := contact.NewController(nil, nil, h.logger)
	h.renderer.RenderHTTP(w, "public/home", h.pageData(r, NewContactFormView(ctrl, h.csrf.Token(w, r))))
}

func (h *SiteHandler) pageData(r *http.Request, form ContactFormView) HomePageData {
	return HomePageData{
		CurrentPath: r.URL.Path,
		Content:     h.content,
		Year:        h.now().Year(),
		Contact:     form,
	}
}

// =============================================================================
// GET /section/{id} - Section Link
// =============================================================================

// Section redirects to the page anchor of a navigation target. Targets with
// no section on the page land at the top.
func (h *SiteHandler) Section(w http.ResponseWriter, r *http.Request) {
	anchor, _ := h.sections.Resolve(r.PathValue("id"))
	http.Redirect(w, r, "/"+anchor, http.StatusSeeOther)
}

// =============================================================================
// GET /health - Health Check
// =============================================================================

// Health reports that the process is serving.
func (h *SiteHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NotFound answers every unknown path.
func (h *SiteHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	NotFoundResponse(w, r, h.logger)
}
