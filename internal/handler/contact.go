// Package handler contains HTTP handlers for the FNA Concept site.
//
// This file implements the browser side of the contact form.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fnaconcept/site/internal/contact"
	"github.com/fnaconcept/site/internal/csrf"
	"github.com/fnaconcept/site/internal/domain"
	"github.com/fnaconcept/site/internal/middleware"
	"github.com/fnaconcept/site/internal/site"
	"github.com/fnaconcept/site/internal/submission"
)

// MaxFormBytes bounds the body of a contact form POST.
const MaxFormBytes = 64 << 10

// ContactHandler handles contact form posts from the page.
type ContactHandler struct {
	content   *site.Content
	submitter contact.Submitter
	renderer  TemplateRenderer
	csrf      *csrf.Protector
	logger    *slog.Logger
	now       func() time.Time
}

// NewContactHandler creates a new ContactHandler. Submissions go through
// submitter, normally a *submission.Client.
func NewContactHandler(
	content *site.Content,
	submitter contact.Submitter,
	renderer TemplateRenderer,
	protector *csrf.Protector,
	logger *slog.Logger,
) *ContactHandler {
	return &ContactHandler{
		content:   content,
		submitter: submitter,
		renderer:  renderer,
		csrf:      protector,
		logger:    logger,
		now:       time.Now,
	}
}

// RegisterRoutes registers the contact routes with the provided mux.
// limit wraps the POST route, typically with the per-visitor rate limiter.
//
// Routes:
// - POST /contact -> Submit
func (h *ContactHandler) RegisterRoutes(mux *http.ServeMux, limit func(http.Handler) http.Handler) {
	mux.Handle("POST /contact", limit(parseForm(h.logger, "contact.submit", h.csrf.Verify(http.HandlerFunc(h.Submit)))))
}

// parseForm reads a bounded urlencoded body before the CSRF check looks at it.
func parseForm(logger *slog.Logger, op string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, MaxFormBytes)
		if err := r.ParseForm(); err != nil {
			ErrorResponse(w, r, logger, formParseError(op, err))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// POST /contact - Submit Contact Form
// =============================================================================

// Submit runs one submit attempt of the contact form and renders the form
// again with its field errors, success banner or error banner. htmx requests
// get the form fragment only; others get the whole page.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, formParseError("contact.submit", err))
		return
	}

	form := contact.NewContactForm()
	for _, name := range domain.Fields {
		if values, ok := r.PostForm[name]; ok && len(values) > 0 {
			form.SetValue(name, values[0])
		}
	}

	ctx := submission.WithVisitor(r.Context(), submission.Visitor{
		IP:        middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	ctrl := contact.NewController(form, h.submitter, h.logger)
	ctrl.OnSubmit(ctx)

	state := ctrl.State()
	h.logger.Info("contact form submitted",
		"success", state.SubmitSuccess,
		"submit_error", state.SubmitError,
	)

	view := NewContactFormView(ctrl, h.csrf.Token(w, r))

	if r.Header.Get("HX-Request") == "true" {
		h.renderer.RenderPartial(w, "contact_form", view)
		return
	}

	h.renderer.RenderHTTP(w, "public/home", HomePageData{
		CurrentPath: r.URL.Path,
		Content:     h.content,
		Year:        h.now().Year(),
		Contact:     view,
	})
}

// formParseError classifies a failed ParseForm.
func formParseError(op string, err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return domain.Wrap(err, domain.ETOOLARGE, op, "Formulaire trop volumineux.")
	}
	return domain.Wrap(err, domain.EINVALID, op, "Formulaire illisible.")
}
