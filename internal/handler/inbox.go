// Package handler contains HTTP handlers for the FNA Concept site.
//
// This file implements the form-processing endpoint that receives contact
// form submissions, in the style of a static host's form service.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fnaconcept/site/internal/domain"
	"github.com/fnaconcept/site/internal/middleware"
	"github.com/fnaconcept/site/internal/service"
)

// InboxResponse is the JSON body of an accepted submission.
type InboxResponse struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
}

// InboxHandler receives form submissions posted to the site root.
type InboxHandler struct {
	inquiries service.InquiryService
	logger    *slog.Logger
}

// NewInboxHandler creates a new InboxHandler.
func NewInboxHandler(inquiries service.InquiryService, logger *slog.Logger) *InboxHandler {
	return &InboxHandler{
		inquiries: inquiries,
		logger:    logger,
	}
}

// RegisterRoutes registers the inbox routes with the provided mux.
// limit wraps the POST route. It must not share its limiter with POST /contact:
// the site's own submissions arrive here too, with the visitor's address in
// X-Forwarded-For.
//
// Routes:
// - POST / -> Receive
func (h *InboxHandler) RegisterRoutes(mux *http.ServeMux, limit func(http.Handler) http.Handler) {
	mux.Handle("POST /{$}", limit(parseForm(h.logger, "inbox.receive", http.HandlerFunc(h.Receive))))
}

// =============================================================================
// POST / - Receive Submission
// =============================================================================

// Receive accepts one urlencoded submission. Responses are always JSON:
//   - 200 {"id": ..., "status": "received"} for a new inquiry
//   - 200 {"status": "duplicate"} for a repeat of a recent inquiry
//   - 400 for an unknown form-name
//   - 422 with per-field messages for invalid data
func (h *InboxHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, formParseError("inbox.receive", err))
		return
	}

	params := service.ReceiveParams{
		FormName:  r.PostForm.Get(domain.FormNameField),
		Data:      domain.ContactFormDataFromValues(r.PostForm.Get),
		RemoteIP:  middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}

	inq, err := h.inquiries.Receive(r.Context(), params)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, InboxResponse{ID: inq.ID.String(), Status: "received"})
}

func (h *InboxHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	// The sender already got its inquiry through; tell it so.
	if domain.ErrorCode(err) == domain.EDUPLICATE {
		writeJSON(w, http.StatusOK, InboxResponse{Status: "duplicate"})
		return
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		h.logger.Info("validation error",
			"op", ve.Op,
			"field_count", len(ve.Fields),
			"path", r.URL.Path,
		)
		writeValidationJSON(w, ve)
		return
	}

	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)
	logError(h.logger, r, err, code, domain.ErrorOp(err), status)
	writeJSONError(w, status, code, domain.ErrorMessage(err))
}
