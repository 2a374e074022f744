// Package service contains the business logic layer.
//
// This file implements the inquiry service, which accepts contact form
// submissions at the form-processing endpoint.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fnaconcept/site/internal/contact"
	"github.com/fnaconcept/site/internal/dedup"
	"github.com/fnaconcept/site/internal/domain"
	"github.com/fnaconcept/site/internal/metrics"
	"github.com/fnaconcept/site/internal/worker"
)

const tracerName = "github.com/fnaconcept/site/internal/service"

// =============================================================================
// Interface Definition
// =============================================================================

// InquiryService defines the operations on incoming inquiries.
type InquiryService interface {
	// Receive validates, archives and schedules notification of a submission.
	// Returns domain.EINVALID (as *domain.ValidationError for field errors)
	// when the submission is rejected.
	// Returns domain.EDUPLICATE when the same submission was seen recently.
	Receive(ctx context.Context, params ReceiveParams) (*domain.Inquiry, error)
}

// ReceiveParams contains the data of one submission.
type ReceiveParams struct {
	FormName  string
	Data      domain.ContactFormData
	RemoteIP  string
	UserAgent string
}

// Archiver persists inquiries. *storage.Archive implements it.
type Archiver interface {
	Save(ctx context.Context, inq *domain.Inquiry) (string, error)
}

// =============================================================================
// Implementation
// =============================================================================

// inquiryService implements the InquiryService interface.
type inquiryService struct {
	filter      dedup.Filter
	archive     Archiver
	queue       worker.Queue
	maxAttempts int
	logger      *slog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewInquiryService creates a new InquiryService. maxAttempts bounds the
// notification job; zero leaves it to the worker.
func NewInquiryService(
	filter dedup.Filter,
	archive Archiver,
	queue worker.Queue,
	maxAttempts int,
	logger *slog.Logger,
) InquiryService {
	return &inquiryService{
		filter:      filter,
		archive:     archive,
		queue:       queue,
		maxAttempts: maxAttempts,
		logger:      logger,
		tracer:      otel.Tracer(tracerName),
		now:         time.Now,
	}
}

// Receive validates, archives and schedules notification of a submission.
func (s *inquiryService) Receive(ctx context.Context, params ReceiveParams) (*domain.Inquiry, error) {
	const op = "inquiry.receive"

	ctx, span := s.tracer.Start(ctx, op,
		trace.WithAttributes(
			attribute.String("form.name", params.FormName),
			attribute.String("form.service", params.Data.Service),
		),
	)
	defer span.End()

	inq, err := s.receive(ctx, op, params)
	switch {
	case err == nil:
		metrics.InquiryReceived("received")
		span.SetAttributes(attribute.String("inquiry.id", inq.ID.String()))
		span.SetStatus(codes.Ok, "")
	case domain.ErrorCode(err) == domain.EINVALID:
		metrics.InquiryReceived("invalid")
		span.SetStatus(codes.Error, "invalid submission")
	case domain.ErrorCode(err) == domain.EDUPLICATE:
		metrics.InquiryReceived("duplicate")
		span.SetStatus(codes.Ok, "duplicate")
	default:
		metrics.InquiryReceived("error")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return inq, err
}

func (s *inquiryService) receive(ctx context.Context, op string, params ReceiveParams) (*domain.Inquiry, error) {
	if params.FormName != domain.ContactFormName {
		return nil, domain.Invalid(op, "Formulaire inconnu.")
	}

	// Same rules as the browser form
	form := contact.NewContactFormFrom(params.Data)
	if !form.Valid() {
		verr := form.ValidationError(op)
		s.logger.Info("rejected invalid inquiry", "fields", verr.Fields)
		return nil, verr
	}
	data := form.Data()

	// A failing filter must not lose inquiries; duplicates slip through instead.
	fingerprint := data.Fingerprint()
	isNew, err := s.filter.IsNew(ctx, fingerprint)
	if err != nil {
		s.logger.Warn("dedup filter unavailable", "error", err)
		isNew = true
	}
	if !isNew {
		s.logger.Info("dropped duplicate inquiry", "email", data.Email)
		return nil, domain.Duplicate(op, "Cette demande a déjà été reçue.")
	}

	inq := &domain.Inquiry{
		ID:         uuid.New(),
		FormName:   params.FormName,
		Data:       data,
		ReceivedAt: s.now().UTC(),
		RemoteIP:   params.RemoteIP,
		UserAgent:  params.UserAgent,
	}

	key, err := s.archive.Save(ctx, inq)
	if err != nil {
		// Unmark it, or the sender's retry would be dropped as a duplicate.
		if ferr := s.filter.Forget(context.WithoutCancel(ctx), fingerprint); ferr != nil {
			s.logger.Error("failed to release dedup key",
				"inquiry_id", inq.ID,
				"error", ferr,
			)
		}
		return nil, domain.Internal(err, op, "failed to archive inquiry")
	}

	var opts []worker.EnqueueOption
	if s.maxAttempts > 0 {
		opts = append(opts, worker.WithMaxAttempts(s.maxAttempts))
	}
	// The inquiry is archived either way; a lost job only loses the e-mail.
	if _, err := worker.EnqueueNotifyInquiry(ctx, s.queue, inq.ID, key, opts...); err != nil {
		s.logger.Error("failed to enqueue inquiry notification",
			"inquiry_id", inq.ID,
			"archive_key", key,
			"error", err,
		)
	}

	s.logger.Info("inquiry received",
		"inquiry_id", inq.ID,
		"service", data.Service,
		"archive_key", key,
	)
	return inq, nil
}
