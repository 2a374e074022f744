package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fnaconcept/site/internal/domain"
	"github.com/fnaconcept/site/internal/email"
	"github.com/fnaconcept/site/internal/metrics"
	"github.com/fnaconcept/site/internal/storage"
	"github.com/fnaconcept/site/internal/worker"
)

// InquiryLoader reads archived inquiries. *storage.Archive implements it.
type InquiryLoader interface {
	Load(ctx context.Context, key string) (*domain.Inquiry, error)
}

// NotifyInquiryHandler processes jobs that e-mail a new inquiry to the
// company and, optionally, acknowledge it to the customer.
type NotifyInquiryHandler struct {
	inquiries       InquiryLoader
	emailService    email.Service
	recipients      []string
	acknowledgement bool
	logger          *slog.Logger
}

// NewNotifyInquiryHandler creates a new handler for inquiry notification jobs.
func NewNotifyInquiryHandler(
	inquiries InquiryLoader,
	emailService email.Service,
	recipients []string,
	acknowledgement bool,
	logger *slog.Logger,
) *NotifyInquiryHandler {
	return &NotifyInquiryHandler{
		inquiries:       inquiries,
		emailService:    emailService,
		recipients:      recipients,
		acknowledgement: acknowledgement,
		logger:          logger,
	}
}

// Type returns the job type identifier.
func (h *NotifyInquiryHandler) Type() string {
	return worker.JobTypeNotifyInquiry
}

// Handle executes the notification job.
//
// A failed company notification is retried. A failed acknowledgement is
// only logged: retrying it would resend the notification as well.
func (h *NotifyInquiryHandler) Handle(ctx context.Context, payload []byte) error {
	// 1. Unmarshal the payload
	var p worker.NotifyInquiryPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.NewPermanentError(fmt.Errorf("invalid payload: %w", err))
	}
	if p.ArchiveKey == "" {
		return worker.Permanentf("payload for inquiry %s has no archive key", p.InquiryID)
	}

	// 2. Load the archived inquiry
	inq, err := h.inquiries.Load(ctx, p.ArchiveKey)
	if err != nil {
		if storage.IsNotFound(err) {
			return worker.Permanentf("inquiry not found: %s", p.ArchiveKey)
		}
		return fmt.Errorf("load inquiry: %w", err)
	}

	logger := h.logger.With("inquiry_id", inq.ID, "service", inq.Data.Service)

	// 3. Notify the company
	if len(h.recipients) == 0 {
		return worker.Permanentf("no notification recipients configured")
	}
	if err := h.emailService.SendInquiryNotification(ctx, h.recipients, inq); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	metrics.NotificationSent("notification")
	logger.Info("Inquiry notification sent", "recipients", len(h.recipients))

	// 4. Acknowledge to the customer
	if !h.acknowledgement {
		return nil
	}
	if err := h.emailService.SendInquiryAcknowledgement(ctx, inq); err != nil {
		logger.Warn("Failed to send acknowledgement", "error", err)
		return nil
	}
	metrics.NotificationSent("acknowledgement")
	logger.Info("Inquiry acknowledgement sent")

	return nil
}

var _ worker.JobHandler = (*NotifyInquiryHandler)(nil)
