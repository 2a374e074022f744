// Package email sends the transactional e-mails of the contact flow.
//
// Service has one implementation, SMTPService, which works with Mailhog in
// development and any authenticated SMTP relay in production.
package email

import (
	"context"

	"github.com/fnaconcept/site/internal/domain"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Service defines the e-mails sent when an inquiry arrives.
type Service interface {
	// SendInquiryNotification tells the company about a new inquiry.
	// The customer's address is used as Reply-To.
	SendInquiryNotification(ctx context.Context, to []string, inq *domain.Inquiry) error

	// SendInquiryAcknowledgement confirms receipt to the customer.
	SendInquiryAcknowledgement(ctx context.Context, inq *domain.Inquiry) error
}

// =============================================================================
// Email Data Types
// =============================================================================

// Email represents a single email message.
type Email struct {
	To       []string // Recipient addresses
	ReplyTo  string   // Optional Reply-To address
	Subject  string   // Email subject line
	HTMLBody string   // HTML content of the email
	TextBody string   // Plain text fallback content
}

// =============================================================================
// Configuration Types
// =============================================================================

// SMTPConfig holds SMTP server configuration.
type SMTPConfig struct {
	Host     string // SMTP server hostname (e.g., "localhost" for Mailhog)
	Port     int    // SMTP server port (e.g., 1025 for Mailhog)
	Username string // SMTP authentication username (empty for Mailhog)
	Password string // SMTP authentication password (empty for Mailhog)
	From     string // Default sender email address
	FromName string // Default sender display name
}

// =============================================================================
// Common Constants
// =============================================================================

const (
	// DefaultFromEmail is the default sender email for transactional emails.
	DefaultFromEmail = "noreply@fnaconcept.fr"

	// DefaultFromName is the default sender display name.
	DefaultFromName = "FNA Concept"
)
