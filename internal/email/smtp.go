package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"mime/quotedprintable"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fnaconcept/site/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// =============================================================================
// SMTP Email Service Implementation
// =============================================================================

// SMTPService sends emails via SMTP.
//
// Email templates are embedded in the binary and rendered with Go's
// html/template package.
type SMTPService struct {
	config       SMTPConfig
	contactPhone string
	templates    *template.Template
	logger       *slog.Logger
	titleCase    cases.Caser

	sendMail sendFunc
	now      func() time.Time
}

// NewSMTPService creates a new SMTP-based email service. contactPhone is
// quoted in the acknowledgement sent to customers.
func NewSMTPService(config SMTPConfig, contactPhone string, logger *slog.Logger) (*SMTPService, error) {
	// Set defaults
	if config.From == "" {
		config.From = DefaultFromEmail
	}
	if config.FromName == "" {
		config.FromName = DefaultFromName
	}

	templates, err := template.New("email").Funcs(emailTemplateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &SMTPService{
		config:       config,
		contactPhone: contactPhone,
		templates:    templates,
		logger:       logger,
		titleCase:    cases.Title(language.French),
		sendMail:     smtp.SendMail,
		now:          time.Now,
	}, nil
}

// =============================================================================
// Service Interface Implementation
// =============================================================================

// SendInquiryNotification tells the company about a new inquiry.
func (s *SMTPService) SendInquiryNotification(ctx context.Context, to []string, inq *domain.Inquiry) error {
	if len(to) == 0 {
		return fmt.Errorf("no notification recipients")
	}

	data := map[string]interface{}{
		"Inquiry":    inq,
		"Service":    inq.ServiceLabel(),
		"ReceivedAt": inq.ReceivedAt.UTC().Format("02/01/2006 15:04 UTC"),
	}

	htmlBody, err := s.renderTemplate("inquiry_notification.html", data)
	if err != nil {
		return fmt.Errorf("failed to render notification email template: %w", err)
	}

	textBody := fmt.Sprintf(`Nouvelle demande de contact

Nom : %s
Prénom : %s
Email : %s
Téléphone : %s
Service : %s
Reçue le : %s

Message :
%s

Référence %s
`, inq.Data.Nom, inq.Data.Prenom, inq.Data.Email, inq.Data.Telephone,
		inq.ServiceLabel(), data["ReceivedAt"], inq.Data.Message, inq.ID)

	email := Email{
		To:       to,
		ReplyTo:  inq.Data.Email,
		Subject:  fmt.Sprintf("Nouvelle demande : %s (%s)", inq.ServiceLabel(), s.displayName(inq)),
		HTMLBody: htmlBody,
		TextBody: textBody,
	}

	return s.send(ctx, email)
}

// SendInquiryAcknowledgement confirms receipt to the customer.
func (s *SMTPService) SendInquiryAcknowledgement(ctx context.Context, inq *domain.Inquiry) error {
	if inq.Data.Email == "" {
		return fmt.Errorf("inquiry %s has no email address", inq.ID)
	}

	name := s.displayName(inq)
	data := map[string]interface{}{
		"Name":    name,
		"Service": inq.ServiceLabel(),
		"Phone":   s.contactPhone,
	}

	htmlBody, err := s.renderTemplate("inquiry_acknowledgement.html", data)
	if err != nil {
		return fmt.Errorf("failed to render acknowledgement email template: %w", err)
	}

	textBody := fmt.Sprintf(`Bonjour %s,

Merci pour votre message concernant « %s ». Notre équipe vous répondra dans les plus brefs délais.

Pour toute urgence, vous pouvez nous joindre au %s.

Cordialement,
L'équipe FNA Concept
`, name, inq.ServiceLabel(), s.contactPhone)

	email := Email{
		To:       []string{inq.Data.Email},
		Subject:  "Nous avons bien reçu votre demande",
		HTMLBody: htmlBody,
		TextBody: textBody,
	}

	return s.send(ctx, email)
}

// =============================================================================
// Internal Methods
// =============================================================================

// displayName title-cases the customer's name ("jean dupont" -> "Jean Dupont").
func (s *SMTPService) displayName(inq *domain.Inquiry) string {
	return s.titleCase.String(inq.FullName())
}

// send sends an email via SMTP. smtp.SendMail has no context, so the
// context is only checked before dialing.
func (s *SMTPService) send(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := s.buildMessage(email)
	if err != nil {
		return fmt.Errorf("failed to build email: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	// Create auth if credentials are provided (not needed for Mailhog)
	var auth smtp.Auth
	if s.config.Username != "" && s.config.Password != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	if err := s.sendMail(addr, auth, s.config.From, email.To, msg); err != nil {
		s.logger.Error("failed to send email",
			"to", email.To,
			"subject", email.Subject,
			"error", err,
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		"to", email.To,
		"subject", email.Subject,
	)

	return nil
}

// buildMessage constructs the raw multipart/alternative message.
func (s *SMTPService) buildMessage(email Email) ([]byte, error) {
	var buf bytes.Buffer

	from := mime.QEncoding.Encode("utf-8", s.config.FromName)
	buf.WriteString(fmt.Sprintf("From: %s <%s>\r\n", from, s.config.From))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(email.To, ", ")))
	if email.ReplyTo != "" {
		buf.WriteString(fmt.Sprintf("Reply-To: %s\r\n", email.ReplyTo))
	}
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", email.Subject)))
	buf.WriteString(fmt.Sprintf("Date: %s\r\n", s.now().Format(time.RFC1123Z)))
	buf.WriteString("MIME-Version: 1.0\r\n")

	boundary := "fnaconcept-" + uuid.NewString()
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary))
	buf.WriteString("\r\n")

	parts := []struct {
		contentType string
		body        string
	}{
		{"text/plain; charset=utf-8", email.TextBody},
		{"text/html; charset=utf-8", email.HTMLBody},
	}
	for _, part := range parts {
		buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		buf.WriteString(fmt.Sprintf("Content-Type: %s\r\n", part.contentType))
		buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
		buf.WriteString("\r\n")

		qp := quotedprintable.NewWriter(&buf)
		if _, err := qp.Write([]byte(part.body)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
		buf.WriteString("\r\n")
	}

	buf.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return buf.Bytes(), nil
}

// renderTemplate renders an email template with the given data.
func (s *SMTPService) renderTemplate(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// =============================================================================
// Template Functions
// =============================================================================

// emailTemplateFuncs returns template functions available in email templates.
func emailTemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"currentYear": func() int {
			return time.Now().Year()
		},
	}
}

// =============================================================================
// Compile-time interface check
// =============================================================================

var _ Service = (*SMTPService)(nil)
