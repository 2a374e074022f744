package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnaconcept/site/internal/domain"
)

type sentMail struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  []byte
}

func newTestService(t *testing.T, cfg SMTPConfig) (*SMTPService, *[]sentMail) {
	t.Helper()
	svc, err := NewSMTPService(cfg, "+33 7 53 80 14 14", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	var sent []sentMail
	svc.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, auth: a, from: from, to: to, msg: msg})
		return nil
	}
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC) }
	return svc, &sent
}

func testInquiry() *domain.Inquiry {
	return &domain.Inquiry{
		ID:       uuid.MustParse("6f1c2b1e-8d7a-4c55-9a0e-3f4b5c6d7e8f"),
		FormName: domain.ContactFormName,
		Data: domain.ContactFormData{
			Nom:       "dupont",
			Prenom:    "jean",
			Email:     "jean.dupont@example.fr",
			Telephone: "06 12 34 56 78",
			Service:   "devis",
			Message:   "Bonjour, je souhaite rénover ma salle de bain.",
		},
		ReceivedAt: time.Date(2026, 10, 19, 9, 29, 0, 0, time.UTC),
	}
}

// parsed is a decoded multipart/alternative message.
type parsed struct {
	header mail.Header
	text   string
	html   string
}

func parseMessage(t *testing.T, raw []byte) parsed {
	t.Helper()
	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/alternative", mediaType)

	out := parsed{header: msg.Header}
	mr := multipart.NewReader(msg.Body, params["boundary"])
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		body, err := io.ReadAll(part)
		require.NoError(t, err)
		switch {
		case strings.HasPrefix(part.Header.Get("Content-Type"), "text/plain"):
			out.text = string(body)
		case strings.HasPrefix(part.Header.Get("Content-Type"), "text/html"):
			out.html = string(body)
		}
	}
	return out
}

func decodeHeader(t *testing.T, v string) string {
	t.Helper()
	dec := new(mime.WordDecoder)
	s, err := dec.DecodeHeader(v)
	require.NoError(t, err)
	return s
}

func TestSMTPService_SendInquiryNotification(t *testing.T) {
	svc, sent := newTestService(t, SMTPConfig{Host: "localhost", Port: 1025})

	err := svc.SendInquiryNotification(context.Background(), []string{"a@fnaconcept.fr", "b@fnaconcept.fr"}, testInquiry())
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	m := (*sent)[0]
	assert.Equal(t, "localhost:1025", m.addr)
	assert.Nil(t, m.auth)
	assert.Equal(t, DefaultFromEmail, m.from)
	assert.Equal(t, []string{"a@fnaconcept.fr", "b@fnaconcept.fr"}, m.to)

	p := parseMessage(t, m.msg)
	assert.Equal(t, "jean.dupont@example.fr", p.header.Get("Reply-To"))
	assert.Equal(t, "Nouvelle demande : Demande de devis gratuit (Jean Dupont)", decodeHeader(t, p.header.Get("Subject")))
	assert.Equal(t, "FNA Concept <noreply@fnaconcept.fr>", decodeHeader(t, p.header.Get("From")))

	assert.Contains(t, p.text, "Téléphone : 06 12 34 56 78")
	assert.Contains(t, p.text, "rénover ma salle de bain")
	assert.Contains(t, p.text, "19/10/2026 09:29 UTC")
	assert.Contains(t, p.html, "mailto:jean.dupont@example.fr")
	assert.Contains(t, p.html, "Demande de devis gratuit")
}

func TestSMTPService_SendInquiryAcknowledgement(t *testing.T) {
	svc, sent := newTestService(t, SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "user",
		Password: "secret",
		From:     "contact@fnaconcept.fr",
		FromName: "FNA Concept",
	})

	err := svc.SendInquiryAcknowledgement(context.Background(), testInquiry())
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	m := (*sent)[0]
	assert.NotNil(t, m.auth)
	assert.Equal(t, "contact@fnaconcept.fr", m.from)
	assert.Equal(t, []string{"jean.dupont@example.fr"}, m.to)

	p := parseMessage(t, m.msg)
	assert.Empty(t, p.header.Get("Reply-To"))
	assert.Equal(t, "Nous avons bien reçu votre demande", decodeHeader(t, p.header.Get("Subject")))
	assert.Contains(t, p.text, "Bonjour Jean Dupont,")
	assert.Contains(t, p.text, "+33 7 53 80 14 14")
	assert.Contains(t, p.html, "Bonjour Jean Dupont,")
}

func TestSMTPService_Errors(t *testing.T) {
	svc, sent := newTestService(t, SMTPConfig{Host: "localhost", Port: 1025})

	err := svc.SendInquiryNotification(context.Background(), nil, testInquiry())
	assert.Error(t, err)

	noEmail := testInquiry()
	noEmail.Data.Email = ""
	err = svc.SendInquiryAcknowledgement(context.Background(), noEmail)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = svc.SendInquiryAcknowledgement(ctx, testInquiry())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, *sent)

	svc.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("421 service not available")
	}
	err = svc.SendInquiryAcknowledgement(context.Background(), testInquiry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "421 service not available")
}
