package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Inquiry is a contact form submission accepted by the form-processing
// endpoint.
type Inquiry struct {
	ID         uuid.UUID       `json:"id"`
	FormName   string          `json:"form_name"`
	Data       ContactFormData `json:"data"`
	ReceivedAt time.Time       `json:"received_at"`
	RemoteIP   string          `json:"remote_ip,omitempty"`
	UserAgent  string          `json:"user_agent,omitempty"`
}

// FullName returns "Prenom Nom".
func (i *Inquiry) FullName() string {
	return strings.TrimSpace(i.Data.Prenom + " " + i.Data.Nom)
}

// ServiceLabel returns the human label of the requested service.
func (i *Inquiry) ServiceLabel() string {
	return ServiceLabel(i.Data.Service)
}

// Fingerprint identifies the content of a submission. Two submissions with the
// same fields (ignoring case and surrounding whitespace) share a fingerprint.
func (d ContactFormData) Fingerprint() string {
	h := sha256.New()
	for _, field := range Fields {
		v := strings.ToLower(strings.TrimSpace(d.Get(field)))
		h.Write([]byte(field))
		h.Write([]byte{0})
		h.Write([]byte(v))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
