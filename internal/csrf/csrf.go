// Package csrf protects the site's own forms with the double-submit cookie
// pattern: a random token is set in a cookie and echoed in each POST, either
// as a form field or, for htmx requests, as a header.
package csrf

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"
)

// =============================================================================
// Configuration Constants
// =============================================================================

const (
	// CookieName is the name of the CSRF token cookie.
	CookieName = "csrf_token"

	// FormFieldName is the name of the CSRF token form field.
	FormFieldName = "csrf_token"

	// HeaderName carries the token on htmx requests.
	HeaderName = "X-CSRF-Token"

	// TokenLength is the number of random bytes for the token (32 bytes = 256 bits).
	TokenLength = 32

	// CookieMaxAge is the lifetime of the CSRF cookie (12 hours). Visitors
	// often leave the page open a long time before filling in the form.
	CookieMaxAge = 12 * 3600
)

type contextKey struct{}

// =============================================================================
// Token Generation
// =============================================================================

// GenerateToken generates a cryptographically secure random token.
//
// The token is 32 bytes of random data, base64 URL-encoded.
// This produces a 44-character string.
func GenerateToken() (string, error) {
	b := make([]byte, TokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ValidateToken compares the cookie token with the submitted token in
// constant time.
func ValidateToken(cookieToken, submitted string) bool {
	if cookieToken == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(submitted)) == 1
}

// =============================================================================
// Protector
// =============================================================================

// Protector issues tokens and rejects POSTs that do not echo them.
type Protector struct {
	secure bool
	logger *slog.Logger
}

// New creates a Protector. Set secure in production so the cookie is only
// sent over HTTPS.
func New(secure bool, logger *slog.Logger) *Protector {
	return &Protector{secure: secure, logger: logger}
}

// Token returns the request's token, issuing a cookie when there is none.
func (p *Protector) Token(w http.ResponseWriter, r *http.Request) string {
	if token, ok := r.Context().Value(contextKey{}).(string); ok {
		return token
	}
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	token, err := GenerateToken()
	if err != nil {
		p.logger.Error("failed to generate CSRF token", "error", err)
		return ""
	}
	p.setCookie(w, token)
	return token
}

// Verify rejects unsafe requests whose submitted token does not match the
// cookie. The verified token is available to the handler through Token.
func (p *Protector) Verify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(CookieName)
		if err != nil {
			p.reject(w, r, "missing cookie")
			return
		}

		submitted := r.Header.Get(HeaderName)
		if submitted == "" {
			submitted = r.PostFormValue(FormFieldName)
		}
		if !ValidateToken(cookie.Value, submitted) {
			p.reject(w, r, "token mismatch")
			return
		}

		ctx := context.WithValue(r.Context(), contextKey{}, cookie.Value)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (p *Protector) reject(w http.ResponseWriter, r *http.Request, reason string) {
	p.logger.Warn("CSRF check failed",
		"reason", reason,
		"path", r.URL.Path,
		"method", r.Method,
	)
	http.Error(w, "La session du formulaire a expiré. Veuillez recharger la page.", http.StatusForbidden)
}

// setCookie sets the CSRF token cookie on the response.
//
// SameSite=Lax keeps the cookie on top-level navigation from search engines
// and mail links, so the first POST after arriving from elsewhere succeeds.
func (p *Protector) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   CookieMaxAge,
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
