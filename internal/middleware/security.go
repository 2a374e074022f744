package middleware

import (
	"net/http"
	"strings"
)

// SecurityHeadersMiddleware adds HTTP security headers to all responses.
type SecurityHeadersMiddleware struct {
	isSecure bool   // Whether to enable HTTPS-specific headers (true in production)
	csp      string // Precomputed Content-Security-Policy
}

// NewSecurityHeadersMiddleware creates a new security headers middleware.
// Set isSecure to true in production to enable HSTS. formOrigins are extra
// origins the contact form may post to, besides the site itself.
func NewSecurityHeadersMiddleware(isSecure bool, formOrigins ...string) *SecurityHeadersMiddleware {
	return &SecurityHeadersMiddleware{
		isSecure: isSecure,
		csp:      buildCSP(formOrigins),
	}
}

// Handler returns middleware that sets security headers on all responses.
func (m *SecurityHeadersMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		// Prevent clickjacking - deny all framing
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// HSTS - only in production with HTTPS
		if m.isSecure {
			// max-age=31536000 = 1 year
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		h.Set("Content-Security-Policy", m.csp)

		// The site uses no device APIs
		h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		next.ServeHTTP(w, r)
	})
}

// buildCSP constructs the Content-Security-Policy header value for the
// one-page site: htmx from unpkg, Tailwind output with inline styles, local
// images and trust-banner icons hosted on GitHub.
func buildCSP(formOrigins []string) string {
	formAction := "'self'"
	connect := "'self'"
	for _, origin := range formOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			continue
		}
		formAction += " " + origin
		connect += " " + origin
	}

	return "default-src 'self'; " +
		"script-src 'self' https://unpkg.com; " +
		"style-src 'self' 'unsafe-inline'; " +
		"img-src 'self' data: https://raw.githubusercontent.com; " +
		"font-src 'self'; " +
		"connect-src " + connect + "; " +
		"frame-ancestors 'none'; " +
		"base-uri 'self'; " +
		"form-action " + formAction
}
