package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Security Headers Middleware Tests
// =============================================================================

func securityHeaders(isSecure bool, formOrigins ...string) http.Header {
	rec := httptest.NewRecorder()
	NewSecurityHeadersMiddleware(isSecure, formOrigins...).Handler(okHandler()).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec.Header()
}

func TestSecurityHeadersMiddleware_SetsHeaders(t *testing.T) {
	h := securityHeaders(true)

	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
	assert.Equal(t, "max-age=31536000; includeSubDomains", h.Get("Strict-Transport-Security"))
	assert.Equal(t, "geolocation=(), microphone=(), camera=()", h.Get("Permissions-Policy"))
}

func TestSecurityHeadersMiddleware_NoHSTSInDevelopment(t *testing.T) {
	assert.Empty(t, securityHeaders(false).Get("Strict-Transport-Security"))
}

func TestSecurityHeadersMiddleware_CSP(t *testing.T) {
	csp := securityHeaders(false).Get("Content-Security-Policy")

	for _, directive := range []string{
		"default-src 'self'",
		"script-src 'self' https://unpkg.com",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data: https://raw.githubusercontent.com",
		"frame-ancestors 'none'",
		"form-action 'self'",
	} {
		assert.Contains(t, csp, directive)
	}
	assert.False(t, strings.Contains(csp, "script-src 'self' https://unpkg.com 'unsafe-inline'"))
}

func TestSecurityHeadersMiddleware_CSPAllowsFormOrigins(t *testing.T) {
	csp := securityHeaders(false, "https://forms.example.com/", " ").Get("Content-Security-Policy")

	assert.Contains(t, csp, "form-action 'self' https://forms.example.com")
	assert.Contains(t, csp, "connect-src 'self' https://forms.example.com;")
}
