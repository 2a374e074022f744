package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Request Logging Middleware Tests
// =============================================================================

func logRequest(t *testing.T, handler http.Handler, req *http.Request) string {
	t.Helper()
	var buf bytes.Buffer
	mw := NewRequestLoggingMiddleware(slog.New(slog.NewTextHandler(&buf, nil)))
	mw.Handler(handler).ServeHTTP(httptest.NewRecorder(), req)
	return buf.String()
}

func TestRequestLoggingMiddleware_LogsBasicInfo(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/section/services", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	req.Header.Set("User-Agent", "Mozilla/5.0 (test)")

	out := logRequest(t, okHandler(), req)

	assert.Contains(t, out, "method=GET")
	assert.Contains(t, out, "path=/section/services")
	assert.Contains(t, out, "status=200")
	assert.Contains(t, out, "duration_ms=")
	assert.Contains(t, out, "ip=192.168.1.1")
	assert.Contains(t, out, "Mozilla/5.0 (test)")
	assert.Contains(t, out, "level=INFO")
}

func TestRequestLoggingMiddleware_ServerErrorsLogAtWarn(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	out := logRequest(t, h, httptest.NewRequest(http.MethodPost, "/contact", nil))

	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "status=502")
}

func TestRequestLoggingMiddleware_MarksHTMXRequests(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/contact", nil)
	req.Header.Set("HX-Request", "true")

	assert.Contains(t, logRequest(t, okHandler(), req), "htmx=true")
}

func TestRequestLoggingMiddleware_RedactsSensitiveQueryParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?email=jean@example.fr&telephone=0612345678&w=640", nil)
	out := logRequest(t, okHandler(), req)

	assert.NotContains(t, out, "jean@example.fr")
	assert.NotContains(t, out, "0612345678")
	assert.Contains(t, out, "email=[REDACTED]")
	assert.Contains(t, out, "w=640")
}

func TestRequestLoggingMiddleware_SkipsNoisyPaths(t *testing.T) {
	for _, path := range []string{"/health", "/metrics", "/static/css/site.css", "/img/hero.png"} {
		t.Run(path, func(t *testing.T) {
			assert.Empty(t, logRequest(t, okHandler(), httptest.NewRequest(http.MethodGet, path, nil)))
		})
	}
}

func TestRequestLoggingMiddleware_PassesRequestThrough(t *testing.T) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Header().Set("X-Custom", "value")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("body"))
	})

	mw := NewRequestLoggingMiddleware(discardLogger())
	rec := httptest.NewRecorder()
	mw.Handler(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "value", rec.Header().Get("X-Custom"))
	assert.Equal(t, "body", rec.Body.String())
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		path, query, want string
	}{
		{"/", "", "/"},
		{"/img/hero.png", "w=640", "/img/hero.png?w=640"},
		{"/", "csrf_token=abc&x=1", "/?csrf_token=[REDACTED]&x=1"},
		{"/", "PASSWORD=abc", "/?PASSWORD=[REDACTED]"},
		{"/", "novalue", "/"},
	}
	for _, tt := range tests {
		got := sanitizePath(tt.path, tt.query)
		if got != tt.want {
			t.Errorf("sanitizePath(%q, %q) = %q, want %q", tt.path, tt.query, got, tt.want)
		}
		assert.False(t, strings.Contains(got, "abc"))
	}
}
