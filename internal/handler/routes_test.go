package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnaconcept/site/internal/csrf"
	"github.com/fnaconcept/site/internal/domain"
	"github.com/fnaconcept/site/internal/middleware"
	"github.com/fnaconcept/site/internal/service"
	"github.com/fnaconcept/site/internal/submission"
)

// formRoutes wires POST /contact and POST / on one server the way
// cmd/server does, with the site posting to its own form endpoint.
type formRoutes struct {
	mux *http.ServeMux

	mu       sync.Mutex
	received []service.ReceiveParams
}

func newFormRoutes(t *testing.T) *formRoutes {
	t.Helper()
	fr := &formRoutes{mux: http.NewServeMux()}

	srv := httptest.NewServer(fr.mux)
	t.Cleanup(srv.Close)

	client, err := submission.New(submission.Config{Endpoint: srv.URL, Timeout: 5 * time.Second}, discardLogger())
	require.NoError(t, err)

	inquiries := &mockInquiryService{
		ReceiveFunc: func(_ context.Context, params service.ReceiveParams) (*domain.Inquiry, error) {
			fr.mu.Lock()
			defer fr.mu.Unlock()
			fr.received = append(fr.received, params)
			return &domain.Inquiry{ID: uuid.New()}, nil
		},
	}

	contactLimit := middleware.NewRateLimitMiddleware(middleware.NewRateLimiter(5, 10*time.Minute, discardLogger()), discardLogger())
	inboxLimit := middleware.NewRateLimitMiddleware(middleware.NewRateLimiter(10, 10*time.Minute, discardLogger()), discardLogger())

	NewContactHandler(testContent(t), client, newTestRenderer(t), csrf.New(false, discardLogger()), discardLogger()).
		RegisterRoutes(fr.mux, contactLimit.Limit)
	NewInboxHandler(inquiries, discardLogger()).RegisterRoutes(fr.mux, inboxLimit.Limit)
	return fr
}

func (fr *formRoutes) submit(ip, userAgent string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(validContactForm().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	req.Header.Set("X-Forwarded-For", ip)
	req.Header.Set("User-Agent", userAgent)
	req.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: testCSRFToken})
	rec := httptest.NewRecorder()
	fr.mux.ServeHTTP(rec, req)
	return rec
}

func TestFormRoutes_VisitorsDoNotShareTheServerLimit(t *testing.T) {
	fr := newFormRoutes(t)

	for i := 1; i <= 8; i++ {
		ip := fmt.Sprintf("203.0.113.%d", i)
		rec := fr.submit(ip, "Mozilla/5.0 visitor-"+ip)

		require.Equal(t, http.StatusOK, rec.Code, "visitor %s", ip)
		assert.Contains(t, rec.Body.String(), "Votre message a bien été envoyé", "visitor %s", ip)
	}

	fr.mu.Lock()
	defer fr.mu.Unlock()
	require.Len(t, fr.received, 8)
	for i, params := range fr.received {
		ip := fmt.Sprintf("203.0.113.%d", i+1)
		assert.Equal(t, ip, params.RemoteIP)
		assert.Equal(t, "Mozilla/5.0 visitor-"+ip, params.UserAgent)
	}
}

func TestFormRoutes_VisitorLimitStillApplies(t *testing.T) {
	fr := newFormRoutes(t)

	for i := 0; i < 5; i++ {
		rec := fr.submit("198.51.100.9", "Mozilla/5.0")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := fr.submit("198.51.100.9", "Mozilla/5.0")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = fr.submit("198.51.100.10", "Mozilla/5.0")
	assert.Equal(t, http.StatusOK, rec.Code)

	fr.mu.Lock()
	defer fr.mu.Unlock()
	assert.Len(t, fr.received, 6)
}
