package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"/contact", "/contact"},
		{"/health", "/health"},
		{"/section/services", "/section/{id}"},
		{"/img/hero.png", "/img/{name}"},
		{"/static/css/site.css", "/static/{path}"},
		{"/wp-login.php", "other"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePath(tt.path))
		})
	}
}

func TestMiddleware_RecordsStatus(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	before := counterValue(t, HTTPRequestsTotal.WithLabelValues("GET", "/section/{id}", "418"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/section/about", nil))

	after := counterValue(t, HTTPRequestsTotal.WithLabelValues("GET", "/section/{id}", "418"))
	assert.Equal(t, before+1, after)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestSubmissionFinished(t *testing.T) {
	before := counterValue(t, ContactSubmissionsTotal.WithLabelValues("timeout"))
	SubmissionFinished("timeout", 0)
	assert.Equal(t, before+1, counterValue(t, ContactSubmissionsTotal.WithLabelValues("timeout")))
}
