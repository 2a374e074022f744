package csrf

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProtector() *Protector {
	return New(true, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken()
	require.NoError(t, err)
	b, err := GenerateToken()
	require.NoError(t, err)

	assert.Len(t, a, 44)
	assert.NotEqual(t, a, b)
}

func TestValidateToken(t *testing.T) {
	assert.True(t, ValidateToken("abc", "abc"))
	assert.False(t, ValidateToken("abc", "abd"))
	assert.False(t, ValidateToken("", ""))
	assert.False(t, ValidateToken("abc", ""))
}

func TestProtector_TokenIssuesCookieOnce(t *testing.T) {
	p := newTestProtector()

	rec := httptest.NewRecorder()
	token := p.Token(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, token)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, token, c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	// A returning visitor keeps the same token
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec = httptest.NewRecorder()
	assert.Equal(t, token, p.Token(rec, req))
	assert.Empty(t, rec.Result().Cookies())
}

func TestProtector_Verify(t *testing.T) {
	const token = "dG9rZW4tZm9yLXRlc3Rz"

	tests := []struct {
		name   string
		method string
		cookie string
		form   string
		header string
		want   int
	}{
		{name: "GET passes", method: http.MethodGet, want: http.StatusOK},
		{name: "form field matches", method: http.MethodPost, cookie: token, form: token, want: http.StatusOK},
		{name: "header matches", method: http.MethodPost, cookie: token, header: token, want: http.StatusOK},
		{name: "missing cookie", method: http.MethodPost, form: token, want: http.StatusForbidden},
		{name: "missing token", method: http.MethodPost, cookie: token, want: http.StatusForbidden},
		{name: "mismatch", method: http.MethodPost, cookie: token, form: "other", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProtector()

			var seen string
			h := p.Verify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = p.Token(w, r)
				w.WriteHeader(http.StatusOK)
			}))

			form := url.Values{}
			if tt.form != "" {
				form.Set(FormFieldName, tt.form)
			}
			req := httptest.NewRequest(tt.method, "/contact", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set(HeaderName, tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK && tt.method == http.MethodPost {
				assert.Equal(t, token, seen)
			}
			if tt.want == http.StatusForbidden {
				assert.Contains(t, rec.Body.String(), "Veuillez recharger la page")
			}
		})
	}
}
