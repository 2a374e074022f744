package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// MetricsAuthMiddleware provides basic authentication for the metrics endpoint.
type MetricsAuthMiddleware struct {
	username [sha256.Size]byte
	password [sha256.Size]byte
	enabled  bool
	logger   *slog.Logger
}

// NewMetricsAuthMiddleware creates a new metrics auth middleware.
// If both username and password are empty, authentication is disabled.
func NewMetricsAuthMiddleware(username, password string, logger *slog.Logger) *MetricsAuthMiddleware {
	return &MetricsAuthMiddleware{
		username: sha256.Sum256([]byte(username)),
		password: sha256.Sum256([]byte(password)),
		enabled:  username != "" || password != "",
		logger:   logger,
	}
}

// Handler returns middleware that requires basic authentication.
func (m *MetricsAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			next.ServeHTTP(w, r)
			return
		}

		user, pass, ok := r.BasicAuth()
		if !ok {
			m.unauthorized(w)
			return
		}

		// Comparing digests keeps the comparison constant-time regardless of
		// the submitted lengths.
		userHash := sha256.Sum256([]byte(user))
		passHash := sha256.Sum256([]byte(pass))
		userMatch := subtle.ConstantTimeCompare(userHash[:], m.username[:]) == 1
		passMatch := subtle.ConstantTimeCompare(passHash[:], m.password[:]) == 1

		if !userMatch || !passMatch {
			m.logger.Warn("metrics authentication failed", "ip", ClientIP(r))
			m.unauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// unauthorized sends a 401 response with WWW-Authenticate header.
func (m *MetricsAuthMiddleware) unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="fnaconcept metrics"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
