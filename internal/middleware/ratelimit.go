package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// =============================================================================
// Rate Limiter
// =============================================================================

// RateLimiter tracks request counts per key with a fixed window.
type RateLimiter struct {
	maxAttempts int
	window      time.Duration
	logger      *slog.Logger
	now         func() time.Time

	mu        sync.Mutex
	entries   map[string]*rateLimitEntry
	lastSweep time.Time
}

type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(maxAttempts int, window time.Duration, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		maxAttempts: maxAttempts,
		window:      window,
		logger:      logger,
		now:         time.Now,
		entries:     make(map[string]*rateLimitEntry),
	}
}

// Allow checks if a request from the given key should be allowed.
// Returns true if allowed, false if rate limited.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	entry, exists := rl.entries[key]
	if !exists || now.Sub(entry.windowStart) > rl.window {
		rl.entries[key] = &rateLimitEntry{count: 1, windowStart: now}
		return true
	}

	if entry.count < rl.maxAttempts {
		entry.count++
		return true
	}
	return false
}

// Reset clears the rate limit for a key.
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.entries, key)
}

// TimeUntilReset returns how long until the rate limit resets for a key.
func (rl *RateLimiter) TimeUntilReset(key string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.entries[key]
	if !exists {
		return 0
	}

	elapsed := rl.now().Sub(entry.windowStart)
	if elapsed >= rl.window {
		return 0
	}
	return rl.window - elapsed
}

// sweep drops expired entries at most once per window. Caller holds mu.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.window {
		return
	}
	rl.lastSweep = now
	for key, entry := range rl.entries {
		if now.Sub(entry.windowStart) > rl.window {
			delete(rl.entries, key)
		}
	}
}

// =============================================================================
// Rate Limit Middleware
// =============================================================================

// RateLimitMiddleware wraps a rate limiter for use as HTTP middleware.
type RateLimitMiddleware struct {
	limiter *RateLimiter
	logger  *slog.Logger
}

// NewRateLimitMiddleware creates a new rate limit middleware.
func NewRateLimitMiddleware(limiter *RateLimiter, logger *slog.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		logger:  logger,
	}
}

// Limit returns middleware that rate limits requests per client IP.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := ClientIP(r)

		if m.limiter.Allow(clientIP) {
			next.ServeHTTP(w, r)
			return
		}

		m.logger.Warn("rate limit exceeded",
			"ip", clientIP,
			"path", r.URL.Path,
			"method", r.Method,
		)

		retryAfter := int(m.limiter.TimeUntilReset(clientIP).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

		switch {
		case isAPIRequest(r):
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{
					"code":    "rate_limit",
					"message": "Trop de demandes. Veuillez réessayer plus tard.",
				},
			})
		case r.Header.Get("HX-Request") == "true":
			// htmx swaps the fragment into the form's status area
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`<div class="rounded-md bg-red-50 p-4 text-red-800" role="alert">Trop de demandes. Veuillez patienter quelques minutes avant de réessayer.</div>`))
		default:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`<!DOCTYPE html>
<html lang="fr">
<head><meta charset="utf-8"><title>Trop de demandes</title></head>
<body>
<h1>Trop de demandes</h1>
<p>Vous avez envoyé trop de demandes. Veuillez patienter quelques minutes avant de réessayer.</p>
</body>
</html>`))
		}
	})
}
