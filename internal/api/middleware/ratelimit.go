// Package middleware provides HTTP middleware for the briefing API.
package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimitConfig holds configuration for per-client rate limiting on the
// briefing and feedback endpoints.
type RateLimitConfig struct {
	// RequestsPerWindow is the max requests a client may make per window.
	RequestsPerWindow int
	// Window is the time window limits reset over.
	Window time.Duration
}

// DefaultRateLimitConfig returns a conservative default: 60 requests/minute
// per client.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerWindow: 60,
		Window:            time.Minute,
	}
}

// ClientKeyHeader is the header a caller may set to identify itself for rate
// limiting; when absent the request's real IP is used instead.
const ClientKeyHeader = "X-User-ID"

// RateLimiter wraps httprate's fixed-window limiter, keyed by client
// identity (user ID header, falling back to remote IP).
type RateLimiter struct {
	config *RateLimitConfig
}

// NewRateLimiter creates a new RateLimiter from the given config.
func NewRateLimiter(config *RateLimitConfig) *RateLimiter {
	return &RateLimiter{config: config}
}

// Middleware returns HTTP middleware that enforces the rate limit.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return httprate.Limit(
		rl.config.RequestsPerWindow,
		rl.config.Window,
		httprate.WithKeyFuncs(clientKeyFunc),
		httprate.WithLimitHandler(rateLimitedHandler),
	)(next)
}

func clientKeyFunc(r *http.Request) (string, error) {
	if key := r.Header.Get(ClientKeyHeader); key != "" {
		return key, nil
	}
	return httprate.KeyByRealIP(r)
}

func rateLimitedHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":    "RATE_LIMITED",
			"message": "too many requests, please slow down",
		},
	})
}
