package ratelimit

import (
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/shopcore/shop-auth/pkg/errors"
)

// Default bucket TTL for per-client buckets
const defaultBucketTTL = time.Hour

// Middleware rate-limits requests per client IP. It fronts the public auth
// endpoints where anonymous clients can probe for existing accounts.
type Middleware struct {
	limiter *RateLimiter
}

// NewMiddleware creates a per-IP rate limiting middleware.
// capacity: maximum burst per client
// refillRate: requests per second per client
func NewMiddleware(capacity int, refillRate float64) *Middleware {
	return &Middleware{
		limiter: NewRateLimiter(capacity, refillRate, defaultBucketTTL),
	}
}

// Handler returns the rate limiting middleware handler
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !m.limiter.Allow(ip) {
			slog.Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path, "method", r.Method)
			w.Header().Set("Retry-After", "60")
			errors.WriteError(w, r, errors.New(errors.ErrCodeRateLimitExceeded, "too many requests"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client address, preferring proxy-set headers over
// RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// X-Forwarded-For can list multiple hops, the first is the client
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
