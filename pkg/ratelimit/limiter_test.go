package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketBurstThenDeny(t *testing.T) {
	tb := NewTokenBucket(3, 0.0001)

	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow(), "request %d within burst", i)
	}
	assert.False(t, tb.Allow(), "request beyond burst")
}

func TestTokenBucketRefills(t *testing.T) {
	tb := NewTokenBucket(1, 100)

	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, tb.Allow())
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, 0.0001, 0)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestMiddlewareReturns429(t *testing.T) {
	m := NewMiddleware(1, 0.0001)
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:4567"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// A different client is unaffected
	other := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	other.RemoteAddr = "10.0.0.2:4567"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:1234"
	assert.Equal(t, "10.0.0.9", clientIP(req))

	req.Header.Set("X-Real-IP", "203.0.113.7")
	assert.Equal(t, "203.0.113.7", clientIP(req))

	req.Header.Set("X-Forwarded-For", "198.51.100.4, 10.0.0.1")
	assert.Equal(t, "198.51.100.4", clientIP(req))
}
