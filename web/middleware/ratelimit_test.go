package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterHit(t *testing.T) {
	limiter := &rateLimiter{windows: make(map[string]*rateWindow)}

	for i := 1; i <= 3; i++ {
		count, allowed := limiter.hit("1.2.3.4:/api/sites", 3)
		if !allowed || count != i {
			t.Errorf("hit %d = (%d, %v), expected (%d, true)", i, count, allowed, i)
		}
	}

	if _, allowed := limiter.hit("1.2.3.4:/api/sites", 3); allowed {
		t.Error("request over the limit was allowed")
	}

	// Other keys keep their own window.
	if _, allowed := limiter.hit("5.6.7.8:/api/sites", 3); !allowed {
		t.Error("fresh key was blocked")
	}

	// An expired window resets the counter.
	limiter.windows["1.2.3.4:/api/sites"].resetAt = time.Now().Add(-time.Second)
	count, allowed := limiter.hit("1.2.3.4:/api/sites", 3)
	if !allowed || count != 1 {
		t.Errorf("hit after reset = (%d, %v), expected (1, true)", count, allowed)
	}
}

func TestRateLimitSkipPaths(t *testing.T) {
	config := DefaultRateLimitConfig()

	tests := []struct {
		path     string
		expected bool
	}{
		{"/assets/css/app.css", true},
		{"/favicon.ico", true},
		{"/api/sites", false},
		{"/", false},
	}
	for _, tc := range tests {
		if got := config.shouldSkip(tc.path); got != tc.expected {
			t.Errorf("shouldSkip(%q) = %v, expected %v", tc.path, got, tc.expected)
		}
	}
}
