package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/mariaangelps/490-The-Team/internal/apperr"
)

// RateLimiter tracks request counts per client key in a sliding window
type RateLimiter struct {
	mu          sync.Mutex
	requests    map[string][]time.Time
	limit       int           // Max requests allowed
	window      time.Duration // Time window for rate limiting
	lastCleanup time.Time
	now         func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Allow checks if a request for key should be allowed
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	if now.Sub(rl.lastCleanup) > rl.window {
		rl.cleanup(cutoff)
		rl.lastCleanup = now
	}

	// Drop requests outside the window, reusing the backing array
	valid := rl.requests[key][:0]
	for _, t := range rl.requests[key] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

// cleanup removes keys with no recent requests to bound memory
func (rl *RateLimiter) cleanup(cutoff time.Time) {
	for key, requests := range rl.requests {
		if len(requests) == 0 || !requests[len(requests)-1].After(cutoff) {
			delete(rl.requests, key)
		}
	}
}

// RateLimit rejects requests over the limiter's budget with RATE_LIMITED.
// Clients are keyed by ips, which may be nil to use the peer address only.
func RateLimit(limiter *RateLimiter, ips *ClientIP) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ip := ips.Resolve(r)
			if !limiter.Allow(ip) {
				slog.Warn("rate limit exceeded",
					"ip", ip,
					"path", r.URL.Path,
				)
				w.Header().Set("Retry-After", retryAfterSeconds(limiter.window))
				apperr.Write(w, r, apperr.RateLimited())
				return
			}
			next(w, r)
		}
	}
}

func retryAfterSeconds(d time.Duration) string {
	return strconv.Itoa(int(d.Seconds()))
}
