package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ukydev/fleet-admin/internal/models"
)

// RateLimitMiddleware limits requests per client IP over a sliding window.
// The client is identified by RemoteAddr only; put chi's RealIP in front
// when running behind a trusted proxy.
type RateLimitMiddleware struct {
	clock     clock.Clock
	requests  map[string][]time.Time
	lastSweep time.Time
	mu        sync.Mutex
}

// NewRateLimitMiddleware creates a rate limiter. A nil clock uses the wall
// clock.
func NewRateLimitMiddleware(clk clock.Clock) *RateLimitMiddleware {
	if clk == nil {
		clk = clock.New()
	}
	return &RateLimitMiddleware{
		clock:    clk,
		requests: make(map[string][]time.Time),
	}
}

// RateLimit admits at most maxRequests per client within window.
func (m *RateLimitMiddleware) RateLimit(maxRequests int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.allow(getClientIP(r), maxRequests, window) {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				WriteResponse(w, http.StatusTooManyRequests, models.Response{
					Status:   models.ResponseFailure,
					Response: []string{"rate limit exceeded"},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *RateLimitMiddleware) allow(client string, maxRequests int, window time.Duration) bool {
	now := m.clock.Now()
	windowStart := now.Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) >= window {
		m.sweep(windowStart)
		m.lastSweep = now
	}

	kept := m.requests[client][:0]
	for _, ts := range m.requests[client] {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= maxRequests {
		m.requests[client] = kept
		return false
	}
	m.requests[client] = append(kept, now)
	return true
}

// sweep drops clients with no request inside the window.
func (m *RateLimitMiddleware) sweep(windowStart time.Time) {
	for client, stamps := range m.requests {
		if len(stamps) == 0 || !stamps[len(stamps)-1].After(windowStart) {
			delete(m.requests, client)
		}
	}
}

// getClientIP returns the host part of RemoteAddr. Forwarding headers are
// client controlled and are not consulted here.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
