// Package ratelimit provides a per-client fixed-window rate limiter for the
// expensive model-backed endpoints.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

type Limiter struct {
	mu      sync.Mutex
	clients map[string]*window

	requestsPerMinute int
	lastSweep         time.Time
}

type window struct {
	start    time.Time
	requests int
}

const (
	defaultRequestsPerMinute = 10
	staleAfter               = 10 * time.Minute
	sweepEvery               = 5 * time.Minute
)

func NewLimiter(requestsPerMinute int) *Limiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = defaultRequestsPerMinute
	}
	return &Limiter{
		clients:           make(map[string]*window),
		requestsPerMinute: requestsPerMinute,
		lastSweep:         time.Now(),
	}
}

// Allow reports whether a request from clientIP fits in the current window.
func (l *Limiter) Allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.sweep(now)

	w, ok := l.clients[clientIP]
	if !ok || now.Sub(w.start) > time.Minute {
		l.clients[clientIP] = &window{start: now, requests: 1}
		return true
	}
	w.requests++
	return w.requests <= l.requestsPerMinute
}

func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// sweep drops clients that have been idle long enough to be irrelevant.
// Called with the lock held.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < sweepEvery {
		return
	}
	l.lastSweep = now
	for ip, w := range l.clients {
		if now.Sub(w.start) > staleAfter {
			delete(l.clients, ip)
		}
	}
}

// Middleware rejects over-limit requests with 429 and a Retry-After hint.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(ClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP extracts the originating client address, preferring the first
// X-Forwarded-For hop when present.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
