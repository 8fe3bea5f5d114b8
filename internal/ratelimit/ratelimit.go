// Package ratelimit provides per-key token bucket limiting as HTTP middleware.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/linnemanlabs/go-core/httpmw"
)

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

// Limiter hands out one token bucket per key.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*client
	r       rate.Limit
	burst   int
	now     func() time.Time
}

// New creates a Limiter allowing rps sustained requests with the given burst per key.
func New(rps float64, burst int) *Limiter {
	return &Limiter{
		clients: make(map[string]*client),
		r:       rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// Allow reports whether key may proceed now.
func (l *Limiter) Allow(key string) bool {
	return l.get(key).AllowN(l.now(), 1)
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.clients[key]; ok {
		c.seen = l.now()
		return c.lim
	}
	lim := rate.NewLimiter(l.r, l.burst)
	l.clients[key] = &client{lim: lim, seen: l.now()}
	return lim
}

// Evict drops keys not seen within idle and returns how many were removed.
func (l *Limiter) Evict(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-idle)
	n := 0
	for k, c := range l.clients {
		if c.seen.Before(cutoff) {
			delete(l.clients, k)
			n++
		}
	}
	return n
}

// RunEvictor evicts keys idle for three intervals, every interval, until ctx is done.
func (l *Limiter) RunEvictor(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Evict(3 * interval)
		}
	}
}

// KeyFunc derives the bucket key from a request.
type KeyFunc func(r *http.Request) string

// RemoteIP keys on the host part of RemoteAddr.
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ClientIP keys on the address resolved by httpmw.ClientIPWithOptions, so
// clients behind a trusted proxy get their own buckets. Without that
// middleware upstream it falls back to RemoteIP.
func ClientIP(r *http.Request) string {
	if ip := httpmw.ClientIPFromContext(r.Context()); ip != "" {
		return ip
	}
	return RemoteIP(r)
}

// Middleware rejects requests over the limit with 429. A nil key uses ClientIP.
func (l *Limiter) Middleware(key KeyFunc) func(http.Handler) http.Handler {
	if key == nil {
		key = ClientIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(key(r)) {
				w.Header().Set("Retry-After", "1")
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Content-Type-Options", "nosniff")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"too many requests"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
