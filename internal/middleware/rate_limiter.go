package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type visitor struct {
	tokens float64
	seen   time.Time
}

// RateLimiter gives each client a bucket of capacity tokens that refills
// continuously, a full bucket per window
type RateLimiter struct {
	mu       sync.Mutex
	capacity float64
	window   time.Duration
	visitors map[string]*visitor
	now      func() time.Time
}

// NewRateLimiter creates a limiter; capacity and window must be positive
func NewRateLimiter(capacity int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		capacity: float64(capacity),
		window:   window,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// Allow spends a token for client. When none is left it reports how long
// until the next one.
func (l *RateLimiter) Allow(client string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[client]
	if !ok {
		v = &visitor{tokens: l.capacity, seen: now}
		l.visitors[client] = v
	} else {
		v.tokens = l.refilled(v, now)
		v.seen = now
	}

	if v.tokens >= 1 {
		v.tokens--
		return true, 0
	}
	wait := time.Duration((1 - v.tokens) * float64(l.window) / l.capacity)
	return false, wait
}

func (l *RateLimiter) refilled(v *visitor, now time.Time) float64 {
	earned := float64(now.Sub(v.seen)) / float64(l.window) * l.capacity
	return math.Min(l.capacity, v.tokens+earned)
}

// Prune forgets clients whose bucket has refilled completely, returning how
// many were dropped
func (l *RateLimiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for client, v := range l.visitors {
		if l.refilled(v, now) >= l.capacity {
			delete(l.visitors, client)
			removed++
		}
	}
	return removed
}

// RateLimit answers 429 with a Retry-After header once a client IP runs out of tokens
func RateLimit(limiter *RateLimiter, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if ok, wait := limiter.Allow(ip); !ok {
				w.Header().Set("Retry-After", retryAfter(wait))
				writeError(w, log, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// retryAfter rounds wait up to whole seconds, at least one
func retryAfter(wait time.Duration) string {
	secs := int(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
