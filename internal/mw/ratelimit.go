package mw

import (
	"math"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ClientRateLimiter stores a rate limiter per client key. Keys are the
// caller's user id when known, otherwise the network origin.
type ClientRateLimiter struct {
	clients map[string]*rate.Limiter
	mu      *sync.RWMutex
	r       rate.Limit
	b       int
}

// NewClientRateLimiter creates a new ClientRateLimiter.
func NewClientRateLimiter(r rate.Limit, b int) *ClientRateLimiter {
	return &ClientRateLimiter{
		clients: make(map[string]*rate.Limiter),
		mu:      &sync.RWMutex{},
		r:       r,
		b:       b,
	}
}

func (l *ClientRateLimiter) add(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter := rate.NewLimiter(l.r, l.b)
	l.clients[key] = limiter
	return limiter
}

// GetLimiter returns the rate limiter for a client key.
func (l *ClientRateLimiter) GetLimiter(key string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.clients[key]
	l.mu.RUnlock()

	if !exists {
		return l.add(key)
	}
	return limiter
}

// RateLimit is a middleware enforcing a per-client request rate. The
// rejection is structured (limit and retry hint) so callers can back off.
// If no limiter can be resolved for the request the middleware fails open:
// admission correctness must never depend on the limiter.
func RateLimit(r rate.Limit, b int) gin.HandlerFunc {
	limiters := NewClientRateLimiter(r, b)
	return func(c *gin.Context) {
		key := c.GetHeader("X-User-ID")
		if key == "" {
			key = c.ClientIP()
		}

		limiter := limiters.GetLimiter(key)
		if limiter == nil {
			c.Next()
			return
		}

		reservation := limiter.Reserve()
		if !reservation.OK() {
			c.Next()
			return
		}
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":               "rate limit exceeded",
				"limit_per_sec":       float64(r),
				"retry_after_seconds": int(math.Ceil(delay.Seconds())),
			})
			return
		}
		c.Next()
	}
}
