package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter limita requests por IP de cliente.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	idle    time.Duration
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter devuelve nil si rpm <= 0, lo que desactiva el limite.
func NewRateLimiter(rpm int) *RateLimiter {
	if rpm <= 0 {
		return nil
	}
	burst := rpm / 10
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:   rate.Limit(float64(rpm) / 60.0),
		burst:   burst,
		idle:    5 * time.Minute,
		clients: make(map[string]*clientLimiter),
	}
}

// Handler aplica el limite por IP. Los preflight OPTIONS no consumen cupo.
func (r *RateLimiter) Handler() gin.HandlerFunc {
	if r == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if !r.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests."})
			return
		}
		c.Next()
	}
}

func (r *RateLimiter) limiterFor(ip string) *rate.Limiter {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.clients[ip]; ok {
		entry.lastSeen = now
		return entry.limiter
	}
	for k, entry := range r.clients {
		if now.Sub(entry.lastSeen) > r.idle {
			delete(r.clients, k)
		}
	}
	l := rate.NewLimiter(r.limit, r.burst)
	r.clients[ip] = &clientLimiter{limiter: l, lastSeen: now}
	return l
}
