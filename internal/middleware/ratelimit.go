package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/GauthierNelkinsky/shipshipship-template-default/pkg/logger"
)

// IPRateLimiter manages rate limiters for each IP. This is the blunt
// network-level guard in front of the write endpoints; the feedback
// guard's per-visitor admission checks are layered on top of it.
type IPRateLimiter struct {
	ips   map[string]*rateLimiterEntry
	mu    sync.Mutex
	r     rate.Limit
	burst int
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter creates a new IP-based rate limiter
// r = requests per second, burst = max burst size
func NewIPRateLimiter(r rate.Limit, burst int) *IPRateLimiter {
	rl := &IPRateLimiter{
		ips:   make(map[string]*rateLimiterEntry),
		r:     r,
		burst: burst,
	}

	// Cleanup old entries every minute
	go rl.cleanup()

	return rl
}

func (rl *IPRateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, entry := range rl.ips {
			if time.Since(entry.lastSeen) > 3*time.Minute {
				delete(rl.ips, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// GetLimiter returns the rate limiter for the given IP
func (rl *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.ips[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.r, rl.burst)
		rl.ips[ip] = &rateLimiterEntry{
			limiter:  limiter,
			lastSeen: time.Now(),
		}
		return limiter
	}

	entry.lastSeen = time.Now()
	return entry.limiter
}

// Pre-configured limiters per endpoint class
var (
	// Feed reads: 120 per minute
	ReadLimiter = NewIPRateLimiter(rate.Limit(2.0), 20)

	// Vote toggles: 30 per minute
	VoteLimiter = NewIPRateLimiter(rate.Limit(30.0/60.0), 10)

	// Feedback + newsletter writes: 10 per minute
	WriteLimiter = NewIPRateLimiter(rate.Limit(10.0/60.0), 5)
)

// RateLimitMiddleware creates a rate limiting middleware with a custom limiter
func RateLimitMiddleware(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		l := limiter.GetLimiter(ip)

		if !l.Allow() {
			logger.Warn().
				Str("ip", ip).
				Str("path", c.Request.URL.Path).
				Msg("Rate limit exceeded")

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Too many requests",
				"message": "Rate limit exceeded. Please slow down.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// ReadRateLimit guards the feed endpoints
func ReadRateLimit() gin.HandlerFunc {
	return RateLimitMiddleware(ReadLimiter)
}

// VoteRateLimit guards the vote toggle endpoint
func VoteRateLimit() gin.HandlerFunc {
	return RateLimitMiddleware(VoteLimiter)
}

// WriteRateLimit guards feedback and newsletter writes
func WriteRateLimit() gin.HandlerFunc {
	return RateLimitMiddleware(WriteLimiter)
}
