package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterIdleTTL         = time.Hour
)

// ipLimiters holds one token bucket per client IP.
type ipLimiters struct {
	entries sync.Map // client IP -> *ipLimiter
	rps     float64
	burst   int
}

type ipLimiter struct {
	limiter    *rate.Limiter
	mu         sync.Mutex
	lastAccess time.Time
}

// RateLimitMiddleware enforces per-IP rate limiting using a token bucket from
// golang.org/x/time/rate. The client IP comes from c.ClientIP(), which honours
// X-Forwarded-For and X-Real-IP.
//
// Rejected requests get 429 Too Many Requests with a Retry-After header.
func RateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := &ipLimiters{rps: rps, burst: burst}

	go store.cleanupStale(context.Background(), limiterCleanupInterval, limiterIdleTTL)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		limiter := store.get(clientIP)

		if limiter.Allow() {
			c.Next()
			return
		}

		reservation := limiter.Reserve()
		retryAfter := int(reservation.Delay().Seconds())
		reservation.Cancel()
		if retryAfter < 1 {
			retryAfter = 1
		}

		logger.Debug("rate limit exceeded",
			slog.String("client_ip", clientIP),
			slog.Int("retry_after", retryAfter))

		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":   "rate_limit_exceeded",
			"message": "Too many requests. Please retry after the specified delay.",
		})
	}
}

// get returns the limiter for ip, creating it on first use.
func (s *ipLimiters) get(ip string) *rate.Limiter {
	now := time.Now()

	val, loaded := s.entries.LoadOrStore(ip, &ipLimiter{
		limiter:    rate.NewLimiter(rate.Limit(s.rps), s.burst),
		lastAccess: now,
	})
	entry := val.(*ipLimiter)

	if loaded {
		entry.mu.Lock()
		entry.lastAccess = now
		entry.mu.Unlock()
	}

	return entry.limiter
}

// cleanupStale drops limiters idle for longer than ttl.
func (s *ipLimiters) cleanupStale(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictIdle(time.Now().Add(-ttl))
		}
	}
}

func (s *ipLimiters) evictIdle(threshold time.Time) {
	s.entries.Range(func(key, value any) bool {
		entry := value.(*ipLimiter)
		entry.mu.Lock()
		idle := entry.lastAccess.Before(threshold)
		entry.mu.Unlock()

		if idle {
			s.entries.Delete(key)
		}
		return true
	})
}
