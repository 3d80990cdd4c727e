package middleware

import (
	"net/http"
	"time"

	"github.com/flexprice/proratemate/internal/config"
	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	// idle limiters are dropped after limiterTTL
	limiterTTL             = 10 * time.Minute
	limiterCleanupInterval = 5 * time.Minute
)

// RateLimitMiddleware applies a token bucket per client IP and rejects requests
// over the configured rate with 429.
func RateLimitMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if !cfg.RateLimit.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	limiters := gocache.New(limiterTTL, limiterCleanupInterval)
	limit := rate.Limit(cfg.RateLimit.RequestsPerSecond)
	burst := cfg.RateLimit.Burst

	return func(c *gin.Context) {
		if !limiterFor(limiters, c.ClientIP(), limit, burst).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Success: false,
				Error: ErrorDetail{
					Display: "Too many requests, please retry shortly",
				},
			})
			return
		}
		c.Next()
	}
}

func limiterFor(limiters *gocache.Cache, key string, limit rate.Limit, burst int) *rate.Limiter {
	if v, ok := limiters.Get(key); ok {
		// refresh expiry on access
		limiters.SetDefault(key, v)
		return v.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(limit, burst)
	if err := limiters.Add(key, limiter, gocache.DefaultExpiration); err != nil {
		// another request registered this client first
		if v, ok := limiters.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}
