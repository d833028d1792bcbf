package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	limiterExpiration = 10 * time.Minute
	limiterCleanup    = 20 * time.Minute
)

// RateLimiter hands out one token bucket per client IP. Idle buckets expire.
type RateLimiter struct {
	limiters *cache.Cache
	limit    rate.Limit
	burst    int
	log      *zap.SugaredLogger
}

func NewRateLimiter(rps float64, burst int, log *zap.SugaredLogger) *RateLimiter {
	return &RateLimiter{
		limiters: cache.New(limiterExpiration, limiterCleanup),
		limit:    rate.Limit(rps),
		burst:    burst,
		log:      log,
	}
}

func (l *RateLimiter) limiterFor(key string) *rate.Limiter {
	if v, ok := l.limiters.Get(key); ok {
		return v.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(l.limit, l.burst)
	if err := l.limiters.Add(key, limiter, cache.DefaultExpiration); err != nil {
		// Lost the race, use the winner's bucket.
		if v, ok := l.limiters.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := l.limiterFor(ip)
		// Touch the entry so active clients keep their bucket.
		l.limiters.Set(ip, limiter, cache.DefaultExpiration)

		if !limiter.Allow() {
			l.log.Warnw("rate limit exceeded", "path", c.Request.URL.Path, "ip", ip)
			respondError(c, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
			return
		}
		c.Next()
	}
}
