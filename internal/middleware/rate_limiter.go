package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/dental-api/internal/config"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

const limiterIdle = 10 * time.Minute

// RateLimiter keeps one token bucket per client IP. Buckets of clients that
// go quiet are evicted.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	clients *cache.Cache
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.Burst,
		clients: cache.New(limiterIdle, limiterIdle),
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	if l, found := rl.clients.Get(key); found {
		rl.clients.Set(key, l, cache.DefaultExpiration)
		return l.(*rate.Limiter)
	}
	l := rate.NewLimiter(rl.limit, rl.burst)
	if err := rl.clients.Add(key, l, cache.DefaultExpiration); err != nil {
		// lost a race with another request from the same client
		if existing, found := rl.clients.Get(key); found {
			return existing.(*rate.Limiter)
		}
	}
	return l
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiter(c.ClientIP()).Allow() {
			httputil.RespondWithError(c, apperrors.TooManyRequests())
			c.Abort()
			return
		}
		c.Next()
	}
}
