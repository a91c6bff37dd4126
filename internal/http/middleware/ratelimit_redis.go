package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window limiter backed by Redis INCR/EXPIRE.
// Without a Redis client it falls back to a per-process window.
type RateLimiter struct {
	client   *redis.Client
	fallback *memoryLimiter
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client, fallback: newMemoryLimiter()}
}

// Limit allows maxRequests per window per client IP. name separates the
// counters of different route groups.
// key format: rl:<name>:<window_seconds>:<ip>
func (l *RateLimiter) Limit(name string, maxRequests int, window time.Duration) gin.HandlerFunc {
	windowKey := strconv.FormatInt(int64(window.Seconds()), 10)

	return func(c *gin.Context) {
		key := "rl:" + name + ":" + windowKey + ":" + c.ClientIP()

		var (
			count int64
			err   error
		)
		if l.client != nil {
			count, err = l.incr(c.Request.Context(), key, window)
		} else {
			count = l.fallback.incr(key, window)
		}
		if err != nil {
			// on Redis error, fail-open (allow) but set header
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-count), 10))

		if count > int64(maxRequests) {
			RLBlocked.WithLabelValues(name).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues(name).Inc()
		c.Next()
	}
}

func (l *RateLimiter) incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()

	val, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if val == 1 {
		// first increment, set expiry
		l.client.Expire(ctx, key, window)
	}
	return val, nil
}
