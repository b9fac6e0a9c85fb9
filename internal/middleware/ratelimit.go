package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dhruvmojila/memory-api/internal/platform/logger"
)

// RateLimitMiddleware caps requests per caller per window using a redis
// counter. Ingestion and RAG requests fan out into LLM calls, so the edge
// has to shed load before the provider does.
type RateLimitMiddleware struct {
	log      *logger.Logger
	rdb      *goredis.Client
	limit    int
	window   time.Duration
	disabled bool
}

func NewRateLimitMiddleware(log *logger.Logger, rdb *goredis.Client, limit int, window time.Duration) *RateLimitMiddleware {
	mw := &RateLimitMiddleware{
		log:    log.With("middleware", "RateLimitMiddleware"),
		rdb:    rdb,
		limit:  limit,
		window: window,
	}
	if rdb == nil || limit <= 0 {
		mw.disabled = true
		mw.log.Info("rate limiting disabled")
	}
	return mw
}

func (rl *RateLimitMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.disabled {
			c.Next()
			return
		}

		caller := c.GetString(ContextUserIDKey)
		if caller == "" {
			caller = c.ClientIP()
		}
		key := fmt.Sprintf("ratelimit:%s:%d", caller, time.Now().Unix()/int64(rl.window.Seconds()))

		count, err := rl.rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// Redis being down must not take the API with it.
			rl.log.Warn("rate limit check failed, allowing request", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			rl.rdb.Expire(c.Request.Context(), key, rl.window)
		}
		if count > int64(rl.limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded, retry later"})
			return
		}
		c.Next()
	}
}
