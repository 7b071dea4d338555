package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/credforge/credgraph/internal/monitoring"
)

// setHeaders writes standard rate limit headers on every response
func setHeaders(c *gin.Context, res *Result) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
	if !res.Allowed {
		c.Header("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
	}
}

// IPMiddleware limits requests per client IP across all endpoints
func IPMiddleware(rl *RateLimiter, metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := rl.AllowIP(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Limiter failure should not take the API down
			c.Next()
			return
		}

		setHeaders(c, res)

		if !res.Allowed {
			metrics.IncrementRateLimitBlock()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": fmt.Sprintf("%.0fs", res.RetryAfter.Seconds()),
			})
			return
		}

		c.Next()
	}
}

// AnalyzeMiddleware applies the tighter per-IP budget for rank runs
func AnalyzeMiddleware(rl *RateLimiter, metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := rl.AllowAnalyze(c.Request.Context(), c.ClientIP())
		if err != nil {
			c.Next()
			return
		}

		setHeaders(c, res)

		if !res.Allowed {
			metrics.IncrementRateLimitBlock()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rank run rate limit exceeded",
				"retry_after": fmt.Sprintf("%.0fs", res.RetryAfter.Seconds()),
			})
			return
		}

		c.Next()
	}
}
