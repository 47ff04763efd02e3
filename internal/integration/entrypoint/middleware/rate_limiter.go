// Package middleware provides HTTP middleware for the API endpoints.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/expense-tracker/backend/internal/integration/entrypoint/dto"
)

// WindowCounter counts hits per key in fixed windows.
type WindowCounter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// KeyFunc derives the rate limit key for a request. An empty key skips the limit.
type KeyFunc func(c *gin.Context) string

// KeyByIP keys requests by client IP.
func KeyByIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return c.Request.RemoteAddr
}

// KeyByUser keys requests by the authenticated user, falling back to the client IP.
func KeyByUser(c *gin.Context) string {
	if userID, ok := GetUserIDFromContext(c); ok {
		return userID.String()
	}
	return KeyByIP(c)
}

// RateLimiter enforces a fixed-window request limit per key.
type RateLimiter struct {
	counter WindowCounter
	prefix  string
	limit   int64
	window  time.Duration
	keyFunc KeyFunc
	code    string
}

// NewRateLimiter creates a rate limiter that allows limit requests per window.
// Rejected requests get a 429 carrying code.
func NewRateLimiter(counter WindowCounter, prefix string, limit int, window time.Duration, keyFunc KeyFunc, code string) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	if keyFunc == nil {
		keyFunc = KeyByIP
	}
	return &RateLimiter{
		counter: counter,
		prefix:  prefix,
		limit:   int64(limit),
		window:  window,
		keyFunc: keyFunc,
		code:    code,
	}
}

// Middleware returns a Gin middleware handler that enforces rate limiting.
// Counter failures let the request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rl.keyFunc(c)
		if key == "" {
			c.Next()
			return
		}

		count, err := rl.counter.Incr(c.Request.Context(), "ratelimit:"+rl.prefix+":"+key, rl.window)
		if err != nil {
			slog.Warn("Rate limit counter unavailable", "limiter", rl.prefix, "error", err)
			c.Next()
			return
		}

		if count > rl.limit {
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error: "Too many requests. Please try again later.",
				Code:  rl.code,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
