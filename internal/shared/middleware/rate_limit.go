package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"kindled-backend/internal/infrastructure/ratelimit"
	"kindled-backend/internal/shared/response"
)

// Route classes with separate budgets
const (
	RateClassRead   = "read"
	RateClassWrite  = "write"
	RateClassCreate = "create"
	RateClassDelete = "delete"
)

// RateLimitMessage is the fixed 429 payload
const RateLimitMessage = "too many requests, slow down"

// RateLimit enforces rule per client IP within class. A non-positive
// limit disables the check. Limiter errors let the request through.
func RateLimit(limiter ratelimit.Limiter, class string, rule ratelimit.Rule) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rule.Limit <= 0 || rule.Window <= 0 {
			c.Next()
			return
		}

		clientIP := c.GetString(ClientIPKey)
		if clientIP == "" {
			clientIP = c.ClientIP()
		}

		res, err := limiter.Allow(c.Request.Context(), class+":"+clientIP, rule)
		if err != nil {
			log.Error().Err(err).Str("class", class).Msg("rate limiter unavailable")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rule.Limit))
		if !res.Allowed {
			retryAfter := int(math.Ceil(res.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.Header("X-RateLimit-Remaining", "0")
			response.Abort(c, http.StatusTooManyRequests, "", RateLimitMessage)
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Next()
	}
}
