package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"kindled-backend/internal/shared/utils"
)

// ClientIPKey holds the resolved client address in the gin context
const ClientIPKey = "client_ip"

// ClientIPMiddleware extracts the client IP address from the request
// and injects it into the context for downstream handlers to use.
// Register it before RateLimit and Logger.
func ClientIPMiddleware(trustProxyHeaders bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := utils.ExtractClientIP(c, trustProxyHeaders)

		c.Set(ClientIPKey, clientIP)

		log.Debug().
			Str("ip", clientIP).
			Bool("is_private", utils.IsPrivateIP(clientIP)).
			Str("path", c.Request.URL.Path).
			Msg("Client IP extracted")

		c.Next()
	}
}

