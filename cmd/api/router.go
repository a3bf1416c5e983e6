package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kindled-backend/internal/domains/entry/handler"
	"kindled-backend/internal/shared/middleware"
	"kindled-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.ClientIPMiddleware(c.Config.App.TrustProxyHeaders),
		middleware.Logger(),
		middleware.CORS(c.Config.App.CORSOrigins),
	)

	router.GET("/", livenessHandler(c))
	router.GET("/health", healthCheckHandler(c))

	setupEntryRoutes(router.Group("/notes"), c, c.NoteHandler)
	setupEntryRoutes(router.Group("/prayer-requests"), c, c.PrayerRequestHandler)

	return router
}

// ========================================
// ENTRY ROUTES
// ========================================
func setupEntryRoutes(group *gin.RouterGroup, c *container.Container, h *handler.EntryHandler) {
	limits := c.Config.RateLimit

	read := middleware.RateLimit(c.Limiter, middleware.RateClassRead, c.RateLimitRule(limits.Read))
	create := middleware.RateLimit(c.Limiter, middleware.RateClassCreate, c.RateLimitRule(limits.Create))
	write := middleware.RateLimit(c.Limiter, middleware.RateClassWrite, c.RateLimitRule(limits.Write))
	remove := middleware.RateLimit(c.Limiter, middleware.RateClassDelete, c.RateLimitRule(limits.Delete))

	group.GET("/", read, h.List)
	group.GET("/:unique_name", read, h.Get)
	group.POST("/", create, h.Create)
	group.PATCH("/:unique_name", write, h.Edit)
	group.DELETE("/:unique_name", remove, h.Delete)
}

// ========================================
// LIVENESS / HEALTH
// ========================================
func livenessHandler(appCtx *container.Container) gin.HandlerFunc {
	message := appCtx.Config.App.Name + " is running!"
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": message})
	}
}

// healthCheckHandler answers 503 when the store is down. A Redis outage
// only degrades the status since rate limiting falls back in-process.
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		services := appCtx.Health(ctx)

		status := "ok"
		for _, state := range services {
			if state == "down" {
				status = "degraded"
			}
		}

		statusCode := http.StatusOK
		if services["store"] != "up" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"services":  services,
		})
	}
}
