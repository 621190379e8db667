// Package api implements the HTTP API for the allocator and aggregator
// services.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SVatsa12/teamforge/internal/config"
	"github.com/SVatsa12/teamforge/internal/logger"
)

const readHeaderTimeout = 10 * time.Second

// SetupRouter creates and configures the gin router with all routes.
func SetupRouter(
	log logger.Logger,
	alloc AllocatorService,
	agg AggregatorService,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware(cfg.Server.CORSOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := NewHandler(alloc, agg, cfg, log)

	v1 := router.Group("/api/v1")
	v1.GET("/events", h.ListEvents)
	v1.GET("/sources", h.ListSources)
	v1.POST("/allocate", h.Allocate)
	v1.GET("/assignments", h.ListAssignments)
	v1.DELETE("/assignments/:id", h.Unassign)
	v1.GET("/debug/fetch", h.DebugFetch)

	return router
}

// NewServer builds the http.Server around the configured router.
func NewServer(router *gin.Engine, cfg *config.Config) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// loggingMiddleware logs each HTTP request with latency and status.
func loggingMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		log.Info("HTTP Request",
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.String("query", query),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("latency", time.Since(start)),
		)
	}
}

// corsMiddleware adds CORS headers for the configured origins.
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if _, ok := allowed[origin]; ok {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers",
				"Content-Type, Content-Length, Accept-Encoding, Authorization, Cache-Control, X-Requested-With")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
