// In file: cmd/gateway/middleware.go
package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const headerRequestID = "X-Request-ID"

// requestLogger gives every request an id and a request-scoped zerolog logger,
// and writes one access line when the request completes. Headers and bodies are
// never logged, so tokens stay out of the logs.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(headerRequestID)
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.NewString()
		}
		c.Header(headerRequestID, reqID)

		logger := log.With().Str("request_id", reqID).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

		start := time.Now()
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request completed")
	}
}

func corsMiddleware(cfg CORSConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		ExposeHeaders:    cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
}

// newRouter wires middleware and routes onto a fresh engine.
func newRouter(h *GatewayHandler, file FileConfig) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(), corsMiddleware(file.CORS))

	engine.GET("/health", h.HandleHealth)

	ai := engine.Group("/ai")
	{
		ai.POST("/concierge", h.HandleAgent(roleConcierge))
		ai.POST("/admin", h.HandleAgent(roleAdmin))
		ai.POST("/reports", h.HandleAgent(roleReporting))
	}
	engine.POST("/mcp", h.HandleTool)
	engine.GET("/mcp/tools", h.HandleListTools)

	auth := engine.Group("/auth")
	{
		auth.POST("/login", h.HandleLogin)
		auth.POST("/register", h.HandleRegister)
	}
	return engine
}
