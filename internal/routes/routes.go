package routes

import (
	"github.com/gin-gonic/gin"

	"m33t/internal/handlers"
	"m33t/internal/middleware"
)

// SetupRouter initializes the Gin router with all routes configured. The
// allowed CORS origins come from configuration, not the process environment.
func SetupRouter(h *handlers.Handler) *gin.Engine {
	r := gin.Default()

	r.Any("/health", func(c *gin.Context) {
		c.String(200, "ok")
	})

	r.Use(corsMiddleware(h.Cfg.AllowedOrigins))
	r.Use(middleware.RateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: 10,
		Burst:             20,
	}))

	SetupAuthRoutes(r, h)
	SetupCircleRoutes(r, h)
	SetupSolanaRoutes(r, h)
	SetupTokenRoutes(r, h)

	return r
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		for _, allowed := range allowedOrigins {
			if origin == allowed {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
