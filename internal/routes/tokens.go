package routes

import (
	"github.com/gin-gonic/gin"

	"m33t/internal/handlers"
)

// SetupTokenRoutes sets up token ledger query routes
func SetupTokenRoutes(r *gin.Engine, h *handlers.Handler) {
	tokens := r.Group("/tokens")
	{
		tokens.GET("", h.ListTokens)
		tokens.PATCH("", h.AttachSignature)
	}

	events := r.Group("/events")
	{
		events.GET("/:id/tokens", h.EventTokens)
	}

	user := r.Group("/user")
	{
		user.GET("/tokens", h.UserTokens)
	}
}
