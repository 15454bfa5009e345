package routes

import (
	"github.com/gin-gonic/gin"

	"m33t/internal/handlers"
)

// SetupCircleRoutes sets up Circle custodial wallet routes
func SetupCircleRoutes(r *gin.Engine, h *handlers.Handler) {
	circle := r.Group("/circle")
	{
		circle.POST("/create-wallet", h.CreateCircleWallet)
	}
}
