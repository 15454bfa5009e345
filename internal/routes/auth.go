package routes

import (
	"github.com/gin-gonic/gin"

	"m33t/internal/handlers"
)

// SetupAuthRoutes sets up wallet sign-in, session verification, sign-out
// and wallet bridge routes
func SetupAuthRoutes(r *gin.Engine, h *handlers.Handler) {
	signin := r.Group("/wallet-signin")
	{
		signin.POST("", h.WalletSignIn)
		signin.GET("", h.VerifySession)
		signin.DELETE("", h.WalletSignOut)
	}
	r.POST("/wallet-bridge", h.WalletBridgeUpdate)
}
