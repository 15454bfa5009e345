package routes

import (
	"github.com/gin-gonic/gin"

	"m33t/internal/handlers"
)

// SetupSolanaRoutes sets up transaction building and swap routes
func SetupSolanaRoutes(r *gin.Engine, h *handlers.Handler) {
	sol := r.Group("/solana")
	{
		sol.POST("/create-transaction", h.CreatePoolTransaction)
		sol.GET("/create-transaction", h.TransactionStatus)
		sol.GET("/swap/quote", h.SwapQuote)
		sol.POST("/swap/execute", h.SwapExecute)
	}
}
