package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// CreateCircleWalletRequest names the wallet set to provision. All fields
// are optional and defaulted.
type CreateCircleWalletRequest struct {
	WalletSetName string   `json:"walletSetName"`
	Blockchains   []string `json:"blockchains"`
	Count         int      `json:"count"`
}

// CreateCircleWallet provisions a Circle wallet set with developer-controlled
// wallets for custodial event payments.
func (h *Handler) CreateCircleWallet(c *gin.Context) {
	if !h.Circle.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Circle API is not configured"})
		return
	}

	var req CreateCircleWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.WalletSetName == "" {
		req.WalletSetName = "Event Wallet Set"
	}
	if len(req.Blockchains) == 0 {
		req.Blockchains = []string{"MATIC-AMOY"}
	}
	if req.Count <= 0 {
		req.Count = 1
	}

	walletSet, err := h.Circle.CreateWalletSet(c.Request.Context(), req.WalletSetName)
	if err != nil {
		log.Errorf("failed to create wallet set: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	wallets, err := h.Circle.CreateWallets(c.Request.Context(), walletSet.ID, req.Blockchains, req.Count)
	if err != nil {
		log.Errorf("failed to create wallets: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"walletSet": walletSet,
		"wallets":   wallets,
	})
}
