package handlers

import (
	"errors"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"m33t/internal/models"
)

// ListTokens returns ledger rows filtered by creator or mint address.
func (h *Handler) ListTokens(c *gin.Context) {
	creator := c.Query("creator")
	mint := c.Query("mint")
	if creator == "" && mint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "creator or mint query parameter is required"})
		return
	}

	if mint != "" {
		if _, err := solana.PublicKeyFromBase58(mint); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mint address"})
			return
		}

		var record models.TokenCreation
		err := h.DB.Where("mint_address = ?", mint).First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Token not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query tokens"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "token": record})
		return
	}

	if _, err := solana.PublicKeyFromBase58(creator); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid creator address"})
		return
	}

	var records []models.TokenCreation
	if err := h.DB.Where("creator_address = ?", creator).
		Order("created_at DESC").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query tokens"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tokens":  records,
		"count":   len(records),
	})
}

// AttachSignatureRequest attaches a submitted transaction signature to a
// ledger row by mint address.
type AttachSignatureRequest struct {
	MintAddress          string `json:"mintAddress" binding:"required"`
	TransactionSignature string `json:"transactionSignature" binding:"required"`
}

// AttachSignature records the signature of the submitted pool-creation
// transaction on its ledger row.
func (h *Handler) AttachSignature(c *gin.Context) {
	var req AttachSignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := solana.SignatureFromBase58(req.TransactionSignature); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction signature"})
		return
	}

	var record models.TokenCreation
	err := h.DB.Where("mint_address = ?", req.MintAddress).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Token not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query token"})
		return
	}

	record.TransactionSignature = req.TransactionSignature
	if err := h.DB.Save(&record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update token"})
		return
	}

	if h.Publisher != nil {
		event := TokenCreatedEvent{
			RecordID:       record.ID,
			MintAddress:    record.MintAddress,
			CreatorAddress: record.CreatorAddress,
			EventID:        record.EventID,
			Signature:      record.TransactionSignature,
		}
		if err := h.Publisher.Publish(TokenCreatedQueue, event); err != nil {
			log.Warnf("failed to publish signature event: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": record})
}
