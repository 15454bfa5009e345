package handlers

import (
	"net/http"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"m33t/internal/models"
	mcsolana "m33t/pkg/solana"
)

// rpcConcurrency bounds parallel RPC reads per request.
const rpcConcurrency = 8

// EventTokens lists the tokens minted for an event. Ledger rows whose mint
// never landed on-chain are filtered out, since a row is written before the
// creator's wallet submits the transaction.
func (h *Handler) EventTokens(c *gin.Context) {
	eventID := c.Param("id")
	if eventID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event id is required"})
		return
	}

	var records []models.TokenCreation
	if err := h.DB.Where("event_id = ?", eventID).
		Order("created_at DESC").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query tokens"})
		return
	}

	ctx := c.Request.Context()
	live := make([]bool, len(records))

	var wg sync.WaitGroup
	sem := make(chan struct{}, rpcConcurrency)
	for i := range records {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			mint, err := solana.PublicKeyFromBase58(records[i].MintAddress)
			if err != nil {
				log.Warnf("ledger row %d has malformed mint %q", records[i].ID, records[i].MintAddress)
				return
			}
			exists, err := mcsolana.MintExists(ctx, h.RPC, mint)
			if err != nil {
				log.Warnf("failed to check mint %s: %v", records[i].MintAddress, err)
				return
			}
			live[i] = exists
		}(i)
	}
	wg.Wait()

	tokens := make([]models.TokenCreation, 0, len(records))
	for i, record := range records {
		if live[i] {
			tokens = append(tokens, record)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"eventId": eventID,
		"tokens":  tokens,
		"count":   len(tokens),
	})
}
