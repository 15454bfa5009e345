package handlers

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"m33t/internal/models"
	mcsolana "m33t/pkg/solana"
)

// UserTokenBalance is one event token with the user's current holding.
type UserTokenBalance struct {
	MintAddress  string  `json:"mintAddress"`
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	URI          string  `json:"uri"`
	EventID      string  `json:"eventId"`
	PoolAddress  string  `json:"poolAddress"`
	TokenAccount string  `json:"tokenAccount"`
	Amount       uint64  `json:"amount"`
	UIAmount     float64 `json:"uiAmount"`
}

// UserTokens reports the user's balance in every event token on the ledger.
// Mints that are not live on-chain are skipped; a missing token account or a
// failed balance read degrades to a zero balance rather than failing the
// whole response.
func (h *Handler) UserTokens(c *gin.Context) {
	userAddress := c.Query("userAddress")
	owner, err := solana.PublicKeyFromBase58(userAddress)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Solana wallet address"})
		return
	}

	var records []models.TokenCreation
	if err := h.DB.Order("created_at DESC").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query tokens"})
		return
	}

	ctx := c.Request.Context()
	results := make([]*UserTokenBalance, len(records))

	var wg sync.WaitGroup
	sem := make(chan struct{}, rpcConcurrency)
	for i := range records {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			record := records[i]
			mint, err := solana.PublicKeyFromBase58(record.MintAddress)
			if err != nil {
				log.Warnf("ledger row %d has malformed mint %q", record.ID, record.MintAddress)
				return
			}

			exists, err := mcsolana.MintExists(ctx, h.RPC, mint)
			if err != nil || !exists {
				return
			}

			entry := &UserTokenBalance{
				MintAddress: record.MintAddress,
				Name:        record.Name,
				Symbol:      record.Symbol,
				URI:         record.URI,
				EventID:     record.EventID,
				PoolAddress: record.PoolAddress,
			}

			balance, err := mcsolana.GetAssociatedTokenBalance(ctx, h.RPC, owner, mint)
			if err != nil {
				log.Warnf("failed to read balance for mint %s: %v", record.MintAddress, err)
			} else {
				entry.TokenAccount = balance.Account.String()
				entry.Amount = balance.Amount
				entry.UIAmount = balance.UIAmount
			}
			results[i] = entry
		}(i)
	}
	wg.Wait()

	tokens := make([]*UserTokenBalance, 0, len(results))
	var totalAmount uint64
	held := 0
	for _, entry := range results {
		if entry == nil {
			continue
		}
		tokens = append(tokens, entry)
		totalAmount += entry.Amount
		if entry.Amount > 0 {
			held++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tokens":  tokens,
		"summary": gin.H{
			"totalTokens":  len(tokens),
			"tokensHeld":   held,
			"totalBalance": fmt.Sprintf("%.6f", float64(totalAmount)/1e6),
		},
	})
}
