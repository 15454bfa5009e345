package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	mcsolana "m33t/pkg/solana"
	"m33t/pkg/solana/cpamm"
)

const defaultSlippageBps = 100

// fetchPool loads on-chain pool state and writes the error response itself.
// Only a genuinely missing pool account is a 404; transient RPC failures
// surface as 500 so clients do not treat them as a dead pool.
func (h *Handler) fetchPool(c *gin.Context, ctx context.Context, pool solana.PublicKey) (*cpamm.PoolState, error) {
	state, err := h.AMM.FetchPoolState(ctx, pool)
	if err != nil {
		if errors.Is(err, cpamm.ErrPoolNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pool not found"})
			return nil, err
		}
		log.Errorf("failed to fetch pool state: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pool state"})
		return nil, err
	}
	return state, nil
}

// SwapQuote estimates the output of swapping amountIn of tokenIn against
// a pool. Pool state is fetched fresh on every request.
func (h *Handler) SwapQuote(c *gin.Context) {
	poolAddr, err := solana.PublicKeyFromBase58(c.Query("poolAddress"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pool address"})
		return
	}
	tokenIn, err := solana.PublicKeyFromBase58(c.Query("tokenIn"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input token address"})
		return
	}
	tokenOut, err := solana.PublicKeyFromBase58(c.Query("tokenOut"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid output token address"})
		return
	}
	amountIn, err := strconv.ParseUint(c.Query("amountIn"), 10, 64)
	if err != nil || amountIn == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amountIn must be a positive integer"})
		return
	}

	ctx := c.Request.Context()
	state, err := h.fetchPool(c, ctx, poolAddr)
	if err != nil {
		return
	}

	quote, err := h.AMM.GetQuote(ctx, state, tokenIn, amountIn)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if tokenOut != quote.OutputMint {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tokenOut is not the pool's other token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"quote":   quote,
	})
}

// SwapExecuteRequest describes the swap to build a transaction for. The
// minimum output can be given directly or derived from a slippage
// tolerance applied to a fresh quote.
type SwapExecuteRequest struct {
	UserPublicKey string  `json:"userPublicKey" binding:"required"`
	PoolAddress   string  `json:"poolAddress" binding:"required"`
	TokenIn       string  `json:"tokenIn" binding:"required"`
	AmountIn      uint64  `json:"amountIn" binding:"required"`
	MinAmountOut  *uint64 `json:"minAmountOut"`
	SlippageBps   *uint64 `json:"slippageBps"`
}

// SwapExecute builds an unsigned swap transaction for the user's wallet to
// sign and submit. The pool state is re-fetched so vaults and the quoted
// minimum output reflect current reserves.
func (h *Handler) SwapExecute(c *gin.Context) {
	var req SwapExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payer, err := solana.PublicKeyFromBase58(req.UserPublicKey)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Solana wallet address"})
		return
	}
	poolAddr, err := solana.PublicKeyFromBase58(req.PoolAddress)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pool address"})
		return
	}
	tokenIn, err := solana.PublicKeyFromBase58(req.TokenIn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input token address"})
		return
	}

	slippageBps := uint64(defaultSlippageBps)
	if req.SlippageBps != nil {
		if *req.SlippageBps > 10_000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slippageBps must be at most 10000"})
			return
		}
		slippageBps = *req.SlippageBps
	}

	ctx := c.Request.Context()
	state, err := h.fetchPool(c, ctx, poolAddr)
	if err != nil {
		return
	}

	quote, err := h.AMM.GetQuote(ctx, state, tokenIn, req.AmountIn)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	minAmountOut := cpamm.MinAmountOut(quote.AmountOut, slippageBps)
	if req.MinAmountOut != nil {
		minAmountOut = *req.MinAmountOut
	}

	swapIx, err := h.AMM.BuildSwapInstruction(ctx, cpamm.SwapParams{
		Payer:            payer,
		Pool:             state,
		InputTokenMint:   tokenIn,
		OutputTokenMint:  quote.OutputMint,
		AmountIn:         req.AmountIn,
		MinimumAmountOut: minAmountOut,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	serialized, err := mcsolana.BuildUnsigned(ctx, h.RPC, []solana.Instruction{swapIx}, payer)
	if err != nil {
		log.Errorf("failed to build swap transaction: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"transaction": serialized,
		"swapDetails": gin.H{
			"poolAddress":      state.Address.String(),
			"tokenIn":          quote.InputMint.String(),
			"tokenOut":         quote.OutputMint.String(),
			"amountIn":         quote.AmountIn,
			"expectedOut":      quote.AmountOut,
			"minimumAmountOut": minAmountOut,
			"feeAmount":        quote.FeeAmount,
			"priceImpact":      quote.PriceImpact,
			"slippageBps":      slippageBps,
		},
	})
}
