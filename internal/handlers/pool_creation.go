package handlers

import (
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"m33t/internal/models"
	mcsolana "m33t/pkg/solana"
	"m33t/pkg/solana/cpamm"
)

// Every event token is minted with the same shape: 6 decimals, a supply of
// one million whole tokens, priced at 0.1 stablecoin at pool creation.
const (
	tokenDecimals      = 6
	tokenSupply        = 1_000_000 * 1_000_000
	initialPoolPrice   = 0.1
	stablecoinDecimals = 6
)

// CreateTransactionRequest describes the event token to mint and pool.
type CreateTransactionRequest struct {
	UserPublicKey string `json:"userPublicKey" binding:"required"`
	Name          string `json:"name" binding:"required"`
	Symbol        string `json:"symbol" binding:"required"`
	URI           string `json:"uri" binding:"required"`
	EventID       string `json:"eventId" binding:"required"`
}

// TokenCreatedEvent is the message published for each pool-creation
// transaction handed out, and again once a signature is attached.
type TokenCreatedEvent struct {
	RecordID       uint   `json:"recordId"`
	MintAddress    string `json:"mintAddress"`
	CreatorAddress string `json:"creatorAddress"`
	EventID        string `json:"eventId"`
	Signature      string `json:"signature,omitempty"`
}

// CreatePoolTransaction builds the full mint-and-pool transaction for an
// event token: create and initialize the mint, mint the supply to the
// creator, then open a stablecoin pool seeded with that supply. The server
// signs for the ephemeral mint and position NFT keypairs and returns the
// serialized transaction for the creator's wallet to countersign and submit.
func (h *Handler) CreatePoolTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creator, err := solana.PublicKeyFromBase58(req.UserPublicKey)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Solana wallet address"})
		return
	}

	stablecoin, err := solana.PublicKeyFromBase58(h.Cfg.StablecoinMint)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid stablecoin mint configured"})
		return
	}

	ctx := c.Request.Context()

	mintAccount, err := h.Keys.GenerateKeyPair()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate mint keypair"})
		return
	}
	positionNftAccount, err := h.Keys.GenerateKeyPair()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate position keypair"})
		return
	}

	mint, err := h.Keys.PublicKey(mintAccount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	positionNft, err := h.Keys.PublicKey(positionNftAccount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	instructions, ata, err := mcsolana.BuildMintInstructions(ctx, h.RPC, mcsolana.MintParams{
		Creator:  creator,
		Mint:     mint,
		Decimals: tokenDecimals,
		Supply:   tokenSupply,
	})
	if err != nil {
		log.Errorf("failed to build mint instructions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	poolIx, err := h.AMM.BuildCreatePoolInstruction(ctx, cpamm.CreatePoolParams{
		Creator:        creator,
		PositionNft:    positionNft,
		TokenAMint:     mint,
		TokenBMint:     stablecoin,
		TokenAAmount:   tokenSupply,
		InitialPrice:   initialPoolPrice,
		TokenADecimals: tokenDecimals,
		TokenBDecimals: stablecoinDecimals,
	})
	if err != nil {
		log.Errorf("failed to build pool instruction: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	instructions = append(instructions, poolIx)

	mintKey, err := h.Keys.SigningKey(mintAccount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	positionNftKey, err := h.Keys.SigningKey(positionNftAccount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	serialized, err := mcsolana.BuildPartiallySigned(ctx, h.RPC, instructions, creator,
		[]solana.PrivateKey{mintKey, positionNftKey})
	if err != nil {
		log.Errorf("failed to build transaction: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	pool, err := cpamm.DeriveCustomPoolAddress(mint, stablecoin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	position, err := cpamm.DerivePositionAddress(positionNft)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	record := models.TokenCreation{
		MintAddress:     mint.String(),
		CreatorAddress:  creator.String(),
		PoolAddress:     pool.String(),
		PositionAddress: position.String(),
		Name:            req.Name,
		Symbol:          req.Symbol,
		URI:             req.URI,
		EventID:         req.EventID,
	}
	if err := h.DB.Create(&record).Error; err != nil {
		log.Errorf("failed to save token creation: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save token record"})
		return
	}

	if h.Publisher != nil {
		event := TokenCreatedEvent{
			RecordID:       record.ID,
			MintAddress:    record.MintAddress,
			CreatorAddress: record.CreatorAddress,
			EventID:        record.EventID,
		}
		if err := h.Publisher.Publish(TokenCreatedQueue, event); err != nil {
			log.Warnf("failed to publish token_created event: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"transaction": serialized,
		"tokenData": gin.H{
			"id":              record.ID,
			"mintAddress":     record.MintAddress,
			"poolAddress":     record.PoolAddress,
			"positionAddress": record.PositionAddress,
			"tokenAccount":    ata.String(),
			"name":            record.Name,
			"symbol":          record.Symbol,
			"uri":             record.URI,
			"eventId":         record.EventID,
			"decimals":        tokenDecimals,
			"supply":          uint64(tokenSupply),
		},
	})
}

// TransactionStatus relays the confirmation status of a submitted signature.
func (h *Handler) TransactionStatus(c *gin.Context) {
	signature := c.Query("signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature query parameter is required"})
		return
	}

	status, err := mcsolana.CheckTransactionStatus(c.Request.Context(), h.RPC, signature)
	if err != nil && status != "error" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"signature": signature, "status": status}
	if status == "error" && err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}
