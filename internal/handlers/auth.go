package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"m33t/internal/auth"
	"m33t/internal/session"
)

// WalletSignInRequest carries the signed sign-in message from the wallet.
type WalletSignInRequest struct {
	PublicKey string `json:"publicKey" binding:"required"`
	Signature string `json:"signature" binding:"required"`
	Message   struct {
		Statement string `json:"statement"`
		Domain    string `json:"domain" binding:"required"`
		Nonce     string `json:"nonce" binding:"required"`
		IssuedAt  string `json:"issuedAt" binding:"required"`
	} `json:"message" binding:"required"`
}

// WalletSignIn verifies a wallet's signature over the sign-in message and
// issues a session token.
func (h *Handler) WalletSignIn(c *gin.Context) {
	var req WalletSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pub, err := solana.PublicKeyFromBase58(req.PublicKey)
	if err != nil || !pub.IsOnCurve() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Solana wallet address"})
		return
	}

	issuedAt, err := time.Parse(time.RFC3339, req.Message.IssuedAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issuedAt timestamp"})
		return
	}

	msg := auth.SignInMessage{
		Statement: req.Message.Statement,
		Domain:    req.Message.Domain,
		Nonce:     req.Message.Nonce,
		IssuedAt:  issuedAt,
	}
	if err := auth.VerifySignInMessage(msg, req.PublicKey, req.Signature); err != nil {
		log.WithField("publicKey", req.PublicKey).Warnf("sign-in rejected: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	token, err := auth.IssueToken([]byte(h.Cfg.JWTSecret), req.PublicKey, req.Message.Domain)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue session token"})
		return
	}

	now := time.Now()
	h.Sessions.Put(&session.Session{
		PublicKey:     req.PublicKey,
		Authenticated: true,
		Token:         token,
		ConnectedAt:   now,
		LastActivity:  now,
	})
	h.Bridge.SetConnected(req.PublicKey)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"token":     token,
		"publicKey": req.PublicKey,
		"expiresAt": now.Add(auth.SessionDuration).UTC().Format(time.RFC3339),
	})
}

// bearerClaims validates the Bearer token on the request. It writes the
// 401 response itself when the token is missing or invalid.
func (h *Handler) bearerClaims(c *gin.Context) (*auth.Claims, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
		return nil, false
	}

	claims, err := auth.VerifyToken([]byte(h.Cfg.JWTSecret), strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return nil, false
	}
	return claims, true
}

// VerifySession validates the Bearer token and checks the wallet still has
// a live server-side session. A valid token whose session was cleared, by
// sign-out or a wallet switch, no longer authenticates.
func (h *Handler) VerifySession(c *gin.Context) {
	claims, ok := h.bearerClaims(c)
	if !ok {
		return
	}
	if _, ok := h.Sessions.Get(claims.PublicKey); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired or signed out"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"publicKey":     claims.PublicKey,
		"domain":        claims.Domain,
		"expiresAt":     time.Unix(claims.ExpiresAt, 0).UTC().Format(time.RFC3339),
	})
}

// WalletSignOut clears the wallet's server-side session. The JWT itself
// stays valid until expiry, but VerifySession rejects it once the session
// is gone.
func (h *Handler) WalletSignOut(c *gin.Context) {
	claims, ok := h.bearerClaims(c)
	if !ok {
		return
	}

	h.Sessions.Clear(claims.PublicKey)
	if h.Bridge.ConnectedKey() == claims.PublicKey {
		h.Bridge.SetConnected("")
	}
	log.WithField("publicKey", claims.PublicKey).Info("wallet signed out")

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// WalletBridgeRequest reports the wallet the frontend currently has
// connected. An empty publicKey means the wallet disconnected.
type WalletBridgeRequest struct {
	PublicKey string `json:"publicKey"`
}

// WalletBridgeUpdate records a wallet connect or disconnect from the
// frontend. The session monitor clears sessions for wallets that are no
// longer connected.
func (h *Handler) WalletBridgeUpdate(c *gin.Context) {
	var req WalletBridgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.PublicKey != "" {
		if _, err := solana.PublicKeyFromBase58(req.PublicKey); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Solana wallet address"})
			return
		}
	}

	h.Bridge.SetConnected(req.PublicKey)
	c.JSON(http.StatusOK, gin.H{"success": true, "connected": req.PublicKey != ""})
}
