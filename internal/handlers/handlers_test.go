package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m33t/internal/auth"
	"m33t/internal/session"
	"m33t/pkg/config"
)

// testHandler has no database or RPC client wired; only paths that reject
// before touching them can be exercised.
func testHandler() *Handler {
	return &Handler{
		Sessions: session.NewStore(),
		Bridge:   session.NewBridge(),
		Cfg: &config.Config{
			JWTSecret:      "test-secret",
			Domain:         "m33t.app",
			StablecoinMint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		},
	}
}

func performJSON(t *testing.T, handler gin.HandlerFunc, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, &buf)
	c.Request.Header.Set("Content-Type", "application/json")
	handler(c)
	return w
}

func TestCreatePoolTransactionMissingFields(t *testing.T) {
	h := testHandler()

	tests := []struct {
		name string
		body map[string]string
	}{
		{"empty body", map[string]string{}},
		{"missing name", map[string]string{
			"userPublicKey": "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
			"symbol":        "EVT", "uri": "https://example.com/m.json", "eventId": "ev-1",
		}},
		{"missing symbol", map[string]string{
			"userPublicKey": "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
			"name":          "Event Token", "uri": "https://example.com/m.json", "eventId": "ev-1",
		}},
		{"missing eventId", map[string]string{
			"userPublicKey": "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
			"name":          "Event Token", "symbol": "EVT", "uri": "https://example.com/m.json",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(t, h.CreatePoolTransaction, "POST", "/solana/create-transaction", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCreatePoolTransactionInvalidAddress(t *testing.T) {
	h := testHandler()

	w := performJSON(t, h.CreatePoolTransaction, "POST", "/solana/create-transaction", map[string]string{
		"userPublicKey": "not-a-solana-address",
		"name":          "Event Token",
		"symbol":        "EVT",
		"uri":           "https://example.com/m.json",
		"eventId":       "ev-1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid Solana wallet address")
}

func TestWalletSignInValidation(t *testing.T) {
	h := testHandler()

	w := performJSON(t, h.WalletSignIn, "POST", "/wallet-signin", map[string]interface{}{
		"publicKey": "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(t, h.WalletSignIn, "POST", "/wallet-signin", map[string]interface{}{
		"publicKey": "garbage",
		"signature": "x",
		"message": map[string]string{
			"domain": "m33t.app", "nonce": "n", "issuedAt": "2026-01-01T00:00:00Z",
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid Solana wallet address")
}

func TestVerifySessionMissingToken(t *testing.T) {
	h := testHandler()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/wallet-signin", nil)
	h.VerifySession(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func bearerRequest(t *testing.T, handler gin.HandlerFunc, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, nil)
	c.Request.Header.Set("Authorization", "Bearer "+token)
	handler(c)
	return w
}

// A valid JWT alone is not enough; the wallet must also hold a live
// server-side session.
func TestVerifySessionRequiresLiveSession(t *testing.T) {
	h := testHandler()
	const wallet = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"

	token, err := auth.IssueToken([]byte(h.Cfg.JWTSecret), wallet, h.Cfg.Domain)
	require.NoError(t, err)

	w := bearerRequest(t, h.VerifySession, "GET", "/wallet-signin", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "signed out")

	now := time.Now()
	h.Sessions.Put(&session.Session{
		PublicKey: wallet, Authenticated: true, Token: token,
		ConnectedAt: now, LastActivity: now,
	})

	w = bearerRequest(t, h.VerifySession, "GET", "/wallet-signin", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), wallet)
}

func TestWalletSignOutClearsSession(t *testing.T) {
	h := testHandler()
	const wallet = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"

	token, err := auth.IssueToken([]byte(h.Cfg.JWTSecret), wallet, h.Cfg.Domain)
	require.NoError(t, err)

	now := time.Now()
	h.Sessions.Put(&session.Session{
		PublicKey: wallet, Authenticated: true, Token: token,
		ConnectedAt: now, LastActivity: now,
	})
	h.Bridge.SetConnected(wallet)

	w := bearerRequest(t, h.WalletSignOut, "DELETE", "/wallet-signin", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, h.Sessions.Len())
	assert.Empty(t, h.Bridge.ConnectedKey())

	w = bearerRequest(t, h.VerifySession, "GET", "/wallet-signin", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWalletBridgeUpdate(t *testing.T) {
	h := testHandler()
	const wallet = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"

	w := performJSON(t, h.WalletBridgeUpdate, "POST", "/wallet-bridge", map[string]string{
		"publicKey": "garbage",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(t, h.WalletBridgeUpdate, "POST", "/wallet-bridge", map[string]string{
		"publicKey": wallet,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, wallet, h.Bridge.ConnectedKey())

	// An empty key reports a disconnect.
	w = performJSON(t, h.WalletBridgeUpdate, "POST", "/wallet-bridge", map[string]string{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, h.Bridge.ConnectedKey())
}

func TestSwapQuoteValidation(t *testing.T) {
	h := testHandler()
	gin.SetMode(gin.TestMode)

	const usdc = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	const other = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"

	tests := []struct {
		name  string
		query string
	}{
		{"missing pool", "?tokenIn=" + usdc + "&tokenOut=" + other + "&amountIn=100"},
		{"missing tokenOut", "?poolAddress=" + usdc + "&tokenIn=" + usdc + "&amountIn=100"},
		{"bad tokenOut", "?poolAddress=" + usdc + "&tokenIn=" + usdc + "&tokenOut=garbage&amountIn=100"},
		{"bad amount", "?poolAddress=" + usdc + "&tokenIn=" + usdc + "&tokenOut=" + other + "&amountIn=abc"},
		{"zero amount", "?poolAddress=" + usdc + "&tokenIn=" + usdc + "&tokenOut=" + other + "&amountIn=0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/solana/swap/quote"+tt.query, nil)
			h.SwapQuote(c)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSwapExecuteValidation(t *testing.T) {
	h := testHandler()

	w := performJSON(t, h.SwapExecute, "POST", "/solana/swap/execute", map[string]interface{}{
		"userPublicKey": "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
		"poolAddress":   "bad",
		"tokenIn":       "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		"amountIn":      1000,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid pool address")

	over := uint64(10_001)
	w = performJSON(t, h.SwapExecute, "POST", "/solana/swap/execute", map[string]interface{}{
		"userPublicKey": "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
		"poolAddress":   "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		"tokenIn":       "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		"amountIn":      1000,
		"slippageBps":   over,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTokensValidation(t *testing.T) {
	h := testHandler()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/tokens", nil)
	h.ListTokens(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/tokens?creator=garbage", nil)
	h.ListTokens(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserTokensValidation(t *testing.T) {
	h := testHandler()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/user/tokens?userAddress=garbage", nil)
	h.UserTokens(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttachSignatureValidation(t *testing.T) {
	h := testHandler()

	w := performJSON(t, h.AttachSignature, "PATCH", "/tokens", map[string]string{
		"mintAddress": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(t, h.AttachSignature, "PATCH", "/tokens", map[string]string{
		"mintAddress":          "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		"transactionSignature": "!!not-base58!!",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid transaction signature")
}

func TestCreateCircleWalletUnconfigured(t *testing.T) {
	h := New(testHandler().Cfg, nil, nil, nil, nil)

	w := performJSON(t, h.CreateCircleWallet, "POST", "/circle/create-wallet", map[string]string{})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
