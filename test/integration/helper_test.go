package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gagliardetto/solana-go/rpc"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"m33t/internal/handlers"
	"m33t/internal/models"
	"m33t/internal/routes"
	"m33t/pkg/config"
	"m33t/pkg/solana/cpamm"
)

// testDB opens the database named by TEST_DATABASE_DSN and migrates the
// schema. Tests needing a live database skip when it is unset.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.TokenCreation{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// fakeSolanaRPC answers just the RPC methods transaction building needs:
// rent exemption and a recent blockhash.
func fakeSolanaRPC(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var result interface{}
		switch req.Method {
		case "getMinimumBalanceForRentExemption":
			result = 1461600
		case "getLatestBlockhash":
			result = map[string]interface{}{
				"context": map[string]interface{}{"slot": 1},
				"value": map[string]interface{}{
					"blockhash":            "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
					"lastValidBlockHeight": 1000,
				},
			}
		default:
			http.Error(w, "unexpected RPC method "+req.Method, http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newAPIServer serves the full router over HTTP, with transaction building
// backed by the canned Solana RPC endpoint.
func newAPIServer(t *testing.T, db *gorm.DB) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:      "integration-secret",
		Domain:         "m33t.app",
		StablecoinMint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	}
	rpcClient := rpc.New(fakeSolanaRPC(t).URL)
	h := handlers.New(cfg, db, rpcClient, cpamm.NewClient(rpcClient), nil)

	srv := httptest.NewServer(routes.SetupRouter(h))
	t.Cleanup(srv.Close)
	return srv
}
