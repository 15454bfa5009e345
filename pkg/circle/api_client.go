package circle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client is a minimal Circle developer-controlled wallets API client.
type Client struct {
	apiKey       string
	entitySecret string
	baseURL      string
	httpClient   *http.Client
}

// NewClient creates a Circle API client using the configured API key and
// entity secret ciphertext.
func NewClient(apiKey, entitySecret string) *Client {
	return &Client{
		apiKey:       apiKey,
		entitySecret: entitySecret,
		baseURL:      "https://api.circle.com/v1/w3s",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				IdleConnTimeout:       10 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}
}

// Configured reports whether API credentials are present.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.entitySecret != ""
}

// WalletSet is a Circle wallet set.
type WalletSet struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Wallet is a Circle developer-controlled wallet.
type Wallet struct {
	ID          string `json:"id"`
	Address     string `json:"address"`
	Blockchain  string `json:"blockchain"`
	State       string `json:"state"`
	WalletSetID string `json:"walletSetId"`
}

type walletSetResponse struct {
	Data struct {
		WalletSet WalletSet `json:"walletSet"`
	} `json:"data"`
}

type walletsResponse struct {
	Data struct {
		Wallets []Wallet `json:"wallets"`
	} `json:"data"`
}

// CreateWalletSet creates a named wallet set.
func (c *Client) CreateWalletSet(ctx context.Context, name string) (*WalletSet, error) {
	payload := map[string]interface{}{
		"idempotencyKey":         uuid.NewString(),
		"name":                   name,
		"entitySecretCipherText": c.entitySecret,
	}

	var resp walletSetResponse
	if err := c.post(ctx, "/developer/walletSets", payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to create wallet set: %w", err)
	}
	return &resp.Data.WalletSet, nil
}

// CreateWallets provisions count wallets on the given blockchains inside the
// wallet set.
func (c *Client) CreateWallets(ctx context.Context, walletSetID string, blockchains []string, count int) ([]Wallet, error) {
	payload := map[string]interface{}{
		"idempotencyKey":         uuid.NewString(),
		"walletSetId":            walletSetID,
		"blockchains":            blockchains,
		"count":                  count,
		"entitySecretCipherText": c.entitySecret,
	}

	var resp walletsResponse
	if err := c.post(ctx, "/developer/wallets", payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to create wallets: %w", err)
	}
	return resp.Data.Wallets, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("API request failed with status code %d: %s", resp.StatusCode, body)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
