package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
)

const (
	// Connection states
	StateDisconnected = "disconnected"
	StateConnecting   = "connecting"
	StateConnected    = "connected"

	confirmPollInterval = 5 * time.Second
	wsReadTimeout       = 90 * time.Second
)

// ConfirmationWatcher waits for transaction signatures to reach confirmed
// commitment. It subscribes over the chain WebSocket endpoint and falls
// back to RPC status polling when the socket is unavailable.
type ConfirmationWatcher struct {
	wsEndpoint string
	rpcClient  *rpc.Client
	mu         sync.Mutex
	status     string
}

// NewConfirmationWatcher creates a watcher. wsEndpoint may be empty, in
// which case every wait degrades to RPC polling.
func NewConfirmationWatcher(wsEndpoint string, rpcClient *rpc.Client) *ConfirmationWatcher {
	return &ConfirmationWatcher{
		wsEndpoint: wsEndpoint,
		rpcClient:  rpcClient,
		status:     StateDisconnected,
	}
}

type wsRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type wsSignatureNotification struct {
	Method string `json:"method"`
	Params struct {
		Result struct {
			Value struct {
				Err interface{} `json:"err"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

// WaitForConfirmation blocks until the signature confirms, fails on-chain,
// or ctx is done. A nil return means the transaction confirmed.
func (w *ConfirmationWatcher) WaitForConfirmation(ctx context.Context, signature string) error {
	if w.wsEndpoint != "" {
		if err := w.waitOverWebSocket(ctx, signature); err == nil {
			return nil
		} else if ctx.Err() != nil {
			return ctx.Err()
		} else {
			log.Warnf("WebSocket confirmation for %s failed, falling back to polling: %v", signature, err)
		}
	}
	return w.waitByPolling(ctx, signature)
}

func (w *ConfirmationWatcher) waitOverWebSocket(ctx context.Context, signature string) error {
	w.setStatus(StateConnecting)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, w.wsEndpoint, nil)
	if err != nil {
		w.setStatus(StateDisconnected)
		return fmt.Errorf("failed to dial %s: %w", w.wsEndpoint, err)
	}
	defer func() {
		conn.Close()
		w.setStatus(StateDisconnected)
	}()
	w.setStatus(StateConnected)

	sub := wsRequest{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  "signatureSubscribe",
		Params: []interface{}{
			signature,
			map[string]string{"commitment": "confirmed"},
		},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := conn.SetReadDeadline(time.Now().Add(wsReadTimeout)); err != nil {
			return err
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read failed: %w", err)
		}

		var note wsSignatureNotification
		if err := json.Unmarshal(raw, &note); err != nil {
			continue
		}
		if note.Method != "signatureNotification" {
			continue
		}
		if note.Params.Result.Value.Err != nil {
			errJSON, _ := json.Marshal(note.Params.Result.Value.Err)
			return fmt.Errorf("transaction failed: %s", string(errJSON))
		}
		return nil
	}
}

func (w *ConfirmationWatcher) waitByPolling(ctx context.Context, signature string) error {
	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			status, err := CheckTransactionStatus(ctx, w.rpcClient, signature)
			if err != nil {
				if status == "error" {
					return err
				}
				log.Warnf("Status check for %s failed: %v", signature, err)
				continue
			}
			if status == "confirmed" || status == "finalized" {
				return nil
			}
		}
	}
}

func (w *ConfirmationWatcher) setStatus(s string) {
	w.mu.Lock()
	w.status = s
	w.mu.Unlock()
}

// Status reports the current WebSocket connection state.
func (w *ConfirmationWatcher) Status() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}
