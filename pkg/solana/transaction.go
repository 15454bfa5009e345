package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// BuildPartiallySigned assembles a transaction from instructions, sets the
// fee payer and a fresh blockhash, and signs only the slots the server
// holds keys for. The payer's slot is left open for the wallet to fill.
func BuildPartiallySigned(
	ctx context.Context,
	client *rpc.Client,
	instructions []solana.Instruction,
	payer solana.PublicKey,
	signers []solana.PrivateKey,
) (string, error) {
	bh, err := client.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return "", fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, bh.Value.Blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return "", fmt.Errorf("failed to build transaction: %w", err)
	}

	if len(signers) > 0 {
		if _, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
			for i := range signers {
				if key.Equals(signers[i].PublicKey()) {
					return &signers[i]
				}
			}
			return nil
		}); err != nil {
			return "", fmt.Errorf("failed to partially sign transaction: %w", err)
		}
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}

	return base64.StdEncoding.EncodeToString(raw), nil
}

// BuildUnsigned assembles an unsigned transaction for the caller's wallet
// to sign and submit.
func BuildUnsigned(
	ctx context.Context,
	client *rpc.Client,
	instructions []solana.Instruction,
	payer solana.PublicKey,
) (string, error) {
	return BuildPartiallySigned(ctx, client, instructions, payer, nil)
}

// CheckTransactionStatus relays the confirmation status of a signature:
// "pending", "confirmed", "finalized", or "error".
func CheckTransactionStatus(ctx context.Context, client *rpc.Client, signature string) (string, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return "", fmt.Errorf("invalid signature format: %w", err)
	}

	res, err := client.GetSignatureStatuses(ctx, false, sig)
	if err != nil {
		return "", fmt.Errorf("failed to get signature status: %w", err)
	}

	if res == nil || len(res.Value) == 0 || res.Value[0] == nil {
		return "pending", nil
	}

	status := res.Value[0]
	if status.Err != nil {
		errJSON, _ := json.Marshal(status.Err)
		return "error", fmt.Errorf("transaction failed: %s", string(errJSON))
	}

	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusFinalized:
		return "finalized", nil
	case rpc.ConfirmationStatusConfirmed:
		return "confirmed", nil
	default:
		return "pending", nil
	}
}
