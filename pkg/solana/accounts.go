package solana

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// MintExists reports whether a mint account is live on-chain. Ledger rows
// can reference mints whose creation transaction was never submitted, so a
// plain not-found is a normal answer, not an error.
func MintExists(ctx context.Context, client *rpc.Client, mint solana.PublicKey) (bool, error) {
	info, err := client.GetAccountInfo(ctx, mint)
	if err != nil {
		if err == rpc.ErrNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to get account info for %s: %w", mint, err)
	}
	return info != nil && info.Value != nil, nil
}

// TokenBalance holds the raw and display forms of an associated token
// account balance.
type TokenBalance struct {
	Account  solana.PublicKey
	Amount   uint64
	Decimals uint8
	UIAmount float64
}

// GetAssociatedTokenBalance derives the owner's associated token account
// for the mint and reads its balance. A missing account reads as zero.
func GetAssociatedTokenBalance(ctx context.Context, client *rpc.Client, owner, mint solana.PublicKey) (*TokenBalance, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive associated token address: %w", err)
	}

	resp, err := client.GetTokenAccountBalance(ctx, ata, rpc.CommitmentConfirmed)
	if err != nil {
		if err == rpc.ErrNotFound {
			return &TokenBalance{Account: ata}, nil
		}
		return nil, fmt.Errorf("failed to get balance for %s: %w", ata, err)
	}
	if resp == nil || resp.Value == nil {
		return &TokenBalance{Account: ata}, nil
	}

	amount, err := strconv.ParseUint(resp.Value.Amount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance %q: %w", resp.Value.Amount, err)
	}

	ui := 0.0
	if resp.Value.UiAmount != nil {
		ui = *resp.Value.UiAmount
	}

	return &TokenBalance{
		Account:  ata,
		Amount:   amount,
		Decimals: resp.Value.Decimals,
		UIAmount: ui,
	}, nil
}
