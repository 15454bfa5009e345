package solana

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

// MintAccountSize is the byte size of an SPL token mint account.
const MintAccountSize = 82

// MintParams describes the token to be minted for an event. The creator
// pays rent, receives the full supply, and keeps mint/freeze authority.
type MintParams struct {
	Creator  solana.PublicKey
	Mint     solana.PublicKey
	Decimals uint8
	Supply   uint64
}

// BuildMintInstructions returns the instruction sequence that creates and
// funds the mint account, initializes it, creates the creator's associated
// token account and mints the full supply into it. The mint keypair must
// co-sign the resulting transaction.
func BuildMintInstructions(ctx context.Context, client *rpc.Client, params MintParams) ([]solana.Instruction, solana.PublicKey, error) {
	rentLamports, err := client.GetMinimumBalanceForRentExemption(ctx, MintAccountSize, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("failed to get rent exemption: %w", err)
	}

	ata, _, err := solana.FindAssociatedTokenAddress(params.Creator, params.Mint)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("failed to derive associated token address: %w", err)
	}

	createMintAccountIx := system.NewCreateAccountInstruction(
		rentLamports,
		MintAccountSize,
		solana.TokenProgramID,
		params.Creator,
		params.Mint,
	).Build()

	initializeMintIx := token.NewInitializeMintInstruction(
		params.Decimals,
		params.Creator, // mint authority
		params.Creator, // freeze authority
		params.Mint,
		solana.SysVarRentPubkey,
	).Build()

	createAtaIx := associatedtokenaccount.NewCreateInstruction(
		params.Creator,
		params.Creator,
		params.Mint,
	).Build()

	mintToIx := token.NewMintToInstruction(
		params.Supply,
		params.Mint,
		ata,
		params.Creator,
		nil,
	).Build()

	return []solana.Instruction{
		createMintAccountIx,
		initializeMintIx,
		createAtaIx,
		mintToIx,
	}, ata, nil
}
