// Package cpamm is the boundary to the constant-product AMM program that
// hosts event-token liquidity pools. Pool math and settlement live in the
// on-chain program; this package only derives addresses, decodes pool
// state and assembles instructions against it.
package cpamm

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ProgramID is the DAMM v2 constant-product AMM program.
var ProgramID = solana.MustPublicKeyFromBase58("cpamdpZCGKUy5JxQXB4dcpGPiikHawvSWAd6mEn1sGG")

// Sqrt-price bounds of the program, Q64.64.
var (
	MinSqrtPrice = mustBig("4295048016")
	MaxSqrtPrice = mustBig("79226673521066979257578248091")
)

// FeeDenominator converts the pool's cliff fee numerator to a rate.
const FeeDenominator = 1_000_000_000

// Seeds for PDA derivation
var (
	customPoolSeed      = []byte("cpool")
	poolAuthoritySeed   = []byte("pool_authority")
	positionSeed        = []byte("position")
	positionNftAcctSeed = []byte("position_nft_account")
	tokenVaultSeed      = []byte("token_vault")
	eventAuthoritySeed  = []byte("__event_authority")
)

func mustBig(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid big integer literal: " + s)
	}
	return n
}

// anchorDiscriminator returns the 8-byte instruction tag for an Anchor
// program method.
func anchorDiscriminator(name string) []byte {
	h := sha256.Sum256([]byte("global:" + name))
	return h[:8]
}

// sortKeys orders two mints the way the program orders pool tokens
// (lexicographically descending key bytes first).
func sortKeys(a, b solana.PublicKey) (solana.PublicKey, solana.PublicKey) {
	if bytes.Compare(a.Bytes(), b.Bytes()) >= 0 {
		return a, b
	}
	return b, a
}

// DeriveCustomPoolAddress derives the pool PDA for a token pair.
func DeriveCustomPoolAddress(tokenA, tokenB solana.PublicKey) (solana.PublicKey, error) {
	first, second := sortKeys(tokenA, tokenB)
	pda, _, err := solana.FindProgramAddress(
		[][]byte{customPoolSeed, first.Bytes(), second.Bytes()},
		ProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive pool address: %w", err)
	}
	return pda, nil
}

// DerivePositionAddress derives the liquidity position PDA for a position NFT mint.
func DerivePositionAddress(positionNft solana.PublicKey) (solana.PublicKey, error) {
	pda, _, err := solana.FindProgramAddress(
		[][]byte{positionSeed, positionNft.Bytes()},
		ProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive position address: %w", err)
	}
	return pda, nil
}

// DerivePositionNftAccount derives the token account holding the position NFT.
func DerivePositionNftAccount(positionNft solana.PublicKey) (solana.PublicKey, error) {
	pda, _, err := solana.FindProgramAddress(
		[][]byte{positionNftAcctSeed, positionNft.Bytes()},
		ProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive position nft account: %w", err)
	}
	return pda, nil
}

// DeriveTokenVault derives a pool's vault for one of its mints.
func DeriveTokenVault(mint, pool solana.PublicKey) (solana.PublicKey, error) {
	pda, _, err := solana.FindProgramAddress(
		[][]byte{tokenVaultSeed, mint.Bytes(), pool.Bytes()},
		ProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive token vault: %w", err)
	}
	return pda, nil
}

func derivePoolAuthority() (solana.PublicKey, error) {
	pda, _, err := solana.FindProgramAddress([][]byte{poolAuthoritySeed}, ProgramID)
	return pda, err
}

func deriveEventAuthority() (solana.PublicKey, error) {
	pda, _, err := solana.FindProgramAddress([][]byte{eventAuthoritySeed}, ProgramID)
	return pda, err
}

// PoolState is the subset of the on-chain pool account this service reads.
type PoolState struct {
	Address     solana.PublicKey
	TokenAMint  solana.PublicKey
	TokenBMint  solana.PublicKey
	TokenAVault solana.PublicKey
	TokenBVault solana.PublicKey
	// TradeFeeRate is the pool fee as a fraction of input, e.g. 0.01.
	TradeFeeRate float64
}

// Pool account layout: 8-byte discriminator, then the fee parameter block,
// then the token mints and vaults. Only the base cliff fee numerator is
// read out of the fee block.
const (
	poolFeesSize            = 160
	cliffFeeNumeratorOffset = 8 // first field of the fee block
	mintsOffset             = 8 + poolFeesSize
)

// DecodePoolState decodes the fields this service consumes from raw pool
// account data.
func DecodePoolState(address solana.PublicKey, data []byte) (*PoolState, error) {
	if len(data) < mintsOffset+4*32 {
		return nil, fmt.Errorf("pool account data too short: %d bytes", len(data))
	}

	cliffFeeNumerator := binary.LittleEndian.Uint64(data[cliffFeeNumeratorOffset:])

	readKey := func(offset int) solana.PublicKey {
		return solana.PublicKeyFromBytes(data[offset : offset+32])
	}

	return &PoolState{
		Address:      address,
		TokenAMint:   readKey(mintsOffset),
		TokenBMint:   readKey(mintsOffset + 32),
		TokenAVault:  readKey(mintsOffset + 64),
		TokenBVault:  readKey(mintsOffset + 96),
		TradeFeeRate: float64(cliffFeeNumerator) / FeeDenominator,
	}, nil
}

// AMM is the surface the HTTP handlers use. It exists so callers treat the
// pool program as an opaque collaborator.
type AMM interface {
	FetchPoolState(ctx context.Context, pool solana.PublicKey) (*PoolState, error)
	GetQuote(ctx context.Context, state *PoolState, inputMint solana.PublicKey, amountIn uint64) (*Quote, error)
	BuildCreatePoolInstruction(ctx context.Context, params CreatePoolParams) (solana.Instruction, error)
	BuildSwapInstruction(ctx context.Context, params SwapParams) (solana.Instruction, error)
}

// Client implements AMM against a live RPC endpoint.
type Client struct {
	rpc *rpc.Client
}

func NewClient(rpcClient *rpc.Client) *Client {
	return &Client{rpc: rpcClient}
}

// ErrPoolNotFound reports that the pool account does not exist on-chain,
// as opposed to a transient RPC failure.
var ErrPoolNotFound = errors.New("pool account not found")

// FetchPoolState reads and decodes the live pool account.
func (c *Client) FetchPoolState(ctx context.Context, pool solana.PublicKey) (*PoolState, error) {
	info, err := c.rpc.GetAccountInfo(ctx, pool)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("pool %s: %w", pool, ErrPoolNotFound)
		}
		return nil, fmt.Errorf("failed to fetch pool %s: %w", pool, err)
	}
	if info == nil || info.Value == nil {
		return nil, fmt.Errorf("pool %s: %w", pool, ErrPoolNotFound)
	}
	return DecodePoolState(pool, info.Value.Data.GetBinary())
}
