package cpamm

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Quote is a constant-product estimate of an exact-in swap, computed from
// the live vault reserves. It is an estimate only; the program enforces the
// minimum output at execution time.
type Quote struct {
	Pool        solana.PublicKey `json:"pool"`
	InputMint   solana.PublicKey `json:"inputMint"`
	OutputMint  solana.PublicKey `json:"outputMint"`
	AmountIn    uint64           `json:"amountIn"`
	AmountOut   uint64           `json:"amountOut"`
	FeeAmount   uint64           `json:"feeAmount"`
	PriceImpact float64          `json:"priceImpact"`
	// AToB is true when the input is the pool's token A.
	AToB bool `json:"aToB"`
}

// GetQuote estimates the output of swapping amountIn of inputMint against
// the pool. The fee is taken from the input side before the curve math.
func (c *Client) GetQuote(ctx context.Context, state *PoolState, inputMint solana.PublicKey, amountIn uint64) (*Quote, error) {
	if state == nil {
		return nil, fmt.Errorf("pool state is required")
	}
	if amountIn == 0 {
		return nil, fmt.Errorf("amount in must be positive")
	}

	var aToB bool
	var outputMint solana.PublicKey
	switch inputMint {
	case state.TokenAMint:
		aToB = true
		outputMint = state.TokenBMint
	case state.TokenBMint:
		aToB = false
		outputMint = state.TokenAMint
	default:
		return nil, fmt.Errorf("mint %s is not traded by pool %s", inputMint, state.Address)
	}

	reserveA, err := c.vaultAmount(ctx, state.TokenAVault)
	if err != nil {
		return nil, fmt.Errorf("failed to read token A reserve: %w", err)
	}
	reserveB, err := c.vaultAmount(ctx, state.TokenBVault)
	if err != nil {
		return nil, fmt.Errorf("failed to read token B reserve: %w", err)
	}

	reserveIn, reserveOut := reserveA, reserveB
	if !aToB {
		reserveIn, reserveOut = reserveB, reserveA
	}
	if reserveIn == 0 || reserveOut == 0 {
		return nil, fmt.Errorf("pool %s has no liquidity", state.Address)
	}

	feeAmount := uint64(float64(amountIn) * state.TradeFeeRate)
	amountOut := constantProductOut(amountIn-feeAmount, reserveIn, reserveOut)

	return &Quote{
		Pool:        state.Address,
		InputMint:   inputMint,
		OutputMint:  outputMint,
		AmountIn:    amountIn,
		AmountOut:   amountOut,
		FeeAmount:   feeAmount,
		PriceImpact: priceImpact(amountIn-feeAmount, amountOut, reserveIn, reserveOut),
		AToB:        aToB,
	}, nil
}

func (c *Client) vaultAmount(ctx context.Context, vault solana.PublicKey) (uint64, error) {
	resp, err := c.rpc.GetTokenAccountBalance(ctx, vault, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, err
	}
	if resp == nil || resp.Value == nil {
		return 0, fmt.Errorf("no balance for vault %s", vault)
	}
	return strconv.ParseUint(resp.Value.Amount, 10, 64)
}

// constantProductOut solves x*y=k for the output side: out = y*dx/(x+dx).
func constantProductOut(amountIn, reserveIn, reserveOut uint64) uint64 {
	num := new(big.Int).SetUint64(amountIn)
	num.Mul(num, new(big.Int).SetUint64(reserveOut))

	den := new(big.Int).SetUint64(reserveIn)
	den.Add(den, new(big.Int).SetUint64(amountIn))

	return num.Div(num, den).Uint64()
}

// priceImpact reports how far the execution price moved off the spot price,
// as a fraction in [0, 1].
func priceImpact(amountIn, amountOut, reserveIn, reserveOut uint64) float64 {
	if amountIn == 0 || reserveIn == 0 || reserveOut == 0 {
		return 0
	}
	spot := float64(reserveOut) / float64(reserveIn)
	exec := float64(amountOut) / float64(amountIn)
	if spot == 0 {
		return 0
	}
	impact := 1 - exec/spot
	if impact < 0 {
		return 0
	}
	return impact
}

// MinAmountOut applies a slippage tolerance in basis points to a quoted
// output amount, rounding down.
func MinAmountOut(amountOut uint64, slippageBps uint64) uint64 {
	return amountOut - amountOut*slippageBps/10_000
}
