package cpamm

import (
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnchorDiscriminator(t *testing.T) {
	disc := anchorDiscriminator("swap")
	assert.Len(t, disc, 8)

	// Discriminators are stable per instruction name.
	assert.Equal(t, disc, anchorDiscriminator("swap"))
	assert.NotEqual(t, disc, anchorDiscriminator("initialize_customizable_pool"))
}

func TestDeriveCustomPoolAddressOrderIndependent(t *testing.T) {
	mintA := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	mintB := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

	pool1, err := DeriveCustomPoolAddress(mintA, mintB)
	require.NoError(t, err)
	pool2, err := DeriveCustomPoolAddress(mintB, mintA)
	require.NoError(t, err)

	assert.Equal(t, pool1, pool2)
}

func TestDecodePoolState(t *testing.T) {
	mintA := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	mintB := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	vaultA := solana.NewWallet().PublicKey()
	vaultB := solana.NewWallet().PublicKey()
	pool := solana.NewWallet().PublicKey()

	data := make([]byte, mintsOffset+4*32)
	// cliff fee numerator 10_000_000 -> 1% of the fee denominator
	data[cliffFeeNumeratorOffset] = 0x80
	data[cliffFeeNumeratorOffset+1] = 0x96
	data[cliffFeeNumeratorOffset+2] = 0x98
	copy(data[mintsOffset:], mintA.Bytes())
	copy(data[mintsOffset+32:], mintB.Bytes())
	copy(data[mintsOffset+64:], vaultA.Bytes())
	copy(data[mintsOffset+96:], vaultB.Bytes())

	state, err := DecodePoolState(pool, data)
	require.NoError(t, err)

	assert.Equal(t, pool, state.Address)
	assert.Equal(t, mintA, state.TokenAMint)
	assert.Equal(t, mintB, state.TokenBMint)
	assert.Equal(t, vaultA, state.TokenAVault)
	assert.Equal(t, vaultB, state.TokenBVault)
	assert.InDelta(t, 0.01, state.TradeFeeRate, 1e-12)
}

func TestDecodePoolStateTooShort(t *testing.T) {
	_, err := DecodePoolState(solana.NewWallet().PublicKey(), make([]byte, 64))
	assert.Error(t, err)
}

func TestConstantProductOut(t *testing.T) {
	// Equal reserves: output is slightly under input.
	out := constantProductOut(1_000_000, 100_000_000, 100_000_000)
	assert.Equal(t, uint64(990_099), out)

	// 10:1 reserves: roughly 10x output.
	out = constantProductOut(1_000, 1_000_000, 10_000_000)
	assert.Equal(t, uint64(9_990), out)
}

func TestMinAmountOut(t *testing.T) {
	tests := []struct {
		name        string
		amountOut   uint64
		slippageBps uint64
		want        uint64
	}{
		{"one percent", 1_000_000, 100, 990_000},
		{"half percent", 1_000_000, 50, 995_000},
		{"rounds down", 999, 100, 990},
		{"zero slippage", 1_000_000, 0, 1_000_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MinAmountOut(tt.amountOut, tt.slippageBps))
		})
	}
}

func TestSqrtPriceQ64(t *testing.T) {
	// Price 1.0 with equal decimals is exactly 2^64.
	one := SqrtPriceQ64(1.0, 6, 6)
	assert.Equal(t, new(big.Int).Lsh(big.NewInt(1), 64), one)

	// Price 0.1 lands between sqrt bounds.
	p := SqrtPriceQ64(0.1, 6, 6)
	assert.Equal(t, 1, p.Cmp(MinSqrtPrice))
	assert.Equal(t, -1, p.Cmp(MaxSqrtPrice))
}

func TestLiquidityFromAmountA(t *testing.T) {
	sqrtPrice := SqrtPriceQ64(0.1, 6, 6)
	liq := LiquidityFromAmountA(1_000_000_000_000, sqrtPrice, MaxSqrtPrice)
	assert.Equal(t, 1, liq.Sign())

	// Degenerate range produces no liquidity.
	assert.Equal(t, 0, LiquidityFromAmountA(1_000, MaxSqrtPrice, MaxSqrtPrice).Sign())
}

func TestBuildSwapInstruction(t *testing.T) {
	c := NewClient(nil)
	payer := solana.NewWallet().PublicKey()
	state := &PoolState{
		Address:     solana.NewWallet().PublicKey(),
		TokenAMint:  solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112"),
		TokenBMint:  solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"),
		TokenAVault: solana.NewWallet().PublicKey(),
		TokenBVault: solana.NewWallet().PublicKey(),
	}

	ix, err := c.BuildSwapInstruction(nil, SwapParams{
		Payer:            payer,
		Pool:             state,
		InputTokenMint:   state.TokenBMint,
		OutputTokenMint:  state.TokenAMint,
		AmountIn:         5_000_000,
		MinimumAmountOut: 49_000_000,
	})
	require.NoError(t, err)

	assert.Equal(t, ProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, anchorDiscriminator("swap"), data[:8])
	assert.Len(t, data, 8+8+8)

	var payerIsSigner bool
	for _, acc := range ix.Accounts() {
		if acc.PublicKey == payer {
			payerIsSigner = acc.IsSigner
		}
	}
	assert.True(t, payerIsSigner)
}

func TestBuildSwapInstructionRequiresPool(t *testing.T) {
	c := NewClient(nil)
	_, err := c.BuildSwapInstruction(nil, SwapParams{})
	assert.Error(t, err)
}

func TestBuildCreatePoolInstruction(t *testing.T) {
	c := NewClient(nil)
	params := CreatePoolParams{
		Creator:        solana.NewWallet().PublicKey(),
		PositionNft:    solana.NewWallet().PublicKey(),
		TokenAMint:     solana.NewWallet().PublicKey(),
		TokenBMint:     solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"),
		TokenAAmount:   1_000_000_000_000,
		InitialPrice:   0.1,
		TokenADecimals: 6,
		TokenBDecimals: 6,
	}

	ix, err := c.BuildCreatePoolInstruction(nil, params)
	require.NoError(t, err)

	assert.Equal(t, ProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, anchorDiscriminator("initialize_customizable_pool"), data[:8])

	// Creator and the position NFT mint both sign.
	signers := 0
	for _, acc := range ix.Accounts() {
		if acc.IsSigner {
			signers++
		}
	}
	assert.Equal(t, 3, signers) // creator appears twice (creator and payer)
}
