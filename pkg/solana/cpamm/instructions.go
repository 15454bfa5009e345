package cpamm

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
)

// Fixed pool parameters for event tokens. Fees are flat (no scheduler, no
// dynamic fee), 1% base fee, 20% protocol and referral share.
const (
	baseFeeNumerator    = 10_000_000 // 1% of FeeDenominator
	protocolFeePercent  = 20
	partnerFeePercent   = 0
	referralFeePercent  = 20
	collectFeeModeQuote = 1
)

// CreatePoolParams describes a new single-sided pool seeding the full
// event-token supply against the stablecoin at a fixed initial price.
type CreatePoolParams struct {
	Creator      solana.PublicKey
	PositionNft  solana.PublicKey
	TokenAMint   solana.PublicKey
	TokenBMint   solana.PublicKey
	TokenAAmount uint64
	// InitialPrice is tokenB per tokenA, e.g. 0.1 stablecoin per token.
	InitialPrice   float64
	TokenADecimals uint8
	TokenBDecimals uint8
}

// SwapParams describes an exact-in swap against a fetched pool state.
type SwapParams struct {
	Payer            solana.PublicKey
	Pool             *PoolState
	InputTokenMint   solana.PublicKey
	OutputTokenMint  solana.PublicKey
	AmountIn         uint64
	MinimumAmountOut uint64
}

// SqrtPriceQ64 converts a price (tokenB per tokenA) into the program's
// Q64.64 square-root representation, adjusting for decimal difference.
func SqrtPriceQ64(price float64, decimalsA, decimalsB uint8) *big.Int {
	scaled := new(big.Float).SetFloat64(price)
	if decimalsB > decimalsA {
		scaled.Mul(scaled, big.NewFloat(pow10(int(decimalsB-decimalsA))))
	} else if decimalsA > decimalsB {
		scaled.Quo(scaled, big.NewFloat(pow10(int(decimalsA-decimalsB))))
	}

	sqrt := new(big.Float).Sqrt(scaled)
	q64 := new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 64))
	sqrt.Mul(sqrt, q64)

	out, _ := sqrt.Int(nil)
	return out
}

func pow10(n int) float64 {
	out := 1.0
	for i := 0; i < n; i++ {
		out *= 10
	}
	return out
}

// LiquidityFromAmountA computes the liquidity delta a deposit of amountA
// provides over [sqrtPrice, sqrtMaxPrice]:
//
//	L = amountA * sqrtPrice * sqrtMax / (sqrtMax - sqrtPrice)
func LiquidityFromAmountA(amountA uint64, sqrtPrice, sqrtMax *big.Int) *big.Int {
	num := new(big.Int).SetUint64(amountA)
	num.Mul(num, sqrtPrice)
	num.Mul(num, sqrtMax)

	den := new(big.Int).Sub(sqrtMax, sqrtPrice)
	if den.Sign() <= 0 {
		return big.NewInt(0)
	}
	return num.Div(num, den)
}

func appendU64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

func appendU128(buf []byte, v *big.Int) []byte {
	var b [16]byte
	raw := v.Bytes() // big-endian
	if len(raw) > 16 {
		raw = raw[len(raw)-16:]
	}
	for i, x := range raw {
		b[len(raw)-1-i] = x // little-endian
	}
	return append(buf, b[:]...)
}

// BuildCreatePoolInstruction assembles the initialize_customizable_pool
// instruction. The position NFT keypair must co-sign the transaction.
func (c *Client) BuildCreatePoolInstruction(ctx context.Context, params CreatePoolParams) (solana.Instruction, error) {
	pool, err := DeriveCustomPoolAddress(params.TokenAMint, params.TokenBMint)
	if err != nil {
		return nil, err
	}
	position, err := DerivePositionAddress(params.PositionNft)
	if err != nil {
		return nil, err
	}
	positionNftAccount, err := DerivePositionNftAccount(params.PositionNft)
	if err != nil {
		return nil, err
	}
	tokenAVault, err := DeriveTokenVault(params.TokenAMint, pool)
	if err != nil {
		return nil, err
	}
	tokenBVault, err := DeriveTokenVault(params.TokenBMint, pool)
	if err != nil {
		return nil, err
	}
	poolAuthority, err := derivePoolAuthority()
	if err != nil {
		return nil, fmt.Errorf("failed to derive pool authority: %w", err)
	}
	eventAuthority, err := deriveEventAuthority()
	if err != nil {
		return nil, fmt.Errorf("failed to derive event authority: %w", err)
	}

	payerTokenA, _, err := solana.FindAssociatedTokenAddress(params.Creator, params.TokenAMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive payer token account: %w", err)
	}
	payerTokenB, _, err := solana.FindAssociatedTokenAddress(params.Creator, params.TokenBMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive payer token account: %w", err)
	}

	initSqrtPrice := SqrtPriceQ64(params.InitialPrice, params.TokenADecimals, params.TokenBDecimals)
	liquidityDelta := LiquidityFromAmountA(params.TokenAAmount, initSqrtPrice, MaxSqrtPrice)

	data := anchorDiscriminator("initialize_customizable_pool")

	// PoolFeeParameters: base fee, padding, no dynamic fee.
	data = appendU64(data, baseFeeNumerator)
	data = append(data, 0)             // fee scheduler mode: linear/none
	data = append(data, 0, 0, 0, 0, 0) // padding
	data = append(data, 0, 0)          // number of periods
	data = appendU64(data, 0)          // period frequency
	data = appendU64(data, 0)          // reduction factor
	data = append(data, protocolFeePercent, partnerFeePercent, referralFeePercent)
	data = append(data, 0) // dynamic fee: none

	data = appendU128(data, initSqrtPrice) // sqrt min price
	data = appendU128(data, MaxSqrtPrice)  // sqrt max price
	data = append(data, 0)                 // has alpha vault: false
	data = appendU128(data, liquidityDelta)
	data = appendU128(data, initSqrtPrice)
	data = append(data, 0)                 // activation type: slot
	data = append(data, collectFeeModeQuote)
	data = append(data, 0) // activation point: none

	accounts := []*solana.AccountMeta{
		{PublicKey: params.Creator, IsWritable: true, IsSigner: true},
		{PublicKey: params.PositionNft, IsWritable: true, IsSigner: true},
		{PublicKey: positionNftAccount, IsWritable: true, IsSigner: false},
		{PublicKey: params.Creator, IsWritable: true, IsSigner: true}, // payer
		{PublicKey: poolAuthority, IsWritable: false, IsSigner: false},
		{PublicKey: pool, IsWritable: true, IsSigner: false},
		{PublicKey: position, IsWritable: true, IsSigner: false},
		{PublicKey: params.TokenAMint, IsWritable: false, IsSigner: false},
		{PublicKey: params.TokenBMint, IsWritable: false, IsSigner: false},
		{PublicKey: tokenAVault, IsWritable: true, IsSigner: false},
		{PublicKey: tokenBVault, IsWritable: true, IsSigner: false},
		{PublicKey: payerTokenA, IsWritable: true, IsSigner: false},
		{PublicKey: payerTokenB, IsWritable: true, IsSigner: false},
		{PublicKey: solana.TokenProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: solana.TokenProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: solana.Token2022ProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: solana.SystemProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: eventAuthority, IsWritable: false, IsSigner: false},
		{PublicKey: ProgramID, IsWritable: false, IsSigner: false},
	}

	return solana.NewInstruction(ProgramID, accounts, data), nil
}

// BuildSwapInstruction assembles an exact-in swap against the vaults and
// mints recorded in the fetched pool state.
func (c *Client) BuildSwapInstruction(ctx context.Context, params SwapParams) (solana.Instruction, error) {
	if params.Pool == nil {
		return nil, fmt.Errorf("pool state is required")
	}

	poolAuthority, err := derivePoolAuthority()
	if err != nil {
		return nil, fmt.Errorf("failed to derive pool authority: %w", err)
	}
	eventAuthority, err := deriveEventAuthority()
	if err != nil {
		return nil, fmt.Errorf("failed to derive event authority: %w", err)
	}

	inputTokenAccount, _, err := solana.FindAssociatedTokenAddress(params.Payer, params.InputTokenMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive input token account: %w", err)
	}
	outputTokenAccount, _, err := solana.FindAssociatedTokenAddress(params.Payer, params.OutputTokenMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive output token account: %w", err)
	}

	data := anchorDiscriminator("swap")
	data = appendU64(data, params.AmountIn)
	data = appendU64(data, params.MinimumAmountOut)

	accounts := []*solana.AccountMeta{
		{PublicKey: poolAuthority, IsWritable: false, IsSigner: false},
		{PublicKey: params.Pool.Address, IsWritable: true, IsSigner: false},
		{PublicKey: inputTokenAccount, IsWritable: true, IsSigner: false},
		{PublicKey: outputTokenAccount, IsWritable: true, IsSigner: false},
		{PublicKey: params.Pool.TokenAVault, IsWritable: true, IsSigner: false},
		{PublicKey: params.Pool.TokenBVault, IsWritable: true, IsSigner: false},
		{PublicKey: params.Pool.TokenAMint, IsWritable: false, IsSigner: false},
		{PublicKey: params.Pool.TokenBMint, IsWritable: false, IsSigner: false},
		{PublicKey: params.Payer, IsWritable: true, IsSigner: true},
		{PublicKey: solana.TokenProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: solana.TokenProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: ProgramID, IsWritable: false, IsSigner: false}, // referral: none
		{PublicKey: eventAuthority, IsWritable: false, IsSigner: false},
		{PublicKey: ProgramID, IsWritable: false, IsSigner: false},
	}

	return solana.NewInstruction(ProgramID, accounts, data), nil
}
