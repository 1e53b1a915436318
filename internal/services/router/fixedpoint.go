package router

import (
	"math/big"
	"sync"

	"github.com/holiman/uint256"

	"github.com/hxuan190/evm-quote-engine/internal/domain"
)

// Pre-computed constants (avoid allocation on every call)
var (
	// E18 is the 18-decimal fixed-point scale for prices
	E18 = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	// BPS_DENOM = 10000 for basis points
	BPS_DENOM = big.NewInt(domain.BpsDenominator)

	u256BpsDenom = uint256.NewInt(uint64(domain.BpsDenominator))

	pow10Table = func() [78]*big.Int {
		var t [78]*big.Int
		t[0] = big.NewInt(1)
		ten := big.NewInt(10)
		for i := 1; i < len(t); i++ {
			t[i] = new(big.Int).Mul(t[i-1], ten)
		}
		return t
	}()
)

var uint256Pool = sync.Pool{
	New: func() interface{} {
		return new(uint256.Int)
	},
}

var bigIntPool = sync.Pool{
	New: func() interface{} {
		return new(big.Int)
	},
}

// GetU256 gets a uint256.Int from the pool
func GetU256() *uint256.Int {
	return uint256Pool.Get().(*uint256.Int)
}

// PutU256 returns a uint256.Int to the pool
func PutU256(v *uint256.Int) {
	v.Clear()
	uint256Pool.Put(v)
}

// GetBigInt gets a big.Int from the pool
func GetBigInt() *big.Int {
	return bigIntPool.Get().(*big.Int)
}

// PutBigInt returns a big.Int to the pool
func PutBigInt(v *big.Int) {
	v.SetInt64(0)
	bigIntPool.Put(v)
}

// Pow10 returns 10^decimals. The result is shared and must not be mutated.
func Pow10(decimals uint8) *big.Int {
	if int(decimals) < len(pow10Table) {
		return pow10Table[decimals]
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}

// MulBps returns floor(amount * bps / 10000). Amounts that fit in 256 bits take the
// uint256 path; anything larger falls back to big.Int.
func MulBps(amount *big.Int, bps uint64) *big.Int {
	if amount == nil || amount.Sign() <= 0 || bps == 0 {
		return new(big.Int)
	}

	a := GetU256()
	b := GetU256()
	defer func() {
		PutU256(a)
		PutU256(b)
	}()

	if overflow := a.SetFromBig(amount); !overflow {
		b.SetUint64(bps)
		if _, mulOverflow := a.MulOverflow(a, b); !mulOverflow {
			a.Div(a, u256BpsDenom)
			return a.ToBig()
		}
	}

	out := new(big.Int).Mul(amount, new(big.Int).SetUint64(bps))
	return out.Quo(out, BPS_DENOM)
}

// PriceE18 returns amountOut·10^decIn·10^18 / (amountIn·10^decOut), the price of one
// whole tokenIn in whole tokenOut units, scaled by 10^18. It returns nil when amountIn is
// not positive.
func PriceE18(amountOut, amountIn *big.Int, decIn, decOut uint8) *big.Int {
	if amountIn == nil || amountIn.Sign() <= 0 || amountOut == nil {
		return nil
	}

	num := new(big.Int).Mul(amountOut, Pow10(decIn))
	num.Mul(num, E18)

	den := GetBigInt()
	defer PutBigInt(den)
	den.Mul(amountIn, Pow10(decOut))

	return num.Quo(num, den)
}

// ChainMidPrice folds a hop mid price into a cumulative path price: cum·hop / 10^18.
func ChainMidPrice(cumE18, hopE18 *big.Int) *big.Int {
	out := new(big.Int).Mul(cumE18, hopE18)
	return out.Quo(out, E18)
}

// ImpactBps returns ((exec − mid)·10^18 / mid)·10000 / 10^18, truncated toward zero.
// It is negative when exec is worse than mid and 0 when mid is not positive.
func ImpactBps(execE18, midE18 *big.Int) int64 {
	if midE18 == nil || execE18 == nil || midE18.Sign() <= 0 {
		return 0
	}

	diff := new(big.Int).Sub(execE18, midE18)
	diff.Mul(diff, E18)
	diff.Quo(diff, midE18)
	diff.Mul(diff, BPS_DENOM)
	diff.Quo(diff, E18)

	if !diff.IsInt64() {
		if diff.Sign() < 0 {
			return -1 << 63
		}
		return 1<<63 - 1
	}
	return diff.Int64()
}

// MinReceived returns floor(amountOut·(10000 − slippageBps) / 10000).
func MinReceived(amountOut *big.Int, slippageBps uint32) *big.Int {
	if slippageBps >= uint32(domain.BpsDenominator) {
		return new(big.Int)
	}
	return MulBps(amountOut, uint64(domain.BpsDenominator)-uint64(slippageBps))
}
