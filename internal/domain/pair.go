package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Reserves is the result of a Uniswap-V2 pair getReserves() call.
type Reserves struct {
	Reserve0           *big.Int
	Reserve1           *big.Int
	BlockTimestampLast uint32
}

// Orient returns (reserveIn, reserveOut) for a swap that sells tokenIn into a pair whose
// token0 is token0.
func (r *Reserves) Orient(token0, tokenIn common.Address) (*big.Int, *big.Int) {
	if token0 == tokenIn {
		return r.Reserve0, r.Reserve1
	}
	return r.Reserve1, r.Reserve0
}

// OraclePrice is an 18-decimal USD price from the oracle's getUSDPrice(token).
type OraclePrice struct {
	PriceE18  *big.Int
	UpdatedAt *big.Int
}

// PairSnapshot captures the first hop's pair state at quote time.
type PairSnapshot struct {
	Address  common.Address
	Reserve0 *big.Int
	Reserve1 *big.Int
	Token0   common.Address
	Token1   common.Address
}

// HopState is the oriented pair state of one hop, as read for price-impact computation.
type HopState struct {
	Pair        common.Address
	TokenIn     common.Address
	TokenOut    common.Address
	Token0      common.Address
	Reserves    Reserves
	ReserveIn   *big.Int
	ReserveOut  *big.Int
	MidPriceE18 *big.Int
}
