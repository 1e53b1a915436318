// Package common contains constants and helpers shared across services
package common

import (
	"math/big"

	"github.com/holiman/uint256"
)

var (
	// E18 is the fixed-point scale used for prices.
	E18 = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	// MaxUint256 is the unlimited ERC-20 approval amount.
	MaxUint256 = new(uint256.Int).SetAllOne()
)

const (
	// SwapDeadlineSeconds is how long a built swap stays valid.
	SwapDeadlineSeconds = 20 * 60
)
