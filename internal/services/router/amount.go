package router

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hxuan190/evm-quote-engine/internal/domain"
)

// ParseUnits converts a human decimal string into base units. Fractional digits beyond
// decimals are truncated. Empty, malformed, zero and negative inputs return ErrInvalidAmount.
func ParseUnits(amount string, decimals uint8) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("empty amount: %w", domain.ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", amount, domain.ErrInvalidAmount)
	}

	raw := d.Truncate(int32(decimals)).Shift(int32(decimals)).BigInt()
	if raw.Sign() <= 0 {
		return nil, fmt.Errorf("amount %q is not positive in base units: %w", amount, domain.ErrInvalidAmount)
	}
	return raw, nil
}

// FormatUnits renders base units as a decimal string without trailing zeros.
func FormatUnits(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).String()
}
