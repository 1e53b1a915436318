package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

type ChainID = uint64

// TokenConfig describes an ERC-20 token known to a chain.
// Decimals must match the token contract's decimals().
type TokenConfig struct {
	Address  common.Address `json:"address"`
	Symbol   string         `json:"symbol"`
	Decimals uint8          `json:"decimals"`
	Logo     string         `json:"logo,omitempty"`
}

// ChainConfig is the static deployment table for one chain. It is never mutated after load.
type ChainConfig struct {
	ID            ChainID
	Name          string
	Router        common.Address
	Factory       common.Address
	Oracle        common.Address
	GuardedRouter common.Address
	Bridge        common.Address
	CCIPSelector  string

	// Tokens is keyed by symbol.
	Tokens map[string]TokenConfig
	// Pairs is an adjacency map token -> token -> pair address, both directions populated.
	Pairs map[common.Address]map[common.Address]common.Address
	// Intermediaries is the ordered whitelist of symbols usable as a routing hop.
	Intermediaries []string
}

// TokenByAddress looks a token up by address.
func (c *ChainConfig) TokenByAddress(addr common.Address) (TokenConfig, bool) {
	for _, t := range c.Tokens {
		if t.Address == addr {
			return t, true
		}
	}
	return TokenConfig{}, false
}

// PairAddress returns the pool for tokenA/tokenB regardless of argument order.
func (c *ChainConfig) PairAddress(tokenA, tokenB common.Address) (common.Address, bool) {
	if pair, ok := c.Pairs[tokenA][tokenB]; ok {
		return pair, true
	}
	if pair, ok := c.Pairs[tokenB][tokenA]; ok {
		return pair, true
	}
	return common.Address{}, false
}

// ParseAddress accepts any hex casing. It returns false for malformed input.
func ParseAddress(s string) (common.Address, bool) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}
