// Package registry holds the static per-chain deployment tables: contracts, tokens, pairs
// and the intermediary whitelist used for routing.
package registry

import (
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"

	"github.com/hxuan190/evm-quote-engine/internal/domain"
)

const (
	SepoliaChainID       domain.ChainID = 11155111
	ScrollSepoliaChainID domain.ChainID = 534351
)

// Registry is a read-only lookup over chain configs. Lookups never error; absence is
// reported with a false ok or an empty slice.
type Registry struct {
	chains map[domain.ChainID]*domain.ChainConfig
}

func New(chains ...*domain.ChainConfig) *Registry {
	r := &Registry{chains: make(map[domain.ChainID]*domain.ChainConfig, len(chains))}
	for _, c := range chains {
		r.chains[c.ID] = c
	}
	return r
}

func (r *Registry) GetChainConfig(chainID domain.ChainID) (*domain.ChainConfig, bool) {
	cfg, ok := r.chains[chainID]
	return cfg, ok
}

// GetTokenConfig matches the address case-insensitively.
func (r *Registry) GetTokenConfig(chainID domain.ChainID, address string) (domain.TokenConfig, bool) {
	cfg, ok := r.chains[chainID]
	if !ok {
		return domain.TokenConfig{}, false
	}
	addr, ok := domain.ParseAddress(address)
	if !ok {
		return domain.TokenConfig{}, false
	}
	return cfg.TokenByAddress(addr)
}

func (r *Registry) TokenBySymbol(chainID domain.ChainID, symbol string) (domain.TokenConfig, bool) {
	cfg, ok := r.chains[chainID]
	if !ok {
		return domain.TokenConfig{}, false
	}
	if t, ok := cfg.Tokens[symbol]; ok {
		return t, true
	}
	return lo.Find(lo.Values(cfg.Tokens), func(t domain.TokenConfig) bool {
		return strings.EqualFold(t.Symbol, symbol)
	})
}

// ResolveToken accepts either an address or a symbol.
func (r *Registry) ResolveToken(chainID domain.ChainID, ref string) (domain.TokenConfig, bool) {
	if common.IsHexAddress(strings.TrimSpace(ref)) {
		return r.GetTokenConfig(chainID, ref)
	}
	return r.TokenBySymbol(chainID, strings.TrimSpace(ref))
}

// GetPairAddress checks both token orders.
func (r *Registry) GetPairAddress(chainID domain.ChainID, tokenA, tokenB string) (common.Address, bool) {
	cfg, ok := r.chains[chainID]
	if !ok {
		return common.Address{}, false
	}
	a, okA := domain.ParseAddress(tokenA)
	b, okB := domain.ParseAddress(tokenB)
	if !okA || !okB {
		return common.Address{}, false
	}
	return cfg.PairAddress(a, b)
}

// GetIntermediaryTokens returns the ordered whitelist of routing hop symbols.
func (r *Registry) GetIntermediaryTokens(chainID domain.ChainID) []string {
	cfg, ok := r.chains[chainID]
	if !ok {
		return []string{}
	}
	return append([]string(nil), cfg.Intermediaries...)
}

// GetAllTokens returns the chain's tokens sorted by symbol.
func (r *Registry) GetAllTokens(chainID domain.ChainID) []domain.TokenConfig {
	cfg, ok := r.chains[chainID]
	if !ok {
		return []domain.TokenConfig{}
	}
	tokens := lo.Values(cfg.Tokens)
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].Symbol < tokens[j].Symbol })
	return tokens
}

func (r *Registry) SupportedChains() []domain.ChainID {
	ids := lo.Keys(r.chains)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
