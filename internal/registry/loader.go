package registry

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/evm-quote-engine/internal/domain"
)

//go:embed chains.toml
var embeddedChains []byte

type fileTokens struct {
	Symbol   string `toml:"symbol"`
	Address  string `toml:"address"`
	Decimals uint8  `toml:"decimals"`
	Logo     string `toml:"logo"`
}

type filePair struct {
	Tokens  []string `toml:"tokens"`
	Address string   `toml:"address"`
}

type fileChain struct {
	ID             uint64       `toml:"id"`
	Name           string       `toml:"name"`
	Router         string       `toml:"router"`
	Factory        string       `toml:"factory"`
	Oracle         string       `toml:"oracle"`
	GuardedRouter  string       `toml:"guarded_router"`
	Bridge         string       `toml:"bridge"`
	CCIPSelector   string       `toml:"ccip_selector"`
	Intermediaries []string     `toml:"intermediaries"`
	Tokens         []fileTokens `toml:"tokens"`
	Pairs          []filePair   `toml:"pairs"`
}

type registryFile struct {
	Chains []fileChain `toml:"chains"`
}

// Load reads the registry from path, or from the embedded tables when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Parse(embeddedChains)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the embedded registry. It panics if the embedded file is malformed.
func Default() *Registry {
	reg, err := Parse(embeddedChains)
	if err != nil {
		panic(fmt.Sprintf("embedded registry: %v", err))
	}
	return reg
}

// Parse decodes a TOML registry document.
func Parse(data []byte) (*Registry, error) {
	var file registryFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}

	chains := make([]*domain.ChainConfig, 0, len(file.Chains))
	seen := make(map[uint64]bool, len(file.Chains))
	for _, fc := range file.Chains {
		if seen[fc.ID] {
			return nil, fmt.Errorf("duplicate chain %d", fc.ID)
		}
		seen[fc.ID] = true

		cfg, err := fc.toDomain()
		if err != nil {
			return nil, fmt.Errorf("chain %d: %w", fc.ID, err)
		}
		chains = append(chains, cfg)
	}
	return New(chains...), nil
}

func (fc fileChain) toDomain() (*domain.ChainConfig, error) {
	if fc.ID == 0 {
		return nil, fmt.Errorf("missing chain id")
	}

	cfg := &domain.ChainConfig{
		ID:             fc.ID,
		Name:           fc.Name,
		CCIPSelector:   fc.CCIPSelector,
		Tokens:         make(map[string]domain.TokenConfig, len(fc.Tokens)),
		Pairs:          make(map[common.Address]map[common.Address]common.Address),
		Intermediaries: append([]string(nil), fc.Intermediaries...),
	}

	contracts := []struct {
		name string
		raw  string
		dst  *common.Address
		opt  bool
	}{
		{"router", fc.Router, &cfg.Router, false},
		{"factory", fc.Factory, &cfg.Factory, true},
		{"oracle", fc.Oracle, &cfg.Oracle, true},
		{"guarded_router", fc.GuardedRouter, &cfg.GuardedRouter, true},
		{"bridge", fc.Bridge, &cfg.Bridge, true},
	}
	for _, c := range contracts {
		if c.raw == "" && c.opt {
			continue
		}
		addr, ok := domain.ParseAddress(c.raw)
		if !ok {
			return nil, fmt.Errorf("invalid %s address %q", c.name, c.raw)
		}
		*c.dst = addr
	}

	for _, t := range fc.Tokens {
		addr, ok := domain.ParseAddress(t.Address)
		if !ok {
			return nil, fmt.Errorf("token %s: invalid address %q", t.Symbol, t.Address)
		}
		if _, dup := cfg.Tokens[t.Symbol]; dup {
			return nil, fmt.Errorf("duplicate token symbol %s", t.Symbol)
		}
		cfg.Tokens[t.Symbol] = domain.TokenConfig{
			Address:  addr,
			Symbol:   t.Symbol,
			Decimals: t.Decimals,
			Logo:     t.Logo,
		}
	}

	for _, p := range fc.Pairs {
		if len(p.Tokens) != 2 {
			return nil, fmt.Errorf("pair %s: want 2 tokens, got %d", p.Address, len(p.Tokens))
		}
		a, okA := cfg.Tokens[p.Tokens[0]]
		b, okB := cfg.Tokens[p.Tokens[1]]
		if !okA || !okB {
			return nil, fmt.Errorf("pair %s references unknown token", p.Address)
		}
		pair, ok := domain.ParseAddress(p.Address)
		if !ok {
			return nil, fmt.Errorf("pair %s/%s: invalid address %q", a.Symbol, b.Symbol, p.Address)
		}
		link(cfg.Pairs, a.Address, b.Address, pair)
		link(cfg.Pairs, b.Address, a.Address, pair)
	}

	for _, sym := range cfg.Intermediaries {
		if _, ok := cfg.Tokens[sym]; !ok {
			log.Warn().Uint64("chainId", fc.ID).Str("symbol", sym).Msg("[Registry] intermediary not in token list, it will be skipped")
		}
	}

	return cfg, nil
}

func link(pairs map[common.Address]map[common.Address]common.Address, from, to, pair common.Address) {
	row, ok := pairs[from]
	if !ok {
		row = make(map[common.Address]common.Address)
		pairs[from] = row
	}
	row[to] = pair
}
