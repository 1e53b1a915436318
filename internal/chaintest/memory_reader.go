// Package chaintest provides an in-memory chain reader priced like a Uniswap-V2 router.
package chaintest

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/evm-quote-engine/internal/domain"
)

var ErrReverted = errors.New("execution reverted")

type pool struct {
	token0   common.Address
	reserve0 *big.Int
	reserve1 *big.Int
}

type MemoryReader struct {
	mu         sync.Mutex
	chain      *domain.ChainConfig
	pools      map[common.Address]*pool
	allowances map[common.Address]*big.Int
	PriceE18   *big.Int
}

func NewMemoryReader(chain *domain.ChainConfig) *MemoryReader {
	px, _ := new(big.Int).SetString("2000000000000000000000", 10)
	return &MemoryReader{
		chain:      chain,
		pools:      make(map[common.Address]*pool),
		allowances: make(map[common.Address]*big.Int),
		PriceE18:   px,
	}
}

// SetPool registers reserveA of a and reserveB of b for the a/b pair.
func (m *MemoryReader) SetPool(a, b common.Address, reserveA, reserveB *big.Int) {
	pair, ok := m.chain.PairAddress(a, b)
	if !ok {
		panic("no pair for " + a.Hex() + "/" + b.Hex())
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if strings.ToLower(a.Hex()) < strings.ToLower(b.Hex()) {
		m.pools[pair] = &pool{token0: a, reserve0: reserveA, reserve1: reserveB}
	} else {
		m.pools[pair] = &pool{token0: b, reserve0: reserveB, reserve1: reserveA}
	}
}

// SetAllowance sets what owner has approved, for every token and spender.
func (m *MemoryReader) SetAllowance(owner common.Address, amount *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowances[owner] = amount
}

func amountOut(amountIn, reserveIn, reserveOut *big.Int) *big.Int {
	inWithFee := new(big.Int).Mul(amountIn, big.NewInt(997))
	num := new(big.Int).Mul(inWithFee, reserveOut)
	den := new(big.Int).Mul(reserveIn, big.NewInt(1000))
	den.Add(den, inWithFee)
	return num.Quo(num, den)
}

func (m *MemoryReader) GetAmountsOut(ctx context.Context, chainID domain.ChainID, router common.Address, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	amounts := make([]*big.Int, len(path))
	amounts[0] = new(big.Int).Set(amountIn)
	for i := 0; i+1 < len(path); i++ {
		pair, ok := m.chain.PairAddress(path[i], path[i+1])
		if !ok {
			return nil, ErrReverted
		}
		p, ok := m.pools[pair]
		if !ok || p.reserve0.Sign() == 0 || p.reserve1.Sign() == 0 {
			return nil, ErrReverted
		}
		rIn, rOut := p.reserve0, p.reserve1
		if p.token0 != path[i] {
			rIn, rOut = rOut, rIn
		}
		amounts[i+1] = amountOut(amounts[i], rIn, rOut)
	}
	return amounts, nil
}

func (m *MemoryReader) GetReserves(ctx context.Context, chainID domain.ChainID, pair common.Address) (*domain.Reserves, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pools[pair]
	if !ok {
		return nil, ErrReverted
	}
	return &domain.Reserves{
		Reserve0: new(big.Int).Set(p.reserve0),
		Reserve1: new(big.Int).Set(p.reserve1),
	}, nil
}

func (m *MemoryReader) Token0(ctx context.Context, chainID domain.ChainID, pair common.Address) (common.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pools[pair]
	if !ok {
		return common.Address{}, ErrReverted
	}
	return p.token0, nil
}

func (m *MemoryReader) GetUSDPrice(ctx context.Context, chainID domain.ChainID, oracle, token common.Address) (*domain.OraclePrice, error) {
	return &domain.OraclePrice{PriceE18: m.PriceE18, UpdatedAt: big.NewInt(1700000000)}, nil
}

func (m *MemoryReader) Allowance(ctx context.Context, chainID domain.ChainID, token, owner, spender common.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.allowances[owner]; ok {
		return new(big.Int).Set(a), nil
	}
	return big.NewInt(0), nil
}

// Units returns n·10^decimals.
func Units(n int64, decimals int) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
}
