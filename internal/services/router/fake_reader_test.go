package router

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/evm-quote-engine/internal/domain"
)

var errReverted = errors.New("execution reverted")

type fakePool struct {
	token0   common.Address
	reserve0 *big.Int
	reserve1 *big.Int
}

// fakeReader prices paths like a Uniswap-V2 router with a 0.3% fee.
type fakeReader struct {
	mu       sync.Mutex
	chain    *domain.ChainConfig
	pools    map[common.Address]*fakePool
	outputs  map[string]*big.Int
	failures map[string]bool
	price    *big.Int
	priceErr error

	amountsCalls atomic.Int32
	totalCalls   atomic.Int32
}

func newFakeReader(chain *domain.ChainConfig) *fakeReader {
	px, _ := new(big.Int).SetString("2000000000000000000000", 10)
	return &fakeReader{
		chain:    chain,
		pools:    make(map[common.Address]*fakePool),
		outputs:  make(map[string]*big.Int),
		failures: make(map[string]bool),
		price:    px,
	}
}

func pathKey(path []common.Address) string {
	parts := make([]string, len(path))
	for i, a := range path {
		parts[i] = a.Hex()
	}
	return strings.Join(parts, ">")
}

// setPool registers reserves for the a/b pair, given as reserveA and reserveB.
func (f *fakeReader) setPool(a, b common.Address, reserveA, reserveB *big.Int) {
	pair, ok := f.chain.PairAddress(a, b)
	if !ok {
		panic("no pair for " + a.Hex() + "/" + b.Hex())
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	// token0 is the lower address, as the factory sorts them.
	if strings.ToLower(a.Hex()) < strings.ToLower(b.Hex()) {
		f.pools[pair] = &fakePool{token0: a, reserve0: reserveA, reserve1: reserveB}
	} else {
		f.pools[pair] = &fakePool{token0: b, reserve0: reserveB, reserve1: reserveA}
	}
}

func (f *fakeReader) setOutput(path []common.Address, out *big.Int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs[pathKey(path)] = out
}

func (f *fakeReader) failPath(path []common.Address) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[pathKey(path)] = true
}

func getAmountOut(amountIn, reserveIn, reserveOut *big.Int) *big.Int {
	inWithFee := new(big.Int).Mul(amountIn, big.NewInt(997))
	num := new(big.Int).Mul(inWithFee, reserveOut)
	den := new(big.Int).Mul(reserveIn, big.NewInt(1000))
	den.Add(den, inWithFee)
	return num.Quo(num, den)
}

func (f *fakeReader) GetAmountsOut(ctx context.Context, chainID domain.ChainID, router common.Address, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	f.totalCalls.Add(1)
	f.amountsCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()

	key := pathKey(path)
	if f.failures[key] {
		return nil, errReverted
	}

	amounts := make([]*big.Int, len(path))
	amounts[0] = new(big.Int).Set(amountIn)
	if out, ok := f.outputs[key]; ok {
		for i := 1; i < len(path); i++ {
			amounts[i] = new(big.Int).Set(out)
		}
		return amounts, nil
	}

	for i := 0; i+1 < len(path); i++ {
		pair, ok := f.chain.PairAddress(path[i], path[i+1])
		if !ok {
			return nil, errReverted
		}
		pool, ok := f.pools[pair]
		if !ok || pool.reserve0.Sign() == 0 || pool.reserve1.Sign() == 0 {
			return nil, errReverted
		}
		rIn, rOut := pool.reserve0, pool.reserve1
		if pool.token0 != path[i] {
			rIn, rOut = rOut, rIn
		}
		amounts[i+1] = getAmountOut(amounts[i], rIn, rOut)
	}
	return amounts, nil
}

func (f *fakeReader) pool(pair common.Address) (*fakePool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pool, ok := f.pools[pair]
	if !ok {
		return nil, errReverted
	}
	return pool, nil
}

func (f *fakeReader) GetReserves(ctx context.Context, chainID domain.ChainID, pair common.Address) (*domain.Reserves, error) {
	f.totalCalls.Add(1)
	pool, err := f.pool(pair)
	if err != nil {
		return nil, err
	}
	return &domain.Reserves{
		Reserve0: new(big.Int).Set(pool.reserve0),
		Reserve1: new(big.Int).Set(pool.reserve1),
	}, nil
}

func (f *fakeReader) Token0(ctx context.Context, chainID domain.ChainID, pair common.Address) (common.Address, error) {
	f.totalCalls.Add(1)
	pool, err := f.pool(pair)
	if err != nil {
		return common.Address{}, err
	}
	return pool.token0, nil
}

func (f *fakeReader) GetUSDPrice(ctx context.Context, chainID domain.ChainID, oracle common.Address, token common.Address) (*domain.OraclePrice, error) {
	f.totalCalls.Add(1)
	if f.priceErr != nil {
		return nil, f.priceErr
	}
	return &domain.OraclePrice{PriceE18: f.price, UpdatedAt: big.NewInt(1700000000)}, nil
}
