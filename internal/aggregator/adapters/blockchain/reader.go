// Package blockchain reads Uniswap-V2 pair, router, oracle and ERC-20 state over JSON-RPC.
package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/evm-quote-engine/internal/config"
	"github.com/hxuan190/evm-quote-engine/internal/domain"
	"github.com/hxuan190/evm-quote-engine/internal/metrics"
)

const (
	ETH_READER_SERVICE = "eth-reader-svc"

	token0CacheSize = 4096
)

var ErrNoClient = errors.New("no rpc client for chain")

type pairKey struct {
	chainID domain.ChainID
	pair    common.Address
}

// EthReader performs read-only contract calls, one caller per chain.
type EthReader struct {
	callers     map[domain.ChainID]bind.ContractCaller
	clients     []*ethclient.Client
	callTimeout time.Duration
	token0      *boundedLRU[pairKey, common.Address]
}

func (r *EthReader) ID() string {
	return ETH_READER_SERVICE
}

// NewEthReader dials every configured RPC endpoint.
func NewEthReader(ctx context.Context, cfg *config.RPCConfig) (*EthReader, error) {
	r := newReader(cfg.CallTimeout)
	for chainID, url := range cfg.URLs {
		client, err := ethclient.DialContext(ctx, url)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("dial chain %d: %w", chainID, err)
		}
		r.callers[chainID] = client
		r.clients = append(r.clients, client)
		log.Info().Uint64("chainId", chainID).Msg("[EthReader] connected")
	}
	return r, nil
}

// NewEthReaderWithCallers builds a reader over existing callers, such as simulated backends.
func NewEthReaderWithCallers(callers map[domain.ChainID]bind.ContractCaller, callTimeout time.Duration) *EthReader {
	r := newReader(callTimeout)
	for id, c := range callers {
		r.callers[id] = c
	}
	return r
}

func newReader(callTimeout time.Duration) *EthReader {
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	return &EthReader{
		callers:     make(map[domain.ChainID]bind.ContractCaller),
		callTimeout: callTimeout,
		token0:      newBoundedLRU[pairKey, common.Address](token0CacheSize),
	}
}

func (r *EthReader) Close() {
	for _, c := range r.clients {
		c.Close()
	}
	r.clients = nil
}

func (r *EthReader) call(ctx context.Context, chainID domain.ChainID, contract common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	caller, ok := r.callers[chainID]
	if !ok {
		return nil, fmt.Errorf("%w %d", ErrNoClient, chainID)
	}

	ctx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	start := time.Now()
	var out []interface{}
	bound := bind.NewBoundContract(contract, parsed, caller, nil, nil)
	err := bound.Call(&bind.CallOpts{Context: ctx}, &out, method, args...)
	metrics.ReaderDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ReaderCalls.WithLabelValues(method, "error").Inc()
		return nil, fmt.Errorf("%s on %s: %w", method, contract.Hex(), err)
	}
	metrics.ReaderCalls.WithLabelValues(method, "ok").Inc()
	return out, nil
}

func (r *EthReader) GetAmountsOut(ctx context.Context, chainID domain.ChainID, router common.Address, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	out, err := r.call(ctx, chainID, router, RouterABI, "getAmountsOut", amountIn, path)
	if err != nil {
		return nil, err
	}
	amounts := *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int)
	if len(amounts) != len(path) {
		return nil, fmt.Errorf("getAmountsOut: got %d amounts for path of %d", len(amounts), len(path))
	}
	return amounts, nil
}

func (r *EthReader) GetReserves(ctx context.Context, chainID domain.ChainID, pair common.Address) (*domain.Reserves, error) {
	out, err := r.call(ctx, chainID, pair, PairABI, "getReserves")
	if err != nil {
		return nil, err
	}
	return &domain.Reserves{
		Reserve0:           *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		Reserve1:           *abi.ConvertType(out[1], new(*big.Int)).(**big.Int),
		BlockTimestampLast: *abi.ConvertType(out[2], new(uint32)).(*uint32),
	}, nil
}

// Token0 is immutable per pair, so results are cached.
func (r *EthReader) Token0(ctx context.Context, chainID domain.ChainID, pair common.Address) (common.Address, error) {
	key := pairKey{chainID: chainID, pair: pair}
	if addr, ok := r.token0.Get(key); ok {
		return addr, nil
	}

	out, err := r.call(ctx, chainID, pair, PairABI, "token0")
	if err != nil {
		return common.Address{}, err
	}
	addr := *abi.ConvertType(out[0], new(common.Address)).(*common.Address)
	r.token0.Set(key, addr)
	metrics.Token0CacheSize.Set(float64(r.token0.Len()))
	return addr, nil
}

func (r *EthReader) GetUSDPrice(ctx context.Context, chainID domain.ChainID, oracle common.Address, token common.Address) (*domain.OraclePrice, error) {
	if oracle == (common.Address{}) {
		return nil, fmt.Errorf("chain %d has no oracle", chainID)
	}
	out, err := r.call(ctx, chainID, oracle, OracleABI, "getUSDPrice", token)
	if err != nil {
		return nil, err
	}
	return &domain.OraclePrice{
		PriceE18:  *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		UpdatedAt: *abi.ConvertType(out[1], new(*big.Int)).(**big.Int),
	}, nil
}

func (r *EthReader) Allowance(ctx context.Context, chainID domain.ChainID, token, owner, spender common.Address) (*big.Int, error) {
	out, err := r.call(ctx, chainID, token, ERC20ABI, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}
