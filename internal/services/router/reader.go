package router

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/evm-quote-engine/internal/domain"
)

// ChainReader is the read-only view of the chain the router needs. Any call may fail with
// a revert or a transport error.
type ChainReader interface {
	GetAmountsOut(ctx context.Context, chainID domain.ChainID, router common.Address, amountIn *big.Int, path []common.Address) ([]*big.Int, error)
	GetReserves(ctx context.Context, chainID domain.ChainID, pair common.Address) (*domain.Reserves, error)
	Token0(ctx context.Context, chainID domain.ChainID, pair common.Address) (common.Address, error)
	GetUSDPrice(ctx context.Context, chainID domain.ChainID, oracle common.Address, token common.Address) (*domain.OraclePrice, error)
}

// Registry resolves chain and token configuration.
type Registry interface {
	GetChainConfig(chainID domain.ChainID) (*domain.ChainConfig, bool)
	GetTokenConfig(chainID domain.ChainID, address string) (domain.TokenConfig, bool)
}
