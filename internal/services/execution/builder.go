// Package execution turns a settled quote into the parameters of an unsigned
// swapExactTokensForTokens call, plus an approve call when the router allowance is short.
package execution

import (
	"context"
	"fmt"
	"math/big"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/evm-quote-engine/internal/aggregator/adapters/blockchain"
	"github.com/hxuan190/evm-quote-engine/internal/common"
	"github.com/hxuan190/evm-quote-engine/internal/domain"
	"github.com/hxuan190/evm-quote-engine/internal/metrics"
	"github.com/hxuan190/evm-quote-engine/internal/services"
)

const EXECUTION_SERVICE = "execution-svc"

type AllowanceReader interface {
	Allowance(ctx context.Context, chainID domain.ChainID, token, owner, spender ethcommon.Address) (*big.Int, error)
}

type ChainLookup interface {
	GetChainConfig(chainID domain.ChainID) (*domain.ChainConfig, bool)
}

type Builder struct {
	chains    ChainLookup
	allowance AllowanceReader
	deadline  time.Duration
	now       func() time.Time
	logger    *services.ServiceLogger
}

type Option func(*Builder)

func WithDeadline(d time.Duration) Option {
	return func(b *Builder) {
		if d > 0 {
			b.deadline = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

func NewBuilder(chains ChainLookup, allowance AllowanceReader, opts ...Option) *Builder {
	b := &Builder{
		chains:    chains,
		allowance: allowance,
		deadline:  common.SwapDeadlineSeconds * time.Second,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = services.NewServiceLogger(b)
	return b
}

func (b *Builder) ID() string {
	return EXECUTION_SERVICE
}

// Build encodes the swap for quote. The swap pays recipient, or owner when recipient is
// the zero address. Allowance is checked for owner against the chain router.
func (b *Builder) Build(ctx context.Context, quote *domain.QuoteResult, owner, recipient ethcommon.Address) (plan *domain.SwapPlan, err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		approval := "false"
		if err != nil {
			status = "error"
		} else if plan.NeedsApproval {
			approval = "true"
		}
		metrics.SwapRequests.WithLabelValues(approval, status).Inc()
		metrics.SwapDuration.Observe(time.Since(start).Seconds())
	}()

	if quote == nil || len(quote.RoutePath) < 2 {
		return nil, fmt.Errorf("quote has no route: %w", domain.ErrNoRouteFound)
	}
	if owner == (ethcommon.Address{}) {
		return nil, fmt.Errorf("owner: %w", domain.ErrInvalidAddress)
	}
	if recipient == (ethcommon.Address{}) {
		recipient = owner
	}

	chain, ok := b.chains.GetChainConfig(quote.ChainID)
	if !ok {
		return nil, fmt.Errorf("chain %d: %w", quote.ChainID, domain.ErrChainNotSupported)
	}

	deadline := b.now().Add(b.deadline).Truncate(time.Second)
	path := []ethcommon.Address(quote.RoutePath)

	calldata, err := blockchain.RouterABI.Pack("swapExactTokensForTokens",
		quote.AmountIn,
		quote.MinReceived,
		path,
		recipient,
		big.NewInt(deadline.Unix()),
	)
	if err != nil {
		return nil, fmt.Errorf("pack swap: %w", err)
	}

	plan = &domain.SwapPlan{
		ChainID:      chain.ID,
		Router:       chain.Router,
		Calldata:     calldata,
		AmountIn:     new(big.Int).Set(quote.AmountIn),
		MinAmountOut: new(big.Int).Set(quote.MinReceived),
		Path:         append(domain.Path(nil), quote.RoutePath...),
		Recipient:    recipient,
		Deadline:     deadline,
		ApproveToken: path[0],
	}

	allowance, err := b.allowance.Allowance(ctx, chain.ID, path[0], owner, chain.Router)
	if err != nil {
		return nil, fmt.Errorf("allowance: %w", err)
	}
	if allowance.Cmp(quote.AmountIn) < 0 {
		plan.NeedsApproval = true
		plan.ApproveCalldata, err = blockchain.ERC20ABI.Pack("approve", chain.Router, common.MaxUint256.ToBig())
		if err != nil {
			return nil, fmt.Errorf("pack approve: %w", err)
		}
	}

	b.logger.WithChain(chain.ID).Debug().
		Str("owner", owner.Hex()).
		Bool("needsApproval", plan.NeedsApproval).
		Time("deadline", deadline).
		Msg("swap plan built")

	return plan, nil
}
