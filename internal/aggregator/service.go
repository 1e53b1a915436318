package aggregator

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/hxuan190/evm-quote-engine/internal/adapters/persistence"
	"github.com/hxuan190/evm-quote-engine/internal/config"
	"github.com/hxuan190/evm-quote-engine/internal/domain"
	"github.com/hxuan190/evm-quote-engine/internal/registry"
	"github.com/hxuan190/evm-quote-engine/internal/services"
	"github.com/hxuan190/evm-quote-engine/internal/services/execution"
	"github.com/hxuan190/evm-quote-engine/internal/services/router"
	"github.com/hxuan190/evm-quote-engine/internal/services/session"
)

const AGGREGATOR_SERVICE = "aggregator-service"

var ErrHistoryDisabled = errors.New("quote history disabled")

// ChainReader covers every contract read the engine performs.
type ChainReader interface {
	router.ChainReader
	execution.AllowanceReader
}

type HistoryStore interface {
	SaveQuote(q *domain.QuoteResult) error
	RecentQuotes(chainID domain.ChainID, limit int) ([]persistence.StoredQuote, error)
}

type quoteService interface {
	Quote(ctx context.Context, req domain.QuoteRequest) (*domain.QuoteResult, error)
}

// Service is the single entry point used by the HTTP API and the CLI.
type Service struct {
	logger   *services.ServiceLogger
	registry *registry.Registry
	quoter   *router.Quoter
	cached   *router.CachedQuoter
	builder  *execution.Builder
	history  HistoryStore
	config   *config.QuoteConfig
}

var _ domain.SwapPort = (*Service)(nil)

// NewService wires the quote pipeline. history may be nil.
func NewService(reg *registry.Registry, reader ChainReader, cfg *config.QuoteConfig, history HistoryStore) *Service {
	if cfg == nil {
		cfg = &config.QuoteConfig{DefaultSlippageBps: int(domain.DefaultSlippageBps), Debounce: session.DefaultDebounce}
	}
	svc := &Service{
		registry: reg,
		quoter:   router.NewQuoter(reg, reader, router.WithDefaultSlippage(uint32(cfg.DefaultSlippageBps))),
		builder:  execution.NewBuilder(reg, reader),
		history:  history,
		config:   cfg,
	}
	if cfg.CacheTTL > 0 {
		svc.cached = router.NewCachedQuoter(svc.quoter, cfg.CacheTTL)
	}
	svc.logger = services.NewServiceLogger(svc)
	return svc
}

func (svc *Service) ID() string {
	return AGGREGATOR_SERVICE
}

func (svc *Service) Stop() {
	if svc.cached != nil {
		svc.cached.Stop()
	}
}

func (svc *Service) Registry() *registry.Registry {
	return svc.registry
}

func (svc *Service) HistoryEnabled() bool {
	return svc.history != nil
}

func (svc *Service) quoteSvc() quoteService {
	if svc.cached != nil {
		return svc.cached
	}
	return svc.quoter
}

// Quote prices req and records the result in history.
func (svc *Service) Quote(ctx context.Context, req domain.QuoteRequest) (*domain.QuoteResult, error) {
	quote, err := svc.quoteSvc().Quote(ctx, req)
	if err != nil {
		return nil, err
	}
	if svc.history != nil {
		if err := svc.history.SaveQuote(quote); err != nil {
			svc.logger.Warn().Err(err).Msg("failed to record quote")
		}
	}
	return quote, nil
}

// NewSession returns a debounced quote session. Sessions bypass the response cache so a
// refetch always reads fresh reserves.
func (svc *Service) NewSession(opts ...session.Option) *session.Session {
	opts = append([]session.Option{session.WithDebounce(svc.config.Debounce)}, opts...)
	return session.New(svc.quoter, opts...)
}

func (svc *Service) GetTokens(ctx context.Context, chainID domain.ChainID) ([]domain.TokenSummary, error) {
	if _, ok := svc.registry.GetChainConfig(chainID); !ok {
		return nil, fmt.Errorf("chain %d: %w", chainID, domain.ErrChainNotSupported)
	}
	return lo.Map(svc.registry.GetAllTokens(chainID), func(t domain.TokenConfig, _ int) domain.TokenSummary {
		return domain.TokenSummary{
			Address:  t.Address.Hex(),
			Symbol:   t.Symbol,
			Decimals: t.Decimals,
		}
	}), nil
}

func (svc *Service) GetQuote(ctx context.Context, input domain.SwapQuoteInput) (*domain.SwapQuote, error) {
	quote, err := svc.Quote(ctx, domain.QuoteRequest{
		ChainID:  input.ChainID,
		TokenIn:  input.TokenIn,
		TokenOut: input.TokenOut,
		AmountIn: input.AmountIn,
	})
	if err != nil {
		return nil, err
	}
	return &domain.SwapQuote{
		AmountOut:      quote.AmountOutFormatted,
		PriceImpactBps: quote.PriceImpactBps,
		FeeBps:         quote.FeeBps,
		Route:          quote.Route,
	}, nil
}

// BuildSwap quotes req and encodes the swap. It always quotes fresh so minOut reflects
// current reserves.
func (svc *Service) BuildSwap(ctx context.Context, req domain.SwapRequest) (*domain.QuoteResult, *domain.SwapPlan, error) {
	owner, ok := domain.ParseAddress(req.Owner)
	if !ok {
		return nil, nil, fmt.Errorf("owner %q: %w", req.Owner, domain.ErrInvalidAddress)
	}
	recipient := owner
	if req.Recipient != "" {
		if recipient, ok = domain.ParseAddress(req.Recipient); !ok {
			return nil, nil, fmt.Errorf("recipient %q: %w", req.Recipient, domain.ErrInvalidAddress)
		}
	}

	quote, err := svc.quoter.Quote(ctx, req.QuoteRequest())
	if err != nil {
		return nil, nil, err
	}
	plan, err := svc.builder.Build(ctx, quote, owner, recipient)
	if err != nil {
		return nil, nil, err
	}
	return quote, plan, nil
}

func (svc *Service) RecentQuotes(chainID domain.ChainID, limit int) ([]persistence.StoredQuote, error) {
	if svc.history == nil {
		return nil, ErrHistoryDisabled
	}
	if _, ok := svc.registry.GetChainConfig(chainID); !ok {
		return nil, fmt.Errorf("chain %d: %w", chainID, domain.ErrChainNotSupported)
	}
	return svc.history.RecentQuotes(chainID, limit)
}
