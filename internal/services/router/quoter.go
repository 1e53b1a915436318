package router

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hxuan190/evm-quote-engine/internal/domain"
	"github.com/hxuan190/evm-quote-engine/internal/metrics"
	"github.com/hxuan190/evm-quote-engine/internal/services"
)

const QUOTER_SERVICE = "quoter-svc"

const tracerName = "github.com/hxuan190/evm-quote-engine/internal/services/router"

// Quoter validates a request against the registry, discovers the best path and computes
// the full quote for it.
type Quoter struct {
	registry        Registry
	discovery       *Discovery
	calculator      *Calculator
	defaultSlippage uint32
	tracer          trace.Tracer
	logger          *services.ServiceLogger
}

type QuoterOption func(*Quoter)

// WithDefaultSlippage sets the slippage used when a request carries none.
func WithDefaultSlippage(bps uint32) QuoterOption {
	return func(q *Quoter) {
		q.defaultSlippage = bps
	}
}

func WithClock(now func() time.Time) QuoterOption {
	return func(q *Quoter) {
		q.calculator.now = now
	}
}

func NewQuoter(registry Registry, reader ChainReader, opts ...QuoterOption) *Quoter {
	q := &Quoter{
		registry:        registry,
		discovery:       NewDiscovery(reader),
		calculator:      NewCalculator(reader),
		defaultSlippage: domain.DefaultSlippageBps,
		tracer:          otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.logger = services.NewServiceLogger(q)
	return q
}

func (q *Quoter) ID() string {
	return QUOTER_SERVICE
}

// Quote prices req. Validation runs before any chain read: unsupported chain, unknown
// tokens, then the amount, then slippage.
func (q *Quoter) Quote(ctx context.Context, req domain.QuoteRequest) (result *domain.QuoteResult, err error) {
	start := time.Now()
	ctx, span := q.tracer.Start(ctx, "router.Quote", trace.WithAttributes(
		attribute.Int64("chain.id", int64(req.ChainID)),
		attribute.String("token.in", req.TokenIn),
		attribute.String("token.out", req.TokenOut),
		attribute.String("amount.in", req.AmountIn),
	))
	defer func() {
		kind := "none"
		status := "ok"
		if result != nil {
			kind = "multihop"
			if result.RoutePath.IsDirect() {
				kind = "direct"
			}
			span.SetAttributes(
				attribute.String("route", result.Route),
				attribute.Int64("price_impact_bps", result.PriceImpactBps),
			)
		}
		if err != nil {
			status = errorStatus(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		metrics.QuoteRequests.WithLabelValues(kind, status).Inc()
		metrics.QuoteDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		span.End()
	}()

	chain, ok := q.registry.GetChainConfig(req.ChainID)
	if !ok {
		return nil, fmt.Errorf("chain %d: %w", req.ChainID, domain.ErrChainNotSupported)
	}

	tokenIn, ok := q.registry.GetTokenConfig(req.ChainID, req.TokenIn)
	if !ok {
		return nil, fmt.Errorf("tokenIn %s: %w", req.TokenIn, domain.ErrTokenNotFound)
	}
	tokenOut, ok := q.registry.GetTokenConfig(req.ChainID, req.TokenOut)
	if !ok {
		return nil, fmt.Errorf("tokenOut %s: %w", req.TokenOut, domain.ErrTokenNotFound)
	}
	if tokenIn.Address == tokenOut.Address {
		return nil, fmt.Errorf("%s: %w", tokenIn.Symbol, domain.ErrIdenticalTokens)
	}

	amountIn, err := ParseUnits(req.AmountIn, tokenIn.Decimals)
	if err != nil {
		return nil, err
	}

	slippage := q.defaultSlippage
	if req.SlippageBps != nil {
		slippage = *req.SlippageBps
	}
	if slippage > uint32(domain.BpsDenominator) {
		return nil, fmt.Errorf("slippage %d bps: %w", slippage, domain.ErrInvalidSlippage)
	}

	discoverCtx, discoverSpan := q.tracer.Start(ctx, "router.FindBestRoute")
	cand, err := q.discovery.FindBestRoute(discoverCtx, chain, tokenIn, tokenOut, amountIn)
	if err != nil {
		discoverSpan.RecordError(err)
		discoverSpan.End()
		return nil, err
	}
	discoverSpan.SetAttributes(attribute.Int("hops", cand.Path.Hops()), attribute.String("via", cand.Via))
	discoverSpan.End()

	calcCtx, calcSpan := q.tracer.Start(ctx, "router.Calculate")
	result, err = q.calculator.Calculate(calcCtx, chain, tokenIn, tokenOut, amountIn, cand, slippage)
	if err != nil {
		calcSpan.RecordError(err)
		calcSpan.End()
		return nil, err
	}
	calcSpan.End()

	q.logger.WithChain(req.ChainID).Debug().
		Str("route", result.Route).
		Str("amountIn", req.AmountIn).
		Str("amountOut", result.AmountOutFormatted).
		Int64("impactBps", result.PriceImpactBps).
		Msg("quote computed")

	return result, nil
}

func errorStatus(err error) string {
	switch {
	case errors.Is(err, domain.ErrChainNotSupported):
		return "chain_not_supported"
	case errors.Is(err, domain.ErrTokenNotFound):
		return "token_not_found"
	case errors.Is(err, domain.ErrIdenticalTokens):
		return "identical_tokens"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrInvalidSlippage):
		return "invalid_slippage"
	case errors.Is(err, domain.ErrNoRouteFound):
		return "no_route"
	case errors.Is(err, domain.ErrReserveZero):
		return "reserve_zero"
	default:
		return "error"
	}
}
