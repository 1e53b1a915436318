package router

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/evm-quote-engine/internal/domain"
	"github.com/hxuan190/evm-quote-engine/internal/metrics"
)

// Candidate is a quoted path. Via is the intermediary symbol, empty for a direct path.
type Candidate struct {
	Path      domain.Path
	AmountOut *big.Int
	Via       string
}

type Discovery struct {
	reader ChainReader
	logger zerolog.Logger
}

func NewDiscovery(reader ChainReader) *Discovery {
	return &Discovery{
		reader: reader,
		logger: log.With().Str("component", "route-discovery").Logger(),
	}
}

// FindBestRoute quotes the direct pair first and returns it as soon as it yields a positive
// output. Otherwise every whitelisted intermediary with pools on both legs is quoted in
// parallel and the largest output wins; ties keep the earlier whitelist entry.
func (d *Discovery) FindBestRoute(ctx context.Context, chain *domain.ChainConfig, tokenIn, tokenOut domain.TokenConfig, amountIn *big.Int) (*Candidate, error) {
	if _, ok := chain.PairAddress(tokenIn.Address, tokenOut.Address); ok {
		direct, err := d.getDirectQuote(ctx, chain, tokenIn.Address, tokenOut.Address, amountIn)
		if err == nil {
			return direct, nil
		}
		d.logger.Debug().Err(err).
			Str("tokenIn", tokenIn.Symbol).
			Str("tokenOut", tokenOut.Symbol).
			Msg("direct quote unavailable, trying multi-hop")
	}

	return d.getMultiHopQuote(ctx, chain, tokenIn.Address, tokenOut.Address, amountIn)
}

func (d *Discovery) getDirectQuote(ctx context.Context, chain *domain.ChainConfig, tokenIn, tokenOut common.Address, amountIn *big.Int) (*Candidate, error) {
	start := time.Now()
	defer func() {
		metrics.DirectQuoteDuration.Observe(time.Since(start).Seconds())
	}()

	path := domain.Path{tokenIn, tokenOut}
	amountOut, err := d.quotePath(ctx, chain, path, amountIn)
	if err != nil {
		return nil, err
	}
	return &Candidate{Path: path, AmountOut: amountOut}, nil
}

// intermediatePaths lists [in, base, out] for each usable whitelist symbol, in whitelist order.
func intermediatePaths(chain *domain.ChainConfig, tokenIn, tokenOut common.Address) []Candidate {
	paths := make([]Candidate, 0, len(chain.Intermediaries))
	for _, symbol := range chain.Intermediaries {
		base, ok := chain.Tokens[symbol]
		if !ok {
			continue
		}
		if base.Address == tokenIn || base.Address == tokenOut {
			continue
		}
		if _, ok := chain.PairAddress(tokenIn, base.Address); !ok {
			continue
		}
		if _, ok := chain.PairAddress(base.Address, tokenOut); !ok {
			continue
		}
		paths = append(paths, Candidate{
			Path: domain.Path{tokenIn, base.Address, tokenOut},
			Via:  symbol,
		})
	}
	return paths
}

type candidateResult struct {
	amountOut *big.Int
	err       error
}

func (d *Discovery) getMultiHopQuote(ctx context.Context, chain *domain.ChainConfig, tokenIn, tokenOut common.Address, amountIn *big.Int) (*Candidate, error) {
	start := time.Now()
	defer func() {
		metrics.MultiHopDuration.Observe(time.Since(start).Seconds())
	}()

	candidates := intermediatePaths(chain, tokenIn, tokenOut)
	metrics.CandidatesEvaluated.Observe(float64(len(candidates)))
	if len(candidates) == 0 {
		return nil, domain.ErrNoRouteFound
	}

	results := make([]candidateResult, len(candidates))
	var wg sync.WaitGroup

	for i := range candidates {
		wg.Add(1)
		go func(idx int, path domain.Path) {
			defer wg.Done()
			out, err := d.quotePath(ctx, chain, path, amountIn)
			results[idx] = candidateResult{amountOut: out, err: err}
		}(i, candidates[i].Path)
	}

	wg.Wait()

	best := -1
	for i, res := range results {
		if res.err != nil {
			metrics.CandidateFailures.Inc()
			d.logger.Debug().Err(res.err).Str("via", candidates[i].Via).Msg("candidate excluded")
			continue
		}
		if best < 0 || res.amountOut.Cmp(results[best].amountOut) > 0 {
			best = i
		}
	}

	if best < 0 {
		return nil, domain.ErrNoRouteFound
	}

	winner := candidates[best]
	winner.AmountOut = results[best].amountOut
	return &winner, nil
}

// quotePath asks the router for the path output and rejects empty or non-positive results.
func (d *Discovery) quotePath(ctx context.Context, chain *domain.ChainConfig, path domain.Path, amountIn *big.Int) (*big.Int, error) {
	amounts, err := d.reader.GetAmountsOut(ctx, chain.ID, chain.Router, amountIn, path)
	if err != nil {
		return nil, err
	}
	if len(amounts) == 0 {
		return nil, fmt.Errorf("getAmountsOut returned no amounts")
	}
	out := amounts[len(amounts)-1]
	if out == nil || out.Sign() <= 0 {
		return nil, fmt.Errorf("getAmountsOut returned non-positive output")
	}
	return out, nil
}
