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

type Calculator struct {
	reader ChainReader
	logger zerolog.Logger
	now    func() time.Time
}

func NewCalculator(reader ChainReader) *Calculator {
	return &Calculator{
		reader: reader,
		logger: log.With().Str("component", "quote-calculator").Logger(),
		now:    time.Now,
	}
}

type hopRead struct {
	reserves    *domain.Reserves
	reservesErr error
	token0      common.Address
	token0Err   error
}

// Calculate builds the quote for a discovered candidate. Reserve and token0 failures on
// the path are fatal; an oracle failure only leaves FeeUSD empty.
func (c *Calculator) Calculate(ctx context.Context, chain *domain.ChainConfig, tokenIn, tokenOut domain.TokenConfig, amountIn *big.Int, cand *Candidate, slippageBps uint32) (*domain.QuoteResult, error) {
	start := time.Now()
	defer func() {
		metrics.CalculateDuration.Observe(time.Since(start).Seconds())
	}()

	path := cand.Path
	hops := path.Hops()
	if hops == 0 {
		return nil, fmt.Errorf("path has no hops: %w", domain.ErrNoRouteFound)
	}

	pairs := make([]common.Address, hops)
	for i := 0; i < hops; i++ {
		pair, ok := chain.PairAddress(path[i], path[i+1])
		if !ok {
			return nil, fmt.Errorf("no pair for hop %d: %w", i, domain.ErrNoRouteFound)
		}
		pairs[i] = pair
	}

	reads := make([]hopRead, hops)
	var price *domain.OraclePrice
	var priceErr error
	var wg sync.WaitGroup

	for i, pair := range pairs {
		wg.Add(2)
		go func(idx int, p common.Address) {
			defer wg.Done()
			reads[idx].reserves, reads[idx].reservesErr = c.reader.GetReserves(ctx, chain.ID, p)
		}(i, pair)
		go func(idx int, p common.Address) {
			defer wg.Done()
			reads[idx].token0, reads[idx].token0Err = c.reader.Token0(ctx, chain.ID, p)
		}(i, pair)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		price, priceErr = c.reader.GetUSDPrice(ctx, chain.ID, chain.Oracle, tokenIn.Address)
	}()

	wg.Wait()

	hopStates := make([]domain.HopState, hops)
	midE18 := new(big.Int).Set(E18)
	for i := 0; i < hops; i++ {
		read := reads[i]
		if read.reservesErr != nil {
			return nil, fmt.Errorf("hop %d getReserves: %w", i, read.reservesErr)
		}
		if read.token0Err != nil {
			return nil, fmt.Errorf("hop %d token0: %w", i, read.token0Err)
		}

		hop, err := orientHop(chain, pairs[i], path[i], path[i+1], read)
		if err != nil {
			return nil, fmt.Errorf("hop %d: %w", i, err)
		}
		hopStates[i] = hop
		midE18 = ChainMidPrice(midE18, hop.MidPriceE18)
	}

	amountOut := cand.AmountOut
	execE18 := PriceE18(amountOut, amountIn, tokenIn.Decimals, tokenOut.Decimals)
	impact := ImpactBps(execE18, midE18)

	feeBps := domain.FeeBpsPerHop * int64(hops)
	feeAmount := MulBps(amountIn, uint64(feeBps))

	first := hopStates[0]
	result := &domain.QuoteResult{
		ChainID:            chain.ID,
		TokenIn:            tokenIn,
		TokenOut:           tokenOut,
		AmountIn:           new(big.Int).Set(amountIn),
		AmountOut:          new(big.Int).Set(amountOut),
		AmountOutFormatted: FormatUnits(amountOut, tokenOut.Decimals),
		PriceImpactBps:     impact,
		MidPriceE18:        midE18,
		ExecPriceE18:       execE18,
		FeeBps:             feeBps,
		FeeAmount:          feeAmount,
		FeeUSD:             c.feeUSD(chain.ID, tokenIn, feeAmount, price, priceErr),
		MaxReceived:        new(big.Int).Set(amountOut),
		MinReceived:        MinReceived(amountOut, slippageBps),
		SlippageBps:        slippageBps,
		Route:              domain.RouteLabel(path, cand.Via),
		RoutePath:          append(domain.Path(nil), path...),
		Pair: domain.PairSnapshot{
			Address:  first.Pair,
			Reserve0: first.Reserves.Reserve0,
			Reserve1: first.Reserves.Reserve1,
			Token0:   first.Token0,
			Token1:   otherToken(first),
		},
		Severity: string(GetPriceImpactSeverity(impact)),
		Warning:  GetPriceImpactWarning(impact),
		QuotedAt: c.now().UTC(),
	}

	metrics.PriceImpact.WithLabelValues(result.Severity).Observe(float64(absBps(impact)))
	return result, nil
}

func orientHop(chain *domain.ChainConfig, pair, tokenIn, tokenOut common.Address, read hopRead) (domain.HopState, error) {
	in, ok := chain.TokenByAddress(tokenIn)
	if !ok {
		return domain.HopState{}, fmt.Errorf("%s: %w", tokenIn.Hex(), domain.ErrTokenNotFound)
	}
	out, ok := chain.TokenByAddress(tokenOut)
	if !ok {
		return domain.HopState{}, fmt.Errorf("%s: %w", tokenOut.Hex(), domain.ErrTokenNotFound)
	}

	reserveIn, reserveOut := read.reserves.Orient(read.token0, tokenIn)
	if reserveIn == nil || reserveIn.Sign() <= 0 || reserveOut == nil || reserveOut.Sign() <= 0 {
		return domain.HopState{}, fmt.Errorf("pair %s: %w", pair.Hex(), domain.ErrReserveZero)
	}

	return domain.HopState{
		Pair:        pair,
		TokenIn:     tokenIn,
		TokenOut:    tokenOut,
		Token0:      read.token0,
		Reserves:    *read.reserves,
		ReserveIn:   reserveIn,
		ReserveOut:  reserveOut,
		MidPriceE18: PriceE18(reserveOut, reserveIn, in.Decimals, out.Decimals),
	}, nil
}

func otherToken(hop domain.HopState) common.Address {
	if hop.Token0 == hop.TokenIn {
		return hop.TokenOut
	}
	return hop.TokenIn
}

// feeUSD converts feeAmount to an 18-decimal USD string, or "" when no usable price exists.
func (c *Calculator) feeUSD(chainID domain.ChainID, tokenIn domain.TokenConfig, feeAmount *big.Int, price *domain.OraclePrice, priceErr error) string {
	if priceErr != nil || price == nil || price.PriceE18 == nil || price.PriceE18.Sign() <= 0 {
		metrics.OracleFailures.Inc()
		c.logger.Warn().Err(priceErr).
			Uint64("chainId", chainID).
			Str("token", tokenIn.Symbol).
			Msg("oracle price unavailable, omitting USD fee")
		return ""
	}

	usdE18 := new(big.Int).Mul(feeAmount, price.PriceE18)
	usdE18.Quo(usdE18, Pow10(tokenIn.Decimals))
	return FormatUnits(usdE18, 18)
}
