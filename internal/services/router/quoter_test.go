package router

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hxuan190/evm-quote-engine/internal/domain"
	"github.com/hxuan190/evm-quote-engine/internal/registry"
)

const sepolia = registry.SepoliaChainID

func e(n int64, decimals int) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
}

func token(t *testing.T, reg *registry.Registry, chainID domain.ChainID, symbol string) domain.TokenConfig {
	t.Helper()
	tok, ok := reg.TokenBySymbol(chainID, symbol)
	if !ok {
		t.Fatalf("token %s missing on chain %d", symbol, chainID)
	}
	return tok
}

func slip(v uint32) *uint32 { return &v }

func newTestQuoter(t *testing.T, chainID domain.ChainID) (*Quoter, *fakeReader, *registry.Registry) {
	t.Helper()
	reg := registry.Default()
	chain, _ := reg.GetChainConfig(chainID)
	reader := newFakeReader(chain)
	return NewQuoter(reg, reader), reader, reg
}

func TestQuoteDirectSepoliaScenario(t *testing.T) {
	q, reader, reg := newTestQuoter(t, sepolia)
	vETH := token(t, reg, sepolia, "vETH")
	vUSDT := token(t, reg, sepolia, "vUSDT")
	reader.setPool(vETH.Address, vUSDT.Address, e(100, 18), e(200000, 6))

	res, err := q.Quote(context.Background(), domain.QuoteRequest{
		ChainID:  sepolia,
		TokenIn:  vETH.Address.Hex(),
		TokenOut: vUSDT.Address.Hex(),
		AmountIn: "1",
	})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}

	wantOut := big.NewInt(1974316068)
	if res.AmountOut.Cmp(wantOut) != 0 {
		t.Errorf("amountOut = %s, want %s", res.AmountOut, wantOut)
	}
	if res.AmountOut.Cmp(e(2000, 6)) >= 0 {
		t.Errorf("amountOut %s should be below 2000 vUSDT", res.AmountOut)
	}
	if res.MidPriceE18.Cmp(e(2000, 18)) != 0 {
		t.Errorf("mid = %s, want 2000e18", res.MidPriceE18)
	}
	if res.PriceImpactBps != -128 {
		t.Errorf("impact = %d, want -128", res.PriceImpactBps)
	}
	if res.FeeBps != 30 {
		t.Errorf("feeBps = %d, want 30", res.FeeBps)
	}
	if res.FeeAmount.Cmp(e(3, 15)) != 0 {
		t.Errorf("feeAmount = %s, want 3e15", res.FeeAmount)
	}
	if res.FeeUSD != "6" {
		t.Errorf("feeUsd = %q, want 6", res.FeeUSD)
	}
	wantMin := new(big.Int).Quo(new(big.Int).Mul(wantOut, big.NewInt(9950)), big.NewInt(10000))
	if res.MinReceived.Cmp(wantMin) != 0 {
		t.Errorf("minReceived = %s, want %s", res.MinReceived, wantMin)
	}
	if res.MaxReceived.Cmp(res.AmountOut) != 0 {
		t.Errorf("maxReceived should equal amountOut")
	}
	if res.SlippageBps != domain.DefaultSlippageBps {
		t.Errorf("slippage = %d, want default", res.SlippageBps)
	}
	if res.Route != domain.RouteDirect || !res.RoutePath.IsDirect() {
		t.Errorf("route = %s %v, want Direct", res.Route, res.RoutePath)
	}
	if res.AmountOutFormatted != "1974.316068" {
		t.Errorf("formatted = %s", res.AmountOutFormatted)
	}
	if res.Severity != string(SeverityLow) {
		t.Errorf("severity = %s, want low", res.Severity)
	}

	pair, _ := reg.GetPairAddress(sepolia, vETH.Address.Hex(), vUSDT.Address.Hex())
	if res.Pair.Address != pair {
		t.Errorf("pair snapshot address = %s, want %s", res.Pair.Address.Hex(), pair.Hex())
	}
	if res.Pair.Token0 == res.Pair.Token1 {
		t.Errorf("pair snapshot tokens must differ")
	}
}

func TestQuoteFallsBackToBestIntermediary(t *testing.T) {
	const scroll = registry.ScrollSepoliaChainID
	q, reader, reg := newTestQuoter(t, scroll)
	vSCR := token(t, reg, scroll, "vSCR")
	vDAI := token(t, reg, scroll, "vDAI")
	vETH := token(t, reg, scroll, "vETH")
	vUSDT := token(t, reg, scroll, "vUSDT")

	reader.setPool(vSCR.Address, vETH.Address, e(1000, 18), e(10, 18))
	reader.setPool(vETH.Address, vDAI.Address, e(10, 18), e(20000, 18))
	reader.setPool(vSCR.Address, vUSDT.Address, e(1000, 18), e(1000, 6))
	reader.setPool(vUSDT.Address, vDAI.Address, e(1000, 6), e(1000, 18))
	// vUSDC legs have no reserves, so that candidate reverts and is excluded.

	res, err := q.Quote(context.Background(), domain.QuoteRequest{
		ChainID:  scroll,
		TokenIn:  vSCR.Address.Hex(),
		TokenOut: vDAI.Address.Hex(),
		AmountIn: "10",
	})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if res.Route != "via vETH" {
		t.Fatalf("route = %q, want via vETH", res.Route)
	}
	if len(res.RoutePath) != 3 || res.RoutePath[1] != vETH.Address {
		t.Fatalf("routePath = %v", res.RoutePath.Strings())
	}
	if res.FeeBps != 60 {
		t.Errorf("feeBps = %d, want 60", res.FeeBps)
	}
	if res.PriceImpactBps > 0 {
		t.Errorf("impact = %d, want non-positive", res.PriceImpactBps)
	}

	// AmountOut must match the path it reports.
	amounts, _ := reader.GetAmountsOut(context.Background(), scroll, common.Address{}, res.AmountIn, res.RoutePath)
	if amounts[len(amounts)-1].Cmp(res.AmountOut) != 0 {
		t.Errorf("amountOut %s does not match routePath output %s", res.AmountOut, amounts[len(amounts)-1])
	}
}

func TestQuoteDirectFailureFallsThrough(t *testing.T) {
	q, reader, reg := newTestQuoter(t, sepolia)
	vETH := token(t, reg, sepolia, "vETH")
	vUSDT := token(t, reg, sepolia, "vUSDT")
	vUSDC := token(t, reg, sepolia, "vUSDC")

	reader.setPool(vETH.Address, vUSDC.Address, e(100, 18), e(200000, 6))
	reader.setPool(vUSDC.Address, vUSDT.Address, e(1000000, 6), e(1000000, 6))
	reader.failPath([]common.Address{vETH.Address, vUSDT.Address})

	res, err := q.Quote(context.Background(), domain.QuoteRequest{
		ChainID:  sepolia,
		TokenIn:  vETH.Address.Hex(),
		TokenOut: vUSDT.Address.Hex(),
		AmountIn: "1",
	})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if res.Route != "via vUSDC" {
		t.Errorf("route = %q, want via vUSDC", res.Route)
	}
}

func TestDiscoveryTieKeepsWhitelistOrder(t *testing.T) {
	const scroll = registry.ScrollSepoliaChainID
	reg := registry.Default()
	chain, _ := reg.GetChainConfig(scroll)
	reader := newFakeReader(chain)
	vSCR := token(t, reg, scroll, "vSCR")
	vDAI := token(t, reg, scroll, "vDAI")
	vETH := token(t, reg, scroll, "vETH")
	vUSDT := token(t, reg, scroll, "vUSDT")
	vUSDC := token(t, reg, scroll, "vUSDC")

	same := big.NewInt(5000)
	reader.setOutput([]common.Address{vSCR.Address, vUSDT.Address, vDAI.Address}, same)
	reader.setOutput([]common.Address{vSCR.Address, vETH.Address, vDAI.Address}, same)
	reader.setOutput([]common.Address{vSCR.Address, vUSDC.Address, vDAI.Address}, big.NewInt(4999))

	d := NewDiscovery(reader)
	for i := 0; i < 20; i++ {
		cand, err := d.FindBestRoute(context.Background(), chain, vSCR, vDAI, big.NewInt(100))
		if err != nil {
			t.Fatalf("FindBestRoute: %v", err)
		}
		if cand.Via != "vETH" {
			t.Fatalf("iteration %d: via = %s, want vETH", i, cand.Via)
		}
	}

	reader.setOutput([]common.Address{vSCR.Address, vUSDC.Address, vDAI.Address}, big.NewInt(5001))
	cand, err := d.FindBestRoute(context.Background(), chain, vSCR, vDAI, big.NewInt(100))
	if err != nil {
		t.Fatalf("FindBestRoute: %v", err)
	}
	if cand.Via != "vUSDC" {
		t.Errorf("strictly larger output should win, got via %s", cand.Via)
	}
}

func TestDiscoverySkipsUnusableIntermediaries(t *testing.T) {
	reg := registry.Default()
	chain, _ := reg.GetChainConfig(registry.ScrollSepoliaChainID)
	vSCR := token(t, reg, chain.ID, "vSCR")
	vDAI := token(t, reg, chain.ID, "vDAI")

	paths := intermediatePaths(chain, vSCR.Address, vDAI.Address)
	var via []string
	for _, p := range paths {
		via = append(via, p.Via)
	}
	// vDAI equals tokenOut and vBTC has no vSCR pool.
	want := []string{"vETH", "vUSDT", "vUSDC"}
	if len(via) != len(want) {
		t.Fatalf("via = %v, want %v", via, want)
	}
	for i := range want {
		if via[i] != want[i] {
			t.Fatalf("via = %v, want %v", via, want)
		}
	}
}

func TestQuoteNoRoute(t *testing.T) {
	q, _, reg := newTestQuoter(t, sepolia)
	vETH := token(t, reg, sepolia, "vETH")
	vSCR := token(t, reg, sepolia, "vSCR")

	_, err := q.Quote(context.Background(), domain.QuoteRequest{
		ChainID:  sepolia,
		TokenIn:  vETH.Address.Hex(),
		TokenOut: vSCR.Address.Hex(),
		AmountIn: "1",
	})
	if !errors.Is(err, domain.ErrNoRouteFound) {
		t.Fatalf("err = %v, want ErrNoRouteFound", err)
	}
}

func TestQuoteReserveZero(t *testing.T) {
	q, reader, reg := newTestQuoter(t, sepolia)
	vETH := token(t, reg, sepolia, "vETH")
	vUSDT := token(t, reg, sepolia, "vUSDT")
	reader.setPool(vETH.Address, vUSDT.Address, big.NewInt(0), e(200000, 6))
	reader.setOutput([]common.Address{vETH.Address, vUSDT.Address}, big.NewInt(1))

	_, err := q.Quote(context.Background(), domain.QuoteRequest{
		ChainID:  sepolia,
		TokenIn:  vETH.Address.Hex(),
		TokenOut: vUSDT.Address.Hex(),
		AmountIn: "1",
	})
	if !errors.Is(err, domain.ErrReserveZero) {
		t.Fatalf("err = %v, want ErrReserveZero", err)
	}
}

func TestQuoteOracleFailureIsSoft(t *testing.T) {
	q, reader, reg := newTestQuoter(t, sepolia)
	vETH := token(t, reg, sepolia, "vETH")
	vUSDT := token(t, reg, sepolia, "vUSDT")
	reader.setPool(vETH.Address, vUSDT.Address, e(100, 18), e(200000, 6))
	reader.priceErr = errReverted

	res, err := q.Quote(context.Background(), domain.QuoteRequest{
		ChainID:  sepolia,
		TokenIn:  vETH.Address.Hex(),
		TokenOut: vUSDT.Address.Hex(),
		AmountIn: "1",
	})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if res.FeeUSD != "" {
		t.Errorf("feeUsd = %q, want empty", res.FeeUSD)
	}

	reader.priceErr = nil
	reader.price = big.NewInt(0)
	res, err = q.Quote(context.Background(), domain.QuoteRequest{
		ChainID:  sepolia,
		TokenIn:  vETH.Address.Hex(),
		TokenOut: vUSDT.Address.Hex(),
		AmountIn: "1",
	})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if res.FeeUSD != "" {
		t.Errorf("feeUsd = %q, want empty for zero price", res.FeeUSD)
	}
}

func TestQuoteValidationSkipsChainReads(t *testing.T) {
	q, reader, reg := newTestQuoter(t, sepolia)
	vETH := token(t, reg, sepolia, "vETH").Address.Hex()
	vUSDT := token(t, reg, sepolia, "vUSDT").Address.Hex()

	tests := []struct {
		name string
		req  domain.QuoteRequest
		want error
	}{
		{"unsupported chain", domain.QuoteRequest{ChainID: 1, TokenIn: vETH, TokenOut: vUSDT, AmountIn: "1"}, domain.ErrChainNotSupported},
		{"unknown tokenIn", domain.QuoteRequest{ChainID: sepolia, TokenIn: "0x0000000000000000000000000000000000000001", TokenOut: vUSDT, AmountIn: "1"}, domain.ErrTokenNotFound},
		{"unknown tokenOut", domain.QuoteRequest{ChainID: sepolia, TokenIn: vETH, TokenOut: "garbage", AmountIn: "1"}, domain.ErrTokenNotFound},
		{"same token", domain.QuoteRequest{ChainID: sepolia, TokenIn: vETH, TokenOut: strings.ToLower(vETH), AmountIn: "1"}, domain.ErrIdenticalTokens},
		{"zero amount", domain.QuoteRequest{ChainID: sepolia, TokenIn: vETH, TokenOut: vUSDT, AmountIn: "0"}, domain.ErrInvalidAmount},
		{"empty amount", domain.QuoteRequest{ChainID: sepolia, TokenIn: vETH, TokenOut: vUSDT, AmountIn: ""}, domain.ErrInvalidAmount},
		{"negative amount", domain.QuoteRequest{ChainID: sepolia, TokenIn: vETH, TokenOut: vUSDT, AmountIn: "-1"}, domain.ErrInvalidAmount},
		{"unparsable amount", domain.QuoteRequest{ChainID: sepolia, TokenIn: vETH, TokenOut: vUSDT, AmountIn: "1.2.3"}, domain.ErrInvalidAmount},
		{"slippage too high", domain.QuoteRequest{ChainID: sepolia, TokenIn: vETH, TokenOut: vUSDT, AmountIn: "1", SlippageBps: slip(10001)}, domain.ErrInvalidSlippage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := q.Quote(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if n := reader.totalCalls.Load(); n != 0 {
		t.Errorf("reader calls = %d, want 0", n)
	}
}

func TestQuoteMinReceivedBySlippage(t *testing.T) {
	q, reader, reg := newTestQuoter(t, sepolia)
	vETH := token(t, reg, sepolia, "vETH")
	vUSDT := token(t, reg, sepolia, "vUSDT")
	reader.setPool(vETH.Address, vUSDT.Address, e(100, 18), e(200000, 6))

	var prev *big.Int
	for _, bps := range []uint32{0, 1, 50, 100, 500, 10000} {
		res, err := q.Quote(context.Background(), domain.QuoteRequest{
			ChainID:     sepolia,
			TokenIn:     vETH.Address.Hex(),
			TokenOut:    vUSDT.Address.Hex(),
			AmountIn:    "1",
			SlippageBps: slip(bps),
		})
		if err != nil {
			t.Fatalf("slippage %d: %v", bps, err)
		}
		if bps == 0 && res.MinReceived.Cmp(res.AmountOut) != 0 {
			t.Errorf("minReceived at 0 bps = %s, want amountOut %s", res.MinReceived, res.AmountOut)
		}
		if prev != nil && res.MinReceived.Cmp(prev) > 0 {
			t.Errorf("minReceived increased at %d bps", bps)
		}
		prev = res.MinReceived
	}
	if prev.Sign() != 0 {
		t.Errorf("minReceived at 10000 bps = %s, want 0", prev)
	}
}

func TestPriceImpactNonPositiveForConstantProduct(t *testing.T) {
	reserves := []struct{ in, out *big.Int }{
		{e(100, 18), e(200000, 6)},
		{e(1, 18), e(1, 18)},
		{e(5000, 18), e(3, 8)},
		{e(7, 6), e(9000, 18)},
	}
	sizes := []*big.Int{big.NewInt(1), big.NewInt(1000), e(1, 15), e(1, 18), e(50, 18)}

	for _, r := range reserves {
		for _, amountIn := range sizes {
			amountOut := getAmountOut(amountIn, r.in, r.out)
			if amountOut.Sign() == 0 {
				continue
			}
			mid := PriceE18(r.out, r.in, 18, 6)
			exec := PriceE18(amountOut, amountIn, 18, 6)
			if exec.Cmp(mid) > 0 {
				t.Errorf("reserves %s/%s amount %s: exec %s > mid %s", r.in, r.out, amountIn, exec, mid)
			}
			if impact := ImpactBps(exec, mid); impact > 0 {
				t.Errorf("reserves %s/%s amount %s: impact %d > 0", r.in, r.out, amountIn, impact)
			}
		}
	}
}

func TestCalculatorRejectsZeroReserve(t *testing.T) {
	reg := registry.Default()
	chain, _ := reg.GetChainConfig(sepolia)
	reader := newFakeReader(chain)
	vETH := token(t, reg, sepolia, "vETH")
	vDAI := token(t, reg, sepolia, "vDAI")
	reader.setPool(vETH.Address, vDAI.Address, e(10, 18), big.NewInt(0))

	calc := NewCalculator(reader)
	_, err := calc.Calculate(context.Background(), chain, vETH, vDAI, e(1, 18), &Candidate{
		Path:      domain.Path{vETH.Address, vDAI.Address},
		AmountOut: big.NewInt(1),
	}, 50)
	if !errors.Is(err, domain.ErrReserveZero) {
		t.Fatalf("err = %v, want ErrReserveZero", err)
	}
}
