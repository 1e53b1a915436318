package http

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/hxuan190/evm-quote-engine/internal/aggregator"
	"github.com/hxuan190/evm-quote-engine/internal/domain"
	"github.com/hxuan190/evm-quote-engine/internal/http/httputil"
	"github.com/hxuan190/evm-quote-engine/internal/services/router"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

type QuoteHandler struct {
	aggregatorSvc *aggregator.Service
}

func NewQuoteHandler(aggregatorSvc *aggregator.Service) *QuoteHandler {
	return &QuoteHandler{aggregatorSvc: aggregatorSvc}
}

func (h *QuoteHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.getQuote)
	pub.GET("/history", h.getHistory)
}

func (h *QuoteHandler) Root() string {
	return "/quote"
}

// QuoteRequest represents the parameters for requesting a swap quote
type QuoteRequest struct {
	// Chain id of the deployment to quote on
	// Supported: 11155111 (Sepolia), 534351 (Scroll Sepolia)
	ChainID uint64 `form:"chainId" binding:"required" example:"11155111"`

	// Input token, as an address (any casing) or a registry symbol
	TokenIn string `form:"tokenIn" binding:"required" example:"0xE91d02E66a9152Fee1BC79c1830121F6507a4F6D"`

	// Output token, as an address (any casing) or a registry symbol
	TokenOut string `form:"tokenOut" binding:"required" example:"0xBAcDBe38Df8421d0AA90262BEB1C20d32a634fe7"`

	// Human-readable input amount, scaled by the input token's decimals
	// Extra fractional digits are truncated
	AmountIn string `form:"amountIn" binding:"required" example:"1.5"`

	// Slippage tolerance in basis points (1 bps = 0.01%)
	// Default: 50 bps (0.5%)
	SlippageBps *uint32 `form:"slippageBps" example:"50"`
}

type TokenInfo struct {
	Address  string `json:"address" example:"0xE91d02E66a9152Fee1BC79c1830121F6507a4F6D"`
	Symbol   string `json:"symbol" example:"vETH"`
	Decimals uint8  `json:"decimals" example:"18"`
}

// PairInfo is the state of the first pair on the route at quote time
type PairInfo struct {
	Address  string `json:"address"`
	Token0   string `json:"token0"`
	Token1   string `json:"token1"`
	Reserve0 string `json:"reserve0"`
	Reserve1 string `json:"reserve1"`
}

// QuoteResponse contains the calculated swap quote with routing information
type QuoteResponse struct {
	ChainID  uint64    `json:"chainId" example:"11155111"`
	TokenIn  TokenInfo `json:"tokenIn"`
	TokenOut TokenInfo `json:"tokenOut"`

	// Input amount in base units
	AmountIn string `json:"amountIn" example:"1000000000000000000"`

	// Output amount in base units, as returned by the router
	AmountOut string `json:"amountOut" example:"1974316068"`

	// Output amount scaled by the output token's decimals
	AmountOutFormatted string `json:"amountOutFormatted" example:"1974.316068"`

	// Signed price impact in basis points. Negative means the execution price is
	// worse than the mid price
	PriceImpactBps int64 `json:"priceImpactBps" example:"-128"`

	// Human-readable price impact percentage
	PriceImpactPercent string `json:"priceImpactPercent" example:"-1.28%"`

	// Price impact severity classification
	// - "none": < 1%
	// - "low": 1% - 3%
	// - "moderate": 3% - 5%
	// - "high": 5% - 10%
	// - "extreme": > 10%
	PriceImpactSeverity string `json:"priceImpactSeverity" enums:"none,low,moderate,high,extreme" example:"low"`

	// User-friendly warning message about price impact
	// Empty if impact is negligible
	PriceImpactWarning string `json:"priceImpactWarning,omitempty"`

	// Cumulative mid price, output per input, 18 decimals
	MidPrice string `json:"midPrice" example:"2000"`

	// Execution price, output per input, 18 decimals
	ExecutionPrice string `json:"executionPrice" example:"1974.316068"`

	// Total fee in basis points, 30 per hop
	FeeBps int64 `json:"feeBps" example:"30"`

	// Fee in input token base units
	FeeAmount string `json:"feeAmount" example:"3000000000000000"`

	// Fee in USD from the chain oracle. Empty when the oracle is unavailable
	FeeUSD string `json:"feeUsd,omitempty" example:"6"`

	// Minimum output after slippage, in output base units
	MinReceived string `json:"minReceived" example:"1964444487"`

	// Maximum output, equal to amountOut
	MaxReceived string `json:"maxReceived" example:"1974316068"`

	SlippageBps uint32 `json:"slippageBps" example:"50"`

	// "Direct" or "via SYMBOL"
	Route string `json:"route" example:"Direct"`

	// Complete token path from input to output
	RoutePath []string `json:"routePath"`

	// Number of swap hops in the route
	HopCount int `json:"hopCount" example:"1"`

	Pair PairInfo `json:"pair"`

	QuotedAt time.Time `json:"quotedAt"`
}

func tokenInfo(t domain.TokenConfig) TokenInfo {
	return TokenInfo{Address: t.Address.Hex(), Symbol: t.Symbol, Decimals: t.Decimals}
}

func bigString(v *big.Int) string {
	if v == nil {
		return ""
	}
	return v.String()
}

// NewQuoteResponse renders a quote in its API form.
func NewQuoteResponse(q *domain.QuoteResult) QuoteResponse {
	impactPercent := decimal.New(q.PriceImpactBps, -2).StringFixed(2) + "%"

	return QuoteResponse{
		ChainID:             q.ChainID,
		TokenIn:             tokenInfo(q.TokenIn),
		TokenOut:            tokenInfo(q.TokenOut),
		AmountIn:            bigString(q.AmountIn),
		AmountOut:           bigString(q.AmountOut),
		AmountOutFormatted:  q.AmountOutFormatted,
		PriceImpactBps:      q.PriceImpactBps,
		PriceImpactPercent:  impactPercent,
		PriceImpactSeverity: q.Severity,
		PriceImpactWarning:  q.Warning,
		MidPrice:            router.FormatUnits(q.MidPriceE18, 18),
		ExecutionPrice:      router.FormatUnits(q.ExecPriceE18, 18),
		FeeBps:              q.FeeBps,
		FeeAmount:           bigString(q.FeeAmount),
		FeeUSD:              q.FeeUSD,
		MinReceived:         bigString(q.MinReceived),
		MaxReceived:         bigString(q.MaxReceived),
		SlippageBps:         q.SlippageBps,
		Route:               q.Route,
		RoutePath:           q.RoutePath.Strings(),
		HopCount:            q.RoutePath.Hops(),
		Pair: PairInfo{
			Address:  q.Pair.Address.Hex(),
			Token0:   q.Pair.Token0.Hex(),
			Token1:   q.Pair.Token1.Hex(),
			Reserve0: bigString(q.Pair.Reserve0),
			Reserve1: bigString(q.Pair.Reserve1),
		},
		QuotedAt: q.QuotedAt,
	}
}

// resolveToken maps a symbol to its address. Unknown references pass through unchanged so
// the quoter reports them.
func (h *QuoteHandler) resolveToken(chainID domain.ChainID, ref string) string {
	if tok, ok := h.aggregatorSvc.Registry().ResolveToken(chainID, ref); ok {
		return tok.Address.Hex()
	}
	return ref
}

// @Summary Get swap quote
// @Description Price a swap on one chain. The engine tries the direct pair first and
// @Description otherwise routes through one whitelisted intermediary (vETH, vUSDT, vUSDC, vDAI, vBTC),
// @Description keeping the candidate with the highest output.
// @Description
// @Description **Amount Format:**
// @Description - amountIn is human-readable and scaled by the input token's decimals
// @Description - 1.5 vETH (18 decimals) = "1.5"
// @Tags quote
// @Produce json
// @Param chainId query int true "Chain id" example(11155111)
// @Param tokenIn query string true "Input token address or symbol" example("vETH")
// @Param tokenOut query string true "Output token address or symbol" example("vUSDT")
// @Param amountIn query string true "Human-readable input amount" example("1")
// @Param slippageBps query int false "Slippage tolerance in basis points. Default: 50 (0.5%)" default(50)
// @Success 200 {object} httputil.Response{data=QuoteResponse} "Successful quote"
// @Failure 400 {object} httputil.Response "Unsupported chain, unknown token, bad amount or slippage"
// @Failure 404 {object} httputil.Response "No route found between the token pair"
// @Failure 422 {object} httputil.Response "A pair on the route has no liquidity"
// @Router /api/v1/quote [get]
func (h *QuoteHandler) getQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}

	quote, err := h.aggregatorSvc.Quote(c.Request.Context(), domain.QuoteRequest{
		ChainID:     req.ChainID,
		TokenIn:     h.resolveToken(req.ChainID, req.TokenIn),
		TokenOut:    h.resolveToken(req.ChainID, req.TokenOut),
		AmountIn:    req.AmountIn,
		SlippageBps: req.SlippageBps,
	})
	if err != nil {
		httputil.HandleError(c, err)
		return
	}

	httputil.Success(c, NewQuoteResponse(quote))
}

type HistoryRequest struct {
	ChainID uint64 `form:"chainId" binding:"required" example:"11155111"`
	Limit   int    `form:"limit" example:"50"`
}

// @Summary Recent quotes
// @Description Most recent settled quotes for a chain, newest first.
// @Tags quote
// @Produce json
// @Param chainId query int true "Chain id" example(11155111)
// @Param limit query int false "Maximum entries (max 500)" default(50)
// @Success 200 {object} httputil.Response{data=[]persistence.StoredQuote}
// @Failure 400 {object} httputil.Response
// @Failure 404 {object} httputil.Response "History is disabled"
// @Router /api/v1/quote/history [get]
func (h *QuoteHandler) getHistory(c *gin.Context) {
	var req HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultHistoryLimit
	}
	if req.Limit > maxHistoryLimit {
		httputil.BadRequest(c, fmt.Sprintf("limit must be at most %d", maxHistoryLimit))
		return
	}

	quotes, err := h.aggregatorSvc.RecentQuotes(req.ChainID, req.Limit)
	if errors.Is(err, aggregator.ErrHistoryDisabled) {
		httputil.NotFound(c, err.Error())
		return
	}
	if err != nil {
		httputil.HandleError(c, err)
		return
	}

	httputil.Success(c, quotes)
}
