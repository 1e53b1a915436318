package domain

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	DefaultSlippageBps uint32 = 50
	FeeBpsPerHop       int64  = 30
	BpsDenominator     int64  = 10000

	RouteDirect = "Direct"
)

// QuoteRequest is a single trade the caller wants priced. AmountIn is human-readable and is
// scaled with tokenIn's registry decimals.
type QuoteRequest struct {
	ChainID     ChainID
	TokenIn     string
	TokenOut    string
	AmountIn    string
	SlippageBps *uint32
}

// Slippage returns the requested slippage or the default.
func (r QuoteRequest) Slippage() uint32 {
	if r.SlippageBps == nil {
		return DefaultSlippageBps
	}
	return *r.SlippageBps
}

// Fingerprint identifies a request for deduplication.
func (r QuoteRequest) Fingerprint() string {
	return fmt.Sprintf("%d-%s-%s-%s-%d",
		r.ChainID,
		strings.ToLower(strings.TrimSpace(r.TokenIn)),
		strings.ToLower(strings.TrimSpace(r.TokenOut)),
		strings.TrimSpace(r.AmountIn),
		r.Slippage(),
	)
}

// Path is an ordered token route. Length 2 is direct, length 3 has one intermediary.
type Path []common.Address

func (p Path) Hops() int {
	if len(p) < 2 {
		return 0
	}
	return len(p) - 1
}

func (p Path) IsDirect() bool {
	return len(p) == 2
}

func (p Path) Strings() []string {
	out := make([]string, len(p))
	for i, a := range p {
		out[i] = a.Hex()
	}
	return out
}

// QuoteResult is computed fresh per request and never patched.
type QuoteResult struct {
	ChainID            ChainID
	TokenIn            TokenConfig
	TokenOut           TokenConfig
	AmountIn           *big.Int
	AmountOut          *big.Int
	AmountOutFormatted string
	PriceImpactBps     int64
	MidPriceE18        *big.Int
	ExecPriceE18       *big.Int
	FeeBps             int64
	FeeAmount          *big.Int

	// FeeUSD is empty when the oracle was unavailable.
	FeeUSD      string
	MaxReceived *big.Int
	MinReceived *big.Int
	SlippageBps uint32
	Route       string
	RoutePath   Path
	Pair        PairSnapshot
	Severity    string
	Warning     string
	QuotedAt    time.Time
}

// RouteLabel returns "Direct" or "via SYMBOL".
func RouteLabel(path Path, intermediary string) string {
	if path.IsDirect() {
		return RouteDirect
	}
	if intermediary == "" {
		intermediary = "Unknown"
	}
	return "via " + intermediary
}
