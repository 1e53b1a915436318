package domain

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// SwapPlan holds the parameters of an unsigned swapExactTokensForTokens call.
type SwapPlan struct {
	ChainID      ChainID
	Router       common.Address
	Calldata     []byte
	AmountIn     *big.Int
	MinAmountOut *big.Int
	Path         Path
	Recipient    common.Address
	Deadline     time.Time

	// NeedsApproval is set when the owner's allowance for the router is below AmountIn.
	NeedsApproval   bool
	ApproveToken    common.Address
	ApproveCalldata []byte
}

type TokenSummary struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

type SwapQuoteInput struct {
	ChainID  ChainID `json:"chainId"`
	AmountIn string  `json:"amountIn"`
	TokenIn  string  `json:"tokenIn"`
	TokenOut string  `json:"tokenOut"`
}

type SwapQuote struct {
	AmountOut      string `json:"amountOut"`
	PriceImpactBps int64  `json:"priceImpactBps"`
	FeeBps         int64  `json:"feeBps"`
	Route          string `json:"route,omitempty"`
}

// SwapPort is the token listing and quoting contract consumed by frontends.
type SwapPort interface {
	GetTokens(ctx context.Context, chainID ChainID) ([]TokenSummary, error)
	GetQuote(ctx context.Context, input SwapQuoteInput) (*SwapQuote, error)
}

// SwapRequest asks for a quote and the unsigned swap that executes it.
type SwapRequest struct {
	ChainID     ChainID `json:"chainId"`
	TokenIn     string  `json:"tokenIn"`
	TokenOut    string  `json:"tokenOut"`
	AmountIn    string  `json:"amountIn"`
	SlippageBps *uint32 `json:"slippageBps,omitempty"`
	Owner       string  `json:"owner"`
	Recipient   string  `json:"recipient,omitempty"`
}

func (r SwapRequest) QuoteRequest() QuoteRequest {
	return QuoteRequest{
		ChainID:     r.ChainID,
		TokenIn:     r.TokenIn,
		TokenOut:    r.TokenOut,
		AmountIn:    r.AmountIn,
		SlippageBps: r.SlippageBps,
	}
}
