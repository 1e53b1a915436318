package http

import (
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"

	"github.com/hxuan190/evm-quote-engine/internal/aggregator"
	"github.com/hxuan190/evm-quote-engine/internal/domain"
	"github.com/hxuan190/evm-quote-engine/internal/http/httputil"
)

type SwapHandler struct {
	aggregatorSvc *aggregator.Service
}

func NewSwapHandler(aggregatorSvc *aggregator.Service) *SwapHandler {
	return &SwapHandler{aggregatorSvc: aggregatorSvc}
}

func (h *SwapHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.POST("", h.buildSwap)
}

func (h *SwapHandler) Root() string {
	return "/swap"
}

// SwapHandlerRequest represents the parameters for building a swap transaction
type SwapHandlerRequest struct {
	ChainID uint64 `json:"chainId" binding:"required" example:"11155111"`

	// Input token address or symbol
	TokenIn string `json:"tokenIn" binding:"required" example:"vETH"`

	// Output token address or symbol
	TokenOut string `json:"tokenOut" binding:"required" example:"vUSDT"`

	// Human-readable input amount
	AmountIn string `json:"amountIn" binding:"required" example:"1"`

	// Slippage tolerance in basis points. Default: 50 (0.5%)
	SlippageBps *uint32 `json:"slippageBps" example:"50"`

	// Wallet that will sign the transaction. Its router allowance decides whether an
	// approve call is needed first
	Owner string `json:"owner" binding:"required" example:"0x00000000000000000000000000000000000000aa"`

	// Receiver of the output tokens. Default: owner
	Recipient string `json:"recipient" example:"0x00000000000000000000000000000000000000aa"`
}

// TxCall is an unsigned contract call
type TxCall struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// SwapResponse carries the quote and the calls the wallet should sign, in order
type SwapResponse struct {
	Quote QuoteResponse `json:"quote"`

	// Set when the owner's allowance for the router is below amountIn
	NeedsApproval bool    `json:"needsApproval"`
	Approve       *TxCall `json:"approve,omitempty"`

	Swap TxCall `json:"swap"`

	MinAmountOut string    `json:"minAmountOut" example:"1964444487"`
	Recipient    string    `json:"recipient"`
	Deadline     time.Time `json:"deadline"`
}

func buildSwapResponse(quote *domain.QuoteResult, plan *domain.SwapPlan) SwapResponse {
	resp := SwapResponse{
		Quote:         NewQuoteResponse(quote),
		NeedsApproval: plan.NeedsApproval,
		Swap:          TxCall{To: plan.Router.Hex(), Data: hexutil.Encode(plan.Calldata)},
		MinAmountOut:  plan.MinAmountOut.String(),
		Recipient:     plan.Recipient.Hex(),
		Deadline:      plan.Deadline,
	}
	if plan.NeedsApproval {
		resp.Approve = &TxCall{To: plan.ApproveToken.Hex(), Data: hexutil.Encode(plan.ApproveCalldata)}
	}
	return resp
}

// @Summary Build swap transaction
// @Description Quote a swap and encode the router call swapExactTokensForTokens with a
// @Description 20 minute deadline. When the owner's allowance is short an approve call for
// @Description the maximum amount is returned as well. Nothing is signed or submitted.
// @Tags swap
// @Accept json
// @Produce json
// @Param request body SwapHandlerRequest true "Swap request"
// @Success 200 {object} httputil.Response{data=SwapResponse}
// @Failure 400 {object} httputil.Response "Invalid request"
// @Failure 404 {object} httputil.Response "No route found"
// @Failure 422 {object} httputil.Response "A pair on the route has no liquidity"
// @Router /api/v1/swap [post]
func (h *SwapHandler) buildSwap(c *gin.Context) {
	var req SwapHandlerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	reg := h.aggregatorSvc.Registry()
	tokenIn, tokenOut := req.TokenIn, req.TokenOut
	if tok, ok := reg.ResolveToken(req.ChainID, tokenIn); ok {
		tokenIn = tok.Address.Hex()
	}
	if tok, ok := reg.ResolveToken(req.ChainID, tokenOut); ok {
		tokenOut = tok.Address.Hex()
	}

	quote, plan, err := h.aggregatorSvc.BuildSwap(c.Request.Context(), domain.SwapRequest{
		ChainID:     req.ChainID,
		TokenIn:     tokenIn,
		TokenOut:    tokenOut,
		AmountIn:    req.AmountIn,
		SlippageBps: req.SlippageBps,
		Owner:       req.Owner,
		Recipient:   req.Recipient,
	})
	if err != nil {
		httputil.HandleError(c, err)
		return
	}

	httputil.Success(c, buildSwapResponse(quote, plan))
}
