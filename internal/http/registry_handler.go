package http

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/hxuan190/evm-quote-engine/internal/aggregator"
	"github.com/hxuan190/evm-quote-engine/internal/domain"
	"github.com/hxuan190/evm-quote-engine/internal/http/httputil"
)

type TokenHandler struct {
	aggregatorSvc *aggregator.Service
}

func NewTokenHandler(aggregatorSvc *aggregator.Service) *TokenHandler {
	return &TokenHandler{aggregatorSvc: aggregatorSvc}
}

func (h *TokenHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.listTokens)
}

func (h *TokenHandler) Root() string {
	return "/tokens"
}

// @Summary List tokens
// @Description Tokens known to a chain, sorted by symbol.
// @Tags registry
// @Produce json
// @Param chainId query int true "Chain id" example(11155111)
// @Success 200 {object} httputil.Response{data=[]domain.TokenSummary}
// @Failure 400 {object} httputil.Response "Missing or unsupported chain"
// @Router /api/v1/tokens [get]
func (h *TokenHandler) listTokens(c *gin.Context) {
	chainID, err := strconv.ParseUint(c.Query("chainId"), 10, 64)
	if err != nil {
		httputil.BadRequest(c, "invalid chainId")
		return
	}

	tokens, err := h.aggregatorSvc.GetTokens(c.Request.Context(), chainID)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}
	httputil.Success(c, tokens)
}

type ChainHandler struct {
	aggregatorSvc *aggregator.Service
}

func NewChainHandler(aggregatorSvc *aggregator.Service) *ChainHandler {
	return &ChainHandler{aggregatorSvc: aggregatorSvc}
}

func (h *ChainHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.listChains)
	pub.GET("/:chainId/pairs", h.listPairs)
}

func (h *ChainHandler) Root() string {
	return "/chains"
}

// ChainInfo describes one supported deployment
type ChainInfo struct {
	ID     uint64 `json:"id" example:"11155111"`
	Name   string `json:"name" example:"Sepolia"`
	Router string `json:"router"`
	Oracle string `json:"oracle"`

	// Ordered symbols tried as the middle hop of a two-hop route
	Intermediaries []string `json:"intermediaries"`

	TokenCount int `json:"tokenCount" example:"7"`
}

// PairInfoEntry is one pool in a chain's pair table
type PairInfoEntry struct {
	Address string `json:"address"`
	TokenA  string `json:"tokenA" example:"vETH"`
	TokenB  string `json:"tokenB" example:"vUSDT"`
}

// @Summary List chains
// @Tags registry
// @Produce json
// @Success 200 {object} httputil.Response{data=[]ChainInfo}
// @Router /api/v1/chains [get]
func (h *ChainHandler) listChains(c *gin.Context) {
	reg := h.aggregatorSvc.Registry()
	chains := lo.FilterMap(reg.SupportedChains(), func(id domain.ChainID, _ int) (ChainInfo, bool) {
		cfg, ok := reg.GetChainConfig(id)
		if !ok {
			return ChainInfo{}, false
		}
		return ChainInfo{
			ID:             cfg.ID,
			Name:           cfg.Name,
			Router:         cfg.Router.Hex(),
			Oracle:         cfg.Oracle.Hex(),
			Intermediaries: reg.GetIntermediaryTokens(id),
			TokenCount:     len(cfg.Tokens),
		}, true
	})
	httputil.Success(c, chains)
}

// @Summary List pairs
// @Description Pair table of a chain. Each pool is listed once.
// @Tags registry
// @Produce json
// @Param chainId path int true "Chain id" example(11155111)
// @Success 200 {object} httputil.Response{data=[]PairInfoEntry}
// @Failure 400 {object} httputil.Response
// @Router /api/v1/chains/{chainId}/pairs [get]
func (h *ChainHandler) listPairs(c *gin.Context) {
	chainID, err := strconv.ParseUint(c.Param("chainId"), 10, 64)
	if err != nil {
		httputil.BadRequest(c, "invalid chainId")
		return
	}
	reg := h.aggregatorSvc.Registry()
	cfg, ok := reg.GetChainConfig(chainID)
	if !ok {
		httputil.HandleError(c, domain.ErrChainNotSupported)
		return
	}

	tokens := reg.GetAllTokens(chainID)
	pairs := make([]PairInfoEntry, 0)
	for i, a := range tokens {
		for _, b := range tokens[i+1:] {
			if pair, ok := cfg.PairAddress(a.Address, b.Address); ok {
				pairs = append(pairs, PairInfoEntry{Address: pair.Hex(), TokenA: a.Symbol, TokenB: b.Symbol})
			}
		}
	}
	httputil.Success(c, pairs)
}
