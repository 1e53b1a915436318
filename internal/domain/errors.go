package domain

import "errors"

var (
	ErrChainNotSupported = errors.New("chain not supported")
	ErrTokenNotFound     = errors.New("token not found")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidSlippage   = errors.New("invalid slippage")
	ErrNoRouteFound      = errors.New("no route found")
	ErrReserveZero       = errors.New("reserve is zero")
	ErrInvalidAddress    = errors.New("invalid address")
	ErrIdenticalTokens   = errors.New("tokenIn and tokenOut are the same token")
)
