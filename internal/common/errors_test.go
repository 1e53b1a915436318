package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/hxuan190/evm-quote-engine/internal/domain"
)

func TestHTTPErrorFrom(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"chain", domain.ErrChainNotSupported, http.StatusBadRequest, "CHAIN_NOT_SUPPORTED"},
		{"token wrapped", fmt.Errorf("tokenIn 0xabc: %w", domain.ErrTokenNotFound), http.StatusBadRequest, "TOKEN_NOT_FOUND"},
		{"amount", domain.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
		{"slippage", domain.ErrInvalidSlippage, http.StatusBadRequest, "INVALID_SLIPPAGE"},
		{"identical tokens", domain.ErrIdenticalTokens, http.StatusBadRequest, "IDENTICAL_TOKENS"},
		{"address", domain.ErrInvalidAddress, http.StatusBadRequest, "INVALID_ADDRESS"},
		{"no route", domain.ErrNoRouteFound, http.StatusNotFound, "NO_ROUTE"},
		{"reserve zero", fmt.Errorf("hop 0: %w", domain.ErrReserveZero), http.StatusUnprocessableEntity, "RESERVE_ZERO"},
		{"http error passthrough", HTTPErrorForbidden("nope"), http.StatusForbidden, "FORBIDDEN"},
		{"unknown", errors.New("rpc down"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HTTPErrorFrom(tt.err)
			if got.StatusCode != tt.status || got.Code != tt.code {
				t.Errorf("HTTPErrorFrom(%v) = %d %s, want %d %s", tt.err, got.StatusCode, got.Code, tt.status, tt.code)
			}
		})
	}

	if HTTPErrorFrom(nil) != nil {
		t.Error("HTTPErrorFrom(nil) should be nil")
	}
}
