// Package common provides shared utilities used across all features
package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hxuan190/evm-quote-engine/internal/domain"
)

// HttpError represents an HTTP error with status code and message
type HttpError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s %s", e.StatusCode, e.Code, e.Message)
}

func messageOrDefault(msg string, defaultMsg string) string {
	if msg != "" {
		return msg
	}
	return defaultMsg
}

// HTTP Error constructors

func HTTPErrorBadRequest(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusBadRequest,
		Code:       "BAD_REQUEST",
		Message:    messageOrDefault(msg, "Bad request"),
	}
}

func HTTPErrorNotFound(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    messageOrDefault(msg, "Not found"),
	}
}

func HTTPErrorInternalError(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    messageOrDefault(msg, "Internal server error"),
	}
}

func HTTPErrorUnauthorized(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    messageOrDefault(msg, "Unauthorized"),
	}
}

func HTTPErrorForbidden(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusForbidden,
		Code:       "FORBIDDEN",
		Message:    messageOrDefault(msg, "Forbidden"),
	}
}

func HTTPErrorResourceConflict(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusConflict,
		Code:       "RESOURCE_CONFLICT",
		Message:    messageOrDefault(msg, "Resource conflict"),
	}
}

func HTTPErrorUnprocessable(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       "UNPROCESSABLE_ENTITY",
		Message:    messageOrDefault(msg, "Unprocessable entity"),
	}
}

func withCode(e *HttpError, code string) *HttpError {
	e.Code = code
	return e
}

// HTTPErrorFrom maps quote engine errors to their HTTP form.
func HTTPErrorFrom(err error) *HttpError {
	var httpErr *HttpError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &httpErr):
		return httpErr
	case errors.Is(err, domain.ErrChainNotSupported):
		return withCode(HTTPErrorBadRequest(err.Error()), "CHAIN_NOT_SUPPORTED")
	case errors.Is(err, domain.ErrTokenNotFound):
		return withCode(HTTPErrorBadRequest(err.Error()), "TOKEN_NOT_FOUND")
	case errors.Is(err, domain.ErrInvalidAmount):
		return withCode(HTTPErrorBadRequest(err.Error()), "INVALID_AMOUNT")
	case errors.Is(err, domain.ErrInvalidSlippage):
		return withCode(HTTPErrorBadRequest(err.Error()), "INVALID_SLIPPAGE")
	case errors.Is(err, domain.ErrIdenticalTokens):
		return withCode(HTTPErrorBadRequest(err.Error()), "IDENTICAL_TOKENS")
	case errors.Is(err, domain.ErrInvalidAddress):
		return withCode(HTTPErrorBadRequest(err.Error()), "INVALID_ADDRESS")
	case errors.Is(err, domain.ErrNoRouteFound):
		return withCode(HTTPErrorNotFound(err.Error()), "NO_ROUTE")
	case errors.Is(err, domain.ErrReserveZero):
		return withCode(HTTPErrorUnprocessable(err.Error()), "RESERVE_ZERO")
	default:
		return HTTPErrorInternalError(err.Error())
	}
}
