package models

import (
	"errors"
	"net/http"

	"service-exchangerates/internal"
)

const (
	CodeBadRequest          = "bad_request"
	CodeUnsupportedCurrency = "unsupported_currency"
	CodeSameCurrency        = "same_currency"
	CodeRateNotAvailable    = "rate_not_available"
	CodeInternal            = "internal_error"
)

type BusinessError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *BusinessError) Error() string { return e.Message }

func BizError(code, msg string) *BusinessError { return &BusinessError{Code: code, Message: msg} }

// FromError maps domain errors onto an HTTP status and a client-facing body.
// Anything unrecognised becomes a 500 without leaking the underlying message.
func FromError(err error) (int, *BusinessError) {
	var biz *BusinessError
	switch {
	case errors.As(err, &biz):
		return http.StatusBadRequest, biz
	case errors.Is(err, internal.ErrUnsupportedCurrency):
		return http.StatusBadRequest, BizError(CodeUnsupportedCurrency, err.Error())
	case errors.Is(err, internal.ErrSameCurrency):
		return http.StatusBadRequest, BizError(CodeSameCurrency, err.Error())
	case errors.Is(err, internal.ErrRateNotAvailable), errors.Is(err, internal.ErrZeroRate):
		return http.StatusNotFound, BizError(CodeRateNotAvailable, err.Error())
	default:
		return http.StatusInternalServerError, BizError(CodeInternal, "internal error")
	}
}
