package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// 業務エラーの分類。HTTPErrorのErrに入れてerrors.Isで判定できる。
var (
	ErrValidation        = errors.New("validation error")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrOutOfStock        = errors.New("out of stock")
	ErrStockExceeded     = errors.New("stock exceeded")
	ErrEmptyCart         = errors.New("empty cart")
	ErrCheckoutFailed    = errors.New("checkout failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotPurchased      = errors.New("not purchased")
	ErrDuplicateReview   = errors.New("duplicate review")
	ErrInternal          = errors.New("internal error")
)

type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

// kindから既定のHTTPステータスを決めて包む
func newError(kind error, message string) error {
	return &HTTPError{
		Status:  statusOf(kind),
		Message: message,
		Err:     kind,
	}
}

func statusOf(kind error) int {
	switch kind {
	case ErrValidation, ErrEmptyCart, ErrOutOfStock, ErrStockExceeded, ErrInvalidTransition:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden, ErrPermissionDenied, ErrNotPurchased:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrConflict, ErrDuplicateReview, ErrCheckoutFailed:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func dbError(err error) error {
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Message: "db error",
		Err:     fmt.Errorf("%w: %v", ErrInternal, err),
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
