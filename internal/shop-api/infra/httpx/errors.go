package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/jcmexdev/storefront/internal/shop-api/domain"
)

var kindToStatus = map[string]int{
	"invalid_order":        http.StatusBadRequest,
	"product_not_found":    http.StatusNotFound,
	"not_for_sale":         http.StatusUnprocessableEntity,
	"total_mismatch":       http.StatusUnprocessableEntity,
	"idempotency_conflict": http.StatusConflict,
	"timeout":              http.StatusGatewayTimeout,
	"canceled":             http.StatusRequestTimeout,
}

// errorKind classifies err for clients.
func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrInvalidOrder):
		return "invalid_order"
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, domain.ErrNotForSale):
		return "not_for_sale"
	case errors.Is(err, domain.ErrTotalMismatch):
		return "total_mismatch"
	case errors.Is(err, domain.ErrIdempotencyConflict):
		return "idempotency_conflict"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal"
	}
}

func httpStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if s, ok := kindToStatus[errorKind(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}
