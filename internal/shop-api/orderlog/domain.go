// Package orderlog is the append-only journal of accepted orders.
//
// Every accepted order is written once together with the trace that
// accepted it, so a row can be followed to the full distributed trace.
// The idempotency key of an order is unique in the journal, which is what
// lets the service answer a retried submission with the original order.
package orderlog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront/internal/shop-api/domain"
)

var (
	ErrNotFound     = errors.New("orderlog: entry not found")
	ErrDuplicateKey = errors.New("orderlog: idempotency key already recorded")
)

// Entry is a single row of the journal.
type Entry struct {
	OrderID string
	// IdempotencyKey is empty for clients that sent none.
	IdempotencyKey string
	RequestID      string

	Payment string
	Address string
	Email   string
	Phone   string
	Total   string
	Items   []string

	// TraceID and SpanID identify the span that accepted the order.
	TraceID string
	SpanID  string

	CreatedAt time.Time
}

// Order rebuilds the order the entry records.
func (e *Entry) Order() (domain.Order, error) {
	total, err := decimal.NewFromString(e.Total)
	if err != nil {
		return domain.Order{}, err
	}
	return domain.Order{
		ID:             e.OrderID,
		Payment:        domain.PaymentMethod(e.Payment),
		Address:        e.Address,
		Email:          e.Email,
		Phone:          e.Phone,
		Total:          total,
		Items:          e.Items,
		IdempotencyKey: e.IdempotencyKey,
		RequestID:      e.RequestID,
		CreatedAt:      e.CreatedAt,
	}, nil
}
