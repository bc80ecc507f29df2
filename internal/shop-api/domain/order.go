package domain

import (
	"errors"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidOrder        = errors.New("invalid order")
	ErrProductNotFound     = errors.New("product not found")
	ErrNotForSale          = errors.New("product is not for sale")
	ErrTotalMismatch       = errors.New("total does not match the items")
	ErrIdempotencyConflict = errors.New("idempotency key reused for a different order")
)

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCash   PaymentMethod = "cash"
)

// PlaceOrder is an order as submitted by a client.
type PlaceOrder struct {
	Payment PaymentMethod   `validate:"required,oneof=online cash"`
	Address string          `validate:"required"`
	Email   string          `validate:"required,email"`
	Phone   string          `validate:"required"`
	Total   decimal.Decimal `validate:"-"`
	Items   []string        `validate:"required,min=1,dive,required"`

	IdempotencyKey string `validate:"-"`
	RequestID      string `validate:"-"`
}

type Order struct {
	ID             string
	Payment        PaymentMethod
	Address        string
	Email          string
	Phone          string
	Total          decimal.Decimal
	Items          []string
	IdempotencyKey string
	RequestID      string
	CreatedAt      time.Time
}

// SameAs reports whether o records the order req describes. It tells a
// retry apart from a different order under the same idempotency key.
func (o Order) SameAs(req PlaceOrder) bool {
	return o.Total.Equal(req.Total) && slices.Equal(o.Items, req.Items)
}
