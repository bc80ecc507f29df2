package entity

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrUnknownPayment is returned for payment values other than online/cash.
var ErrUnknownPayment = errors.New("unknown payment method")

// PaymentMethod is how the customer pays for the order.
type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCash   PaymentMethod = "cash"
)

// ParsePaymentMethod validates a raw payment value.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentOnline, PaymentCash:
		return m, nil
	default:
		return "", ErrUnknownPayment
	}
}

// OrderField names an order draft field.
type OrderField string

const (
	FieldPayment OrderField = "payment"
	FieldAddress OrderField = "address"
	FieldEmail   OrderField = "email"
	FieldPhone   OrderField = "phone"
)

// OrderFields lists the draft fields in display order.
var OrderFields = []OrderField{FieldPayment, FieldAddress, FieldEmail, FieldPhone}

// OrderDraft holds the checkout fields collected across both form steps.
type OrderDraft struct {
	Payment PaymentMethod
	Address string
	Email   string
	Phone   string
}

// Get returns the raw value of field.
func (d OrderDraft) Get(field OrderField) string {
	switch field {
	case FieldPayment:
		return string(d.Payment)
	case FieldAddress:
		return d.Address
	case FieldEmail:
		return d.Email
	case FieldPhone:
		return d.Phone
	default:
		return ""
	}
}

// FormErrors maps a field to its message. An empty map means valid.
type FormErrors map[OrderField]string

// Valid reports whether there are no errors.
func (e FormErrors) Valid() bool { return len(e) == 0 }

// Messages returns the messages in field display order.
func (e FormErrors) Messages() []string {
	out := make([]string, 0, len(e))
	for _, f := range OrderFields {
		if msg, ok := e[f]; ok && msg != "" {
			out = append(out, msg)
		}
	}
	return out
}

// Order is the checkout request sent to the backend.
type Order struct {
	Payment PaymentMethod `json:"payment"`
	Address string        `json:"address"`
	Email   string        `json:"email"`
	Phone   string        `json:"phone"`
	Total   Amount        `json:"total"`
	Items   []string      `json:"items"`

	// IdempotencyKey travels as a header; retries of one checkout reuse it.
	IdempotencyKey string `json:"-"`
}

// NewOrder combines the draft with the basket contents.
func NewOrder(d OrderDraft, b Basket) Order {
	return Order{
		Payment: d.Payment,
		Address: d.Address,
		Email:   d.Email,
		Phone:   d.Phone,
		Total:   Amount{b.Total()},
		Items:   b.IDs(),
	}
}

// OrderResult is the backend acknowledgement of a placed order.
type OrderResult struct {
	ID    string `json:"id"`
	Total Amount `json:"total"`
}

// Amount is a decimal encoded as a bare JSON number.
type Amount struct {
	decimal.Decimal
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}
