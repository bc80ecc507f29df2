package entity

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Category is one of the fixed catalog categories.
type Category string

const (
	CategorySoftSkill  Category = "софт-скил"
	CategoryHardSkill  Category = "хард-скил"
	CategoryButton     Category = "кнопка"
	CategoryAdditional Category = "дополнительно"
	CategoryOther      Category = "другое"
)

var categoryClasses = map[Category]string{
	CategorySoftSkill:  "soft",
	CategoryHardSkill:  "hard",
	CategoryButton:     "button",
	CategoryAdditional: "additional",
	CategoryOther:      "other",
}

// Class returns the style suffix for the category. Unknown categories are
// styled as CategoryOther.
func (c Category) Class() string {
	if cls, ok := categoryClasses[c]; ok {
		return cls
	}
	return categoryClasses[CategoryOther]
}

// Price is either a decimal amount or the priceless sentinel. The zero
// value is priceless.
type Price struct {
	amount decimal.Decimal
	valid  bool
}

// NewPrice returns a purchasable price.
func NewPrice(amount decimal.Decimal) Price {
	return Price{amount: amount, valid: true}
}

// PriceOf is a shorthand for integral prices.
func PriceOf(amount int64) Price {
	return NewPrice(decimal.NewFromInt(amount))
}

// Priceless returns the sentinel for products that cannot be bought.
func Priceless() Price { return Price{} }

// IsPriceless reports whether p is the priceless sentinel.
func (p Price) IsPriceless() bool { return !p.valid }

// Amount returns the decimal amount and false for the priceless sentinel.
func (p Price) Amount() (decimal.Decimal, bool) {
	return p.amount, p.valid
}

// Equal compares two prices.
func (p Price) Equal(o Price) bool {
	if p.valid != o.valid {
		return false
	}
	return !p.valid || p.amount.Equal(o.amount)
}

// String implements fmt.Stringer.
func (p Price) String() string {
	if !p.valid {
		return "priceless"
	}
	return p.amount.String()
}

// MarshalJSON encodes the sentinel as null and amounts as JSON numbers.
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.valid {
		return []byte("null"), nil
	}
	return []byte(p.amount.String()), nil
}

// UnmarshalJSON accepts null, numbers and quoted numbers.
func (p *Price) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = Priceless()
		return nil
	}
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("price: %w", err)
	}
	*p = NewPrice(d)
	return nil
}

// Product is a catalog entry. Products are immutable once loaded.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Category    Category `json:"category"`
	Image       string   `json:"image"`
	Price       Price    `json:"price"`
	Description string   `json:"description"`
}

// Purchasable reports whether the product can enter the basket.
func (p Product) Purchasable() bool { return !p.Price.IsPriceless() }

// Catalog is the product list returned by the backend.
type Catalog struct {
	Total int       `json:"total"`
	Items []Product `json:"items"`
}
