package entity

import (
	"slices"

	"github.com/shopspring/decimal"
)

// BasketItem is a basket line derived from a purchasable product.
type BasketItem struct {
	ID    string
	Title string
	Price decimal.Decimal
}

// Basket is an ordered list of lines. Insertion order is display order.
type Basket struct {
	Items []BasketItem
}

// Count returns the number of lines.
func (b Basket) Count() int { return len(b.Items) }

// Total sums the line prices.
func (b Basket) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range b.Items {
		total = total.Add(it.Price)
	}
	return total
}

// IDs returns the product id of every line, in order.
func (b Basket) IDs() []string {
	ids := make([]string, len(b.Items))
	for i, it := range b.Items {
		ids[i] = it.ID
	}
	return ids
}

// Clone returns a copy that shares no memory with b.
func (b Basket) Clone() Basket {
	return Basket{Items: slices.Clone(b.Items)}
}
