package domain

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

//go:embed catalog.json
var catalogJSON []byte

type Product struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Category    string              `json:"category"`
	Image       string              `json:"image"`
	Price       decimal.NullDecimal `json:"price"`
	Description string              `json:"description"`
}

// ForSale reports whether the product has a price.
func (p Product) ForSale() bool { return p.Price.Valid }

// Catalog is the read-only product list.
type Catalog struct {
	items []Product
	byID  map[string]int
}

// LoadCatalog parses the embedded catalog.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogJSON)
}

// ParseCatalog parses a JSON array of products. Ids must be unique.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var items []Product
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	c := &Catalog{items: items, byID: make(map[string]int, len(items))}
	for i, p := range items {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog: product %d has no id", i)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate id %q", p.ID)
		}
		c.byID[p.ID] = i
	}
	return c, nil
}

// Products returns a copy of the catalog in its original order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Find(id string) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.items[i], true
}
