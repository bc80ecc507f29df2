package view

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

const (
	currency  = "синапсов"
	priceless = "Бесценно"
)

// FormatAmount renders an amount in the shop currency, e.g. "1 450 синапсов".
func FormatAmount(d decimal.Decimal) string {
	f, _ := d.Float64()
	p := message.NewPrinter(language.Russian)
	return p.Sprintf("%v %s", number.Decimal(f, number.MaxFractionDigits(2)), currency)
}

// FormatPrice renders a catalog price; priceless products read "Бесценно".
func FormatPrice(p entity.Price) string {
	amount, ok := p.Amount()
	if !ok {
		return priceless
	}
	return FormatAmount(amount)
}
