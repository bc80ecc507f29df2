package view

import (
	"strconv"

	"golang.org/x/net/html"

	"github.com/jcmexdev/storefront/internal/pkg/dom"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/topics"
)

// Preview button captions.
const (
	ButtonBuy         = "В корзину"
	ButtonRemove      = "Убрать из корзины"
	ButtonUnavailable = "Недоступно"
)

// CardData is the render contract of a product card. The concrete type
// selects the template and the listeners.
type CardData interface {
	cardTemplate() string
}

// CatalogCardData renders a gallery tile.
type CatalogCardData struct {
	Product entity.Product
}

// PreviewCardData renders the full card shown in the modal.
type PreviewCardData struct {
	Product  entity.Product
	InBasket bool
}

// BasketLineData renders one basket line. Index is zero-based.
type BasketLineData struct {
	Index int
	Item  entity.BasketItem
}

func (CatalogCardData) cardTemplate() string { return TemplateCardCatalog }
func (PreviewCardData) cardTemplate() string { return TemplateCardPreview }
func (BasketLineData) cardTemplate() string  { return TemplateCardBasket }

// RenderCard builds a fresh card for data.
func RenderCard(env Env, data CardData) *html.Node {
	root := env.Templates.instantiate(data.cardTemplate())

	switch d := data.(type) {
	case CatalogCardData:
		fillProduct(root, d.Product)
		env.Listeners.OnClick(root, func() {
			emit(env, topics.CardSelectTopic, topics.CardSelect{Product: d.Product})
		})

	case PreviewCardData:
		fillProduct(root, d.Product)
		dom.SetText(dom.MustQuery(root, ".card__text"), d.Product.Description)

		button := dom.MustQuery(root, ".card__button")
		switch {
		case !d.Product.Purchasable():
			dom.SetText(button, ButtonUnavailable)
			dom.SetDisabled(button, true)
		case d.InBasket:
			dom.SetText(button, ButtonRemove)
			env.Listeners.OnClick(button, func() {
				emit(env, topics.PreviewRemoveTopic, topics.PreviewRemove{ID: d.Product.ID})
			})
		default:
			dom.SetText(button, ButtonBuy)
			env.Listeners.OnClick(button, func() {
				emit(env, topics.PreviewBuyTopic, topics.PreviewBuy{Product: d.Product})
			})
		}

	case BasketLineData:
		dom.SetText(dom.MustQuery(root, ".basket__item-index"), strconv.Itoa(d.Index+1))
		dom.SetText(dom.MustQuery(root, ".card__title"), d.Item.Title)
		dom.SetText(dom.MustQuery(root, ".card__price"), FormatAmount(d.Item.Price))
		env.Listeners.OnClick(dom.MustQuery(root, ".basket__item-delete"), func() {
			emit(env, topics.BasketRemoveTopic, topics.BasketRemove{ID: d.Item.ID})
		})
	}
	return root
}

func fillProduct(root *html.Node, p entity.Product) {
	dom.SetText(dom.MustQuery(root, ".card__title"), p.Title)
	dom.SetImage(dom.MustQuery(root, ".card__image"), p.Image, p.Title)
	dom.SetText(dom.MustQuery(root, ".card__price"), FormatPrice(p.Price))

	category := dom.MustQuery(root, ".card__category")
	dom.SetText(category, string(p.Category))
	dom.SetClass(category, "card__category", "card__category_"+p.Category.Class())
}
