package view

import (
	"github.com/shopspring/decimal"
	"golang.org/x/net/html"

	"github.com/jcmexdev/storefront/internal/pkg/dom"
	"github.com/jcmexdev/storefront/internal/pkg/events"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/topics"
)

const basketEmpty = "Корзина пуста"

// BasketData is the render contract of the basket panel.
type BasketData struct {
	Lines []BasketLineData
	Total decimal.Decimal
}

// BasketDataOf derives the panel contents from a basket snapshot.
func BasketDataOf(b entity.Basket) BasketData {
	lines := make([]BasketLineData, len(b.Items))
	for i, it := range b.Items {
		lines[i] = BasketLineData{Index: i, Item: it}
	}
	return BasketData{Lines: lines, Total: b.Total()}
}

// Basket is the basket panel. While it is mounted in the modal it follows
// basket-changed on its own.
type Basket struct {
	env     Env
	root    *html.Node
	list    *html.Node
	button  *html.Node
	total   *html.Node
	mounted bool
}

// NewBasket builds the panel from its template.
func NewBasket(env Env) *Basket {
	root := env.Templates.instantiate(TemplateBasket)
	b := &Basket{
		env:    env,
		root:   root,
		list:   dom.MustQuery(root, ".basket__list"),
		button: dom.MustQuery(root, ".basket__button"),
		total:  dom.MustQuery(root, ".basket__price"),
	}

	env.Listeners.OnClick(b.button, func() {
		emit(env, topics.OrderOpenTopic, struct{}{})
	})

	events.On(env.Bus, topics.ModalOpenTopic, func(e topics.ModalOpen) error {
		b.mounted = e.Content == b.root
		return nil
	})
	events.On(env.Bus, topics.ModalCloseTopic, func(struct{}) error {
		b.mounted = false
		return nil
	})
	events.On(env.Bus, topics.BasketChangedTopic, func(e topics.BasketChanged) error {
		if b.mounted {
			b.Render(BasketDataOf(e.Basket))
		}
		return nil
	})
	return b
}

// Render rebuilds the lines and the total.
func (b *Basket) Render(data BasketData) *html.Node {
	if len(data.Lines) == 0 {
		dom.ReplaceChildren(b.list, dom.Element("li", basketEmpty))
	} else {
		lines := make([]*html.Node, len(data.Lines))
		for i, l := range data.Lines {
			lines[i] = RenderCard(b.env, l)
		}
		dom.ReplaceChildren(b.list, lines...)
	}
	dom.SetDisabled(b.button, len(data.Lines) == 0)
	dom.SetText(b.total, FormatAmount(data.Total))
	return b.root
}

// Root returns the panel root.
func (b *Basket) Root() *html.Node { return b.root }

// Mounted reports whether the panel is shown in the modal.
func (b *Basket) Mounted() bool { return b.mounted }
