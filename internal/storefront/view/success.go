package view

import (
	"github.com/shopspring/decimal"
	"golang.org/x/net/html"

	"github.com/jcmexdev/storefront/internal/pkg/dom"
	"github.com/jcmexdev/storefront/internal/storefront/core/topics"
)

// SuccessData is the render contract of the success panel.
type SuccessData struct {
	Total decimal.Decimal
}

// Success confirms a placed order.
type Success struct {
	root        *html.Node
	title       *html.Node
	description *html.Node
}

// NewSuccess builds the panel from its template.
func NewSuccess(env Env) *Success {
	root := env.Templates.instantiate(TemplateSuccess)
	s := &Success{
		root:        root,
		title:       dom.MustQuery(root, ".order-success__title"),
		description: dom.MustQuery(root, ".order-success__description"),
	}
	env.Listeners.OnClick(dom.MustQuery(root, ".order-success__close"), func() {
		emit(env, topics.SuccessCloseTopic, struct{}{})
	})
	return s
}

// Render shows the charged total.
func (s *Success) Render(data SuccessData) *html.Node {
	dom.SetText(s.title, "Заказ оформлен")
	dom.SetText(s.description, "Списано "+FormatAmount(data.Total))
	return s.root
}

// Root returns the panel root.
func (s *Success) Root() *html.Node { return s.root }
