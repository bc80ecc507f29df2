package view

import (
	"strconv"

	"golang.org/x/net/html"

	"github.com/jcmexdev/storefront/internal/pkg/dom"
	"github.com/jcmexdev/storefront/internal/pkg/events"
	"github.com/jcmexdev/storefront/internal/storefront/core/topics"
)

// Page is the document chrome: basket counter, gallery, scroll lock and
// the blocking notice.
type Page struct {
	env     Env
	wrapper *html.Node
	counter *html.Node
	gallery *html.Node
	notice  *html.Node
	text    *html.Node
	locked  bool
}

// NewPage binds the chrome of doc.
func NewPage(env Env, doc *html.Node) *Page {
	p := &Page{
		env:     env,
		wrapper: dom.MustQuery(doc, ".page__wrapper"),
		counter: dom.MustQuery(doc, ".header__basket-counter"),
		gallery: dom.MustQuery(doc, ".gallery"),
		notice:  dom.MustQuery(doc, ".notice"),
		text:    dom.MustQuery(doc, ".notice__text"),
	}

	env.Listeners.OnClick(dom.MustQuery(doc, ".header__basket"), func() {
		emit(env, topics.BasketOpenTopic, struct{}{})
	})
	env.Listeners.OnClick(dom.MustQuery(doc, ".notice__close"), func() {
		p.SetNotice("")
		emit(env, topics.NoticeDismissTopic, struct{}{})
	})

	events.On(env.Bus, topics.BasketChangedTopic, func(e topics.BasketChanged) error {
		p.SetCounter(e.Basket.Count())
		return nil
	})
	events.On(env.Bus, topics.ModalOpenTopic, func(topics.ModalOpen) error {
		p.SetLocked(true)
		return nil
	})
	events.On(env.Bus, topics.ModalCloseTopic, func(struct{}) error {
		p.SetLocked(false)
		return nil
	})
	events.On(env.Bus, topics.NoticeTopic, func(e topics.Notice) error {
		p.SetNotice(e.Message)
		return nil
	})
	return p
}

// SetCounter shows the number of basket lines.
func (p *Page) SetCounter(n int) {
	dom.SetText(p.counter, strconv.Itoa(n))
}

// SetCatalog replaces the gallery tiles.
func (p *Page) SetCatalog(cards []*html.Node) {
	dom.ReplaceChildren(p.gallery, cards...)
}

// SetLocked freezes page scrolling while a modal is open.
func (p *Page) SetLocked(locked bool) {
	p.locked = locked
	dom.ToggleClass(p.wrapper, "page__wrapper_locked", locked)
}

// Locked reports whether scrolling is frozen.
func (p *Page) Locked() bool { return p.locked }

// SetNotice shows a blocking message; an empty message hides it.
func (p *Page) SetNotice(msg string) {
	dom.SetText(p.text, msg)
	dom.SetHidden(p.notice, msg == "")
}

// Counter returns the rendered basket counter.
func (p *Page) Counter() string { return dom.Text(p.counter) }

// Notice returns the visible notice, empty when hidden.
func (p *Page) Notice() string {
	if dom.IsHidden(p.notice) {
		return ""
	}
	return dom.Text(p.text)
}
