// Package view renders the storefront page from HTML templates.
//
// A fragment owns one subtree of a session document. It is rendered from
// a data snapshot, registers listeners on its own nodes and reports user
// actions as intent events. Fragments never read the application state
// and never reach into each other.
package view

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html"

	"github.com/jcmexdev/storefront/internal/pkg/dom"
	"github.com/jcmexdev/storefront/internal/pkg/events"
)

// Template ids.
const (
	TemplateCardCatalog = "card-catalog"
	TemplateCardPreview = "card-preview"
	TemplateCardBasket  = "card-basket"
	TemplateBasket      = "basket"
	TemplateOrder       = "order"
	TemplateContacts    = "contacts"
	TemplateSuccess     = "success"
)

var (
	//go:embed templates/index.html
	indexHTML []byte

	// Static holds the stylesheet served next to the page.
	//
	//go:embed static
	Static embed.FS
)

// anchors lists the elements every template and the page must provide.
var anchors = map[string][]string{
	TemplateCardCatalog: {".card__title", ".card__category", ".card__image", ".card__price"},
	TemplateCardPreview: {".card__title", ".card__category", ".card__image", ".card__price", ".card__text", ".card__button"},
	TemplateCardBasket:  {".card__title", ".card__price", ".basket__item-index", ".basket__item-delete"},
	TemplateBasket:      {".basket__list", ".basket__button", ".basket__price"},
	TemplateOrder:       {".order__buttons .button", `[name="address"]`, `button[type="submit"]`, ".form__errors"},
	TemplateContacts:    {`[name="email"]`, `[name="phone"]`, `button[type="submit"]`, ".form__errors"},
	TemplateSuccess:     {".order-success__title", ".order-success__description", ".order-success__close"},
}

var pageAnchors = []string{
	"body",
	".page__wrapper",
	".header__basket",
	".header__basket-counter",
	".gallery",
	".notice",
	".notice__text",
	".notice__close",
	"#modal-container",
	".modal__close",
	".modal__content",
}

// ErrTemplate is returned when the page or a template lacks a required
// element.
var ErrTemplate = errors.New("view: broken template")

// Templates is the parsed page prototype and its fragment templates. It is
// read-only after loading and shared by every session.
type Templates struct {
	page *html.Node
	byID map[string]*html.Node
}

// LoadTemplates parses the embedded page.
func LoadTemplates() (*Templates, error) {
	return ParseTemplates(bytes.NewReader(indexHTML))
}

// ParseTemplates parses a page and checks every anchor the fragments rely
// on. Templates are removed from the page prototype.
func ParseTemplates(r io.Reader) (*Templates, error) {
	doc, err := dom.Parse(r)
	if err != nil {
		return nil, err
	}

	byID := dom.Templates(doc)
	for _, t := range byID {
		dom.Detach(t)
	}

	var errs []error
	for id, sels := range anchors {
		t, ok := byID[id]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: template %q missing", ErrTemplate, id))
			continue
		}
		root, err := dom.Instantiate(t)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrTemplate, err))
			continue
		}
		for _, sel := range sels {
			if dom.Query(root, sel) == nil {
				errs = append(errs, fmt.Errorf("%w: template %q lacks %s", ErrTemplate, id, sel))
			}
		}
	}
	for _, sel := range pageAnchors {
		if dom.Query(doc, sel) == nil {
			errs = append(errs, fmt.Errorf("%w: page lacks %s", ErrTemplate, sel))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	dom.MustQuery(doc, "body").AppendChild(dom.ActionsForm())
	return &Templates{page: doc, byID: byID}, nil
}

// Document returns a fresh copy of the page for one session.
func (t *Templates) Document() *html.Node {
	return dom.Clone(t.page)
}

func (t *Templates) instantiate(id string) *html.Node {
	n, err := dom.Instantiate(t.byID[id])
	if err != nil {
		panic(err)
	}
	return n
}

// Env is what every fragment needs to render and report intents.
type Env struct {
	Bus       *events.Bus
	Listeners *dom.Listeners
	Templates *Templates
}

func emit[T any](env Env, t events.Topic[T], payload T) {
	_ = events.Emit(env.Bus, t, payload)
}
