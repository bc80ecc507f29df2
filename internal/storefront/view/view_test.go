package view_test

import (
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/jcmexdev/storefront/internal/pkg/dom"
	"github.com/jcmexdev/storefront/internal/pkg/events"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/topics"
	"github.com/jcmexdev/storefront/internal/storefront/view"
)

type recorder struct {
	names    []string
	payloads []any
}

func (r *recorder) last(name string) any {
	for i := len(r.names) - 1; i >= 0; i-- {
		if r.names[i] == name {
			return r.payloads[i]
		}
	}
	return nil
}

func newEnv(t *testing.T) (view.Env, *recorder) {
	t.Helper()

	tmpls, err := view.LoadTemplates()
	require.NoError(t, err)

	env := view.Env{
		Bus:       events.New(events.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))),
		Listeners: dom.NewListeners(),
		Templates: tmpls,
	}
	rec := &recorder{}
	events.OnAny(env.Bus, func(name string, payload any) error {
		rec.names = append(rec.names, name)
		rec.payloads = append(rec.payloads, payload)
		return nil
	})
	return env, rec
}

func click(t *testing.T, env view.Env, root, button *html.Node) {
	t.Helper()
	id, ok := dom.Attr(button, "value")
	require.True(t, ok, "button has no listener")
	require.NoError(t, env.Listeners.Dispatch(root, url.Values{dom.ActionField: {id}}))
}

func post(t *testing.T, env view.Env, form *html.Node, values url.Values) {
	t.Helper()
	id, ok := dom.Attr(dom.MustQuery(form, `input[name="submit"]`), "value")
	require.True(t, ok)
	values.Set(dom.SubmitField, id)
	require.NoError(t, env.Listeners.Dispatch(form, values))
}

func spaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func TestLoadTemplates(t *testing.T) {
	t.Parallel()

	tmpls, err := view.LoadTemplates()
	require.NoError(t, err)

	a, b := tmpls.Document(), tmpls.Document()
	assert.NotSame(t, a, b)
	assert.Nil(t, dom.Query(a, "template"), "templates are not part of the page")
	assert.NotNil(t, dom.Query(a, "#"+dom.ActionsFormID))
}

func TestParseTemplates_Broken(t *testing.T) {
	t.Parallel()

	_, err := view.ParseTemplates(strings.NewReader(`<html><body>
		<template id="basket"><div class="basket"></div></template>
	</body></html>`))

	require.ErrorIs(t, err, view.ErrTemplate)
	assert.Contains(t, err.Error(), `template "order" missing`)
	assert.Contains(t, err.Error(), `template "basket" lacks .basket__list`)
	assert.Contains(t, err.Error(), "page lacks .gallery")
}

func TestFormatPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		price entity.Price
		want  string
	}{
		{price: entity.PriceOf(750), want: "750 синапсов"},
		{price: entity.PriceOf(1450), want: "1 450 синапсов"},
		{price: entity.NewPrice(decimal.RequireFromString("12.5")), want: "12,5 синапсов"},
		{price: entity.Priceless(), want: "Бесценно"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, spaces(view.FormatPrice(tt.price)))
		})
	}
}

func TestCatalogCard(t *testing.T) {
	t.Parallel()
	env, rec := newEnv(t)
	p := entity.Product{
		ID:       "p-1",
		Title:    "+1 час в сутках",
		Category: entity.CategorySoftSkill,
		Image:    "https://cdn.example/clock.svg",
		Price:    entity.PriceOf(750),
	}

	card := view.RenderCard(env, view.CatalogCardData{Product: p})

	assert.Equal(t, p.Title, dom.Text(dom.MustQuery(card, ".card__title")))
	assert.Equal(t, "750 синапсов", spaces(dom.Text(dom.MustQuery(card, ".card__price"))))
	category := dom.MustQuery(card, ".card__category")
	assert.True(t, dom.HasClass(category, "card__category_soft"))
	src, _ := dom.Attr(dom.MustQuery(card, ".card__image"), "src")
	assert.Equal(t, p.Image, src)

	click(t, env, card, card)
	assert.Equal(t, []string{"card-select"}, rec.names)
	assert.Equal(t, p, rec.last("card-select").(topics.CardSelect).Product)
}

func TestCatalogCard_UnknownCategory(t *testing.T) {
	t.Parallel()
	env, _ := newEnv(t)

	card := view.RenderCard(env, view.CatalogCardData{Product: entity.Product{ID: "x", Category: "мем"}})

	assert.True(t, dom.HasClass(dom.MustQuery(card, ".card__category"), "card__category_other"))
	assert.Equal(t, "Бесценно", dom.Text(dom.MustQuery(card, ".card__price")))
}

func TestPreviewCard(t *testing.T) {
	t.Parallel()

	priced := entity.Product{ID: "p-1", Title: "Бэкенд-антистресс", Price: entity.PriceOf(1000), Description: "desc"}
	free := entity.Product{ID: "p-2", Title: "Мамка-таймер", Price: entity.Priceless()}

	tests := []struct {
		name      string
		data      view.PreviewCardData
		caption   string
		disabled  bool
		wantEvent string
	}{
		{
			name:     "priceless product cannot be bought",
			data:     view.PreviewCardData{Product: free},
			caption:  view.ButtonUnavailable,
			disabled: true,
		},
		{
			name:      "product in basket offers removal",
			data:      view.PreviewCardData{Product: priced, InBasket: true},
			caption:   view.ButtonRemove,
			wantEvent: "preview-remove",
		},
		{
			name:      "product not in basket offers purchase",
			data:      view.PreviewCardData{Product: priced},
			caption:   view.ButtonBuy,
			wantEvent: "preview-buy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env, rec := newEnv(t)

			card := view.RenderCard(env, tt.data)
			button := dom.MustQuery(card, ".card__button")

			assert.Equal(t, tt.caption, dom.Text(button))
			assert.Equal(t, tt.disabled, dom.IsDisabled(button))
			assert.Equal(t, tt.data.Product.Description, dom.Text(dom.MustQuery(card, ".card__text")))

			if tt.wantEvent == "" {
				_, hasListener := dom.Attr(button, "value")
				assert.False(t, hasListener)
				return
			}
			click(t, env, card, button)
			assert.Equal(t, []string{tt.wantEvent}, rec.names)
		})
	}
}

func TestBasketLine(t *testing.T) {
	t.Parallel()
	env, rec := newEnv(t)

	line := view.RenderCard(env, view.BasketLineData{
		Index: 2,
		Item:  entity.BasketItem{ID: "p-9", Title: "Фреймворк куки судьбы", Price: decimal.NewFromInt(2500)},
	})

	assert.Equal(t, "3", dom.Text(dom.MustQuery(line, ".basket__item-index")))
	assert.Equal(t, "2 500 синапсов", spaces(dom.Text(dom.MustQuery(line, ".card__price"))))

	click(t, env, line, dom.MustQuery(line, ".basket__item-delete"))
	assert.Equal(t, topics.BasketRemove{ID: "p-9"}, rec.last("basket-remove"))
}

func TestBasket_RendersOnlyWhileMounted(t *testing.T) {
	t.Parallel()
	env, rec := newEnv(t)
	doc := env.Templates.Document()
	modal := view.NewModal(env, doc)
	basket := view.NewBasket(env)

	one := entity.Basket{Items: []entity.BasketItem{{ID: "a", Title: "A", Price: decimal.NewFromInt(100)}}}
	two := entity.Basket{Items: append(one.Clone().Items, entity.BasketItem{ID: "b", Title: "B", Price: decimal.NewFromInt(50)})}

	root := basket.Render(view.BasketDataOf(entity.Basket{}))
	assert.Equal(t, "Корзина пуста", dom.Text(dom.MustQuery(root, ".basket__list")))
	assert.True(t, dom.IsDisabled(dom.MustQuery(root, ".basket__button")))

	// not mounted: basket-changed is ignored
	require.NoError(t, events.Emit(env.Bus, topics.BasketChangedTopic, topics.BasketChanged{Basket: one}))
	assert.Empty(t, dom.QueryAll(root, ".basket__item"))

	modal.Render(basket.Render(view.BasketDataOf(one)))
	assert.True(t, basket.Mounted())
	require.NoError(t, events.Emit(env.Bus, topics.BasketChangedTopic, topics.BasketChanged{Basket: two}))
	assert.Len(t, dom.QueryAll(root, ".basket__item"), 2)
	assert.Equal(t, "150 синапсов", spaces(dom.Text(dom.MustQuery(root, ".basket__price"))))
	assert.False(t, dom.IsDisabled(dom.MustQuery(root, ".basket__button")))

	click(t, env, doc, dom.MustQuery(root, ".basket__button"))
	assert.NotNil(t, rec.last("order-open"))

	modal.Close()
	assert.False(t, basket.Mounted())
	require.NoError(t, events.Emit(env.Bus, topics.BasketChangedTopic, topics.BasketChanged{Basket: one}))
	assert.Len(t, dom.QueryAll(root, ".basket__item"), 2)

	// another fragment in the modal does not count as mounted
	modal.Render(dom.Element("div", "other"))
	assert.False(t, basket.Mounted())
}

func TestPageAndModal(t *testing.T) {
	t.Parallel()
	env, rec := newEnv(t)
	doc := env.Templates.Document()
	page := view.NewPage(env, doc)
	modal := view.NewModal(env, doc)

	require.NoError(t, events.Emit(env.Bus, topics.BasketChangedTopic, topics.BasketChanged{
		Basket: entity.Basket{Items: make([]entity.BasketItem, 3)},
	}))
	assert.Equal(t, "3", page.Counter())

	content := dom.Element("p", "hello")
	modal.Render(content)
	assert.True(t, modal.Active())
	assert.True(t, page.Locked())
	assert.Same(t, content, modal.Content())
	assert.Same(t, content, rec.last("modal-open").(topics.ModalOpen).Content)

	click(t, env, doc, dom.MustQuery(doc, ".modal__close"))
	assert.False(t, modal.Active())
	assert.False(t, page.Locked())
	assert.Nil(t, dom.MustQuery(doc, ".modal__content").FirstChild)

	click(t, env, doc, dom.MustQuery(doc, ".header__basket"))
	assert.NotNil(t, rec.last("basket-open"))

	require.NoError(t, events.Emit(env.Bus, topics.NoticeTopic, topics.Notice{Message: "offline"}))
	assert.Equal(t, "offline", page.Notice())
	click(t, env, doc, dom.MustQuery(doc, ".notice__close"))
	assert.Empty(t, page.Notice())
	assert.NotNil(t, rec.last("notice-dismiss"))

	page.SetCatalog([]*html.Node{dom.Element("button", "a"), dom.Element("button", "b")})
	assert.Len(t, dom.QueryAll(dom.MustQuery(doc, ".gallery"), "button"), 2)
}

func TestOrderForm(t *testing.T) {
	t.Parallel()
	env, rec := newEnv(t)
	form := view.NewOrderForm(env)
	root := form.Root()

	assert.True(t, form.SubmitDisabled())

	// errors of the other step are ignored
	require.NoError(t, events.Emit(env.Bus, topics.FormErrorsChangedTopic, topics.FormErrorsChanged{
		Step:   topics.StepContacts,
		Errors: entity.FormErrors{entity.FieldEmail: "bad email"},
	}))
	assert.Empty(t, form.ErrorText())

	require.NoError(t, events.Emit(env.Bus, topics.FormErrorsChangedTopic, topics.FormErrorsChanged{
		Step:   topics.StepDelivery,
		Errors: entity.FormErrors{entity.FieldAddress: "Необходимо указать адрес доставки"},
		Order:  entity.OrderDraft{Payment: entity.PaymentCash},
	}))
	assert.Equal(t, "Необходимо указать адрес доставки", form.ErrorText())
	assert.Equal(t, entity.PaymentCash, form.PaymentMethod())
	assert.True(t, dom.HasClass(root, "form_invalid"))

	buttons := dom.QueryAll(root, ".order__buttons .button")
	require.Len(t, buttons, 2)
	assert.False(t, dom.HasClass(buttons[0], "button_alt-active"))
	assert.True(t, dom.HasClass(buttons[1], "button_alt-active"))

	// clicking a payment button posts the form: the address is synced first
	id, _ := dom.Attr(buttons[0], "value")
	post(t, env, root, url.Values{dom.ActionField: {id}, "address": {"Невский пр., 28"}})
	assert.Equal(t, []string{"form-errors-changed", "form-errors-changed", "order-address-change", "order-payment-change"}, rec.names)
	assert.Equal(t, entity.PaymentOnline, form.PaymentMethod())
	assert.True(t, dom.HasClass(buttons[0], "button_alt-active"))

	require.NoError(t, events.Emit(env.Bus, topics.FormErrorsChangedTopic, topics.FormErrorsChanged{
		Step: topics.StepDelivery, Errors: entity.FormErrors{}, Valid: true,
		Order: entity.OrderDraft{Payment: entity.PaymentOnline, Address: "Невский пр., 28"},
	}))
	assert.False(t, form.SubmitDisabled())

	post(t, env, root, url.Values{"address": {"Невский пр., 28"}})
	assert.Equal(t, topics.OrderSubmit{Payment: entity.PaymentOnline, Address: "Невский пр., 28"}, rec.last("order-submit"))

	form.Clear()
	assert.Empty(t, form.Value("address"))
	assert.Empty(t, form.PaymentMethod())
	assert.True(t, form.SubmitDisabled())
	assert.Empty(t, form.ErrorText())
}

func TestContactsForm(t *testing.T) {
	t.Parallel()
	env, rec := newEnv(t)
	form := view.NewContactsForm(env)
	root := form.Root()

	require.NoError(t, events.Emit(env.Bus, topics.FormErrorsChangedTopic, topics.FormErrorsChanged{
		Step:   topics.StepDelivery,
		Errors: entity.FormErrors{entity.FieldPayment: "pay"},
	}))
	assert.Empty(t, form.ErrorText())

	require.NoError(t, events.Emit(env.Bus, topics.FormErrorsChangedTopic, topics.FormErrorsChanged{
		Step:   topics.StepContacts,
		Errors: entity.FormErrors{entity.FieldPhone: "Некорректный формат телефона"},
	}))
	assert.Equal(t, "Некорректный формат телефона", form.ErrorText())
	assert.False(t, form.SubmitDisabled(), "corrected values can be posted again")

	rec.names = nil
	post(t, env, root, url.Values{"email": {"user@example.com"}, "phone": {"+7 999 123-45-67"}})
	assert.Equal(t, []string{"contacts-email-change", "contacts-phone-change", "contacts-submit"}, rec.names)
	assert.Equal(t, topics.ContactsSubmit{Email: "user@example.com", Phone: "+7 999 123-45-67"}, rec.last("contacts-submit"))

	require.NoError(t, events.Emit(env.Bus, topics.CheckoutBusyTopic, topics.CheckoutBusy{Busy: true}))
	assert.True(t, form.Busy())
	assert.True(t, form.SubmitDisabled())

	require.NoError(t, events.Emit(env.Bus, topics.CheckoutBusyTopic, topics.CheckoutBusy{Busy: false}))
	assert.False(t, form.SubmitDisabled())
}

func TestSuccess(t *testing.T) {
	t.Parallel()
	env, rec := newEnv(t)
	s := view.NewSuccess(env)

	root := s.Render(view.SuccessData{Total: decimal.NewFromInt(1500)})

	assert.Equal(t, "Заказ оформлен", dom.Text(dom.MustQuery(root, ".order-success__title")))
	assert.Equal(t, "Списано 1 500 синапсов", spaces(dom.Text(dom.MustQuery(root, ".order-success__description"))))

	click(t, env, root, dom.MustQuery(root, ".order-success__close"))
	assert.Equal(t, []string{"success-close"}, rec.names)
}
