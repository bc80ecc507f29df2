package view

import (
	"golang.org/x/net/html"

	"github.com/jcmexdev/storefront/internal/pkg/dom"
	"github.com/jcmexdev/storefront/internal/pkg/events"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/topics"
)

const paymentActive = "button_alt-active"

type paymentButton struct {
	node   *html.Node
	method entity.PaymentMethod
}

// OrderForm is the delivery step: payment method and address.
type OrderForm struct {
	*Form
	buttons  []paymentButton
	selected entity.PaymentMethod
}

// NewOrderForm builds the delivery step from its template.
func NewOrderForm(env Env) *OrderForm {
	root := env.Templates.instantiate(TemplateOrder)
	o := &OrderForm{}

	// newForm looks up the submit button, so it runs before the payment
	// buttons are turned into submit buttons below.
	o.Form = newForm(env, root, true,
		func(name, value string) {
			if name == string(entity.FieldAddress) {
				emit(env, topics.AddressChangeTopic, topics.AddressChange{Address: value})
			}
		},
		func() {
			emit(env, topics.OrderSubmitTopic, topics.OrderSubmit{
				Payment: o.selected,
				Address: o.Value(string(entity.FieldAddress)),
			})
		},
	)

	for _, n := range dom.MustQueryAll(root, ".order__buttons .button") {
		// the button name is rewritten by the listener registry
		name, _ := dom.Attr(n, "name")
		method := entity.PaymentCash
		if name == "card" {
			method = entity.PaymentOnline
		}
		o.buttons = append(o.buttons, paymentButton{node: n, method: method})
		env.Listeners.OnClick(n, func() {
			o.SetPaymentMethod(method)
			emit(env, topics.PaymentChangeTopic, topics.PaymentChange{Payment: method})
		})
	}

	events.On(env.Bus, topics.FormErrorsChangedTopic, func(e topics.FormErrorsChanged) error {
		if e.Step != topics.StepDelivery {
			return nil
		}
		o.SetPaymentMethod(e.Order.Payment)
		o.Render(FormState{Valid: e.Valid, Errors: e.Errors.Messages()})
		return nil
	})
	return o
}

// SetPaymentMethod highlights the button of method; an empty method
// clears the highlight.
func (o *OrderForm) SetPaymentMethod(method entity.PaymentMethod) {
	o.selected = method
	for _, b := range o.buttons {
		dom.ToggleClass(b.node, paymentActive, b.method == method)
	}
}

// PaymentMethod returns the highlighted method.
func (o *OrderForm) PaymentMethod() entity.PaymentMethod { return o.selected }

// Clear resets the form and the payment highlight.
func (o *OrderForm) Clear() {
	o.Form.Clear()
	o.SetPaymentMethod("")
}
