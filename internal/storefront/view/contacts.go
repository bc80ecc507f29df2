package view

import (
	"github.com/jcmexdev/storefront/internal/pkg/dom"
	"github.com/jcmexdev/storefront/internal/pkg/events"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/topics"
)

// ContactsForm is the contacts step: email and phone. Its submit button
// stays enabled on errors so the corrected values can be posted again; it
// is disabled only while an order is in flight.
type ContactsForm struct {
	*Form
	busy bool
}

// NewContactsForm builds the contacts step from its template.
func NewContactsForm(env Env) *ContactsForm {
	root := env.Templates.instantiate(TemplateContacts)
	c := &ContactsForm{}

	c.Form = newForm(env, root, false,
		func(name, value string) {
			switch entity.OrderField(name) {
			case entity.FieldEmail:
				emit(env, topics.EmailChangeTopic, topics.EmailChange{Email: value})
			case entity.FieldPhone:
				emit(env, topics.PhoneChangeTopic, topics.PhoneChange{Phone: value})
			}
		},
		func() {
			emit(env, topics.ContactsSubmitTopic, topics.ContactsSubmit{
				Email: c.Value(string(entity.FieldEmail)),
				Phone: c.Value(string(entity.FieldPhone)),
			})
		},
	)

	events.On(env.Bus, topics.FormErrorsChangedTopic, func(e topics.FormErrorsChanged) error {
		if e.Step != topics.StepContacts {
			return nil
		}
		c.Render(FormState{Valid: e.Valid, Errors: e.Errors.Messages()})
		return nil
	})
	events.On(env.Bus, topics.CheckoutBusyTopic, func(e topics.CheckoutBusy) error {
		c.SetBusy(e.Busy)
		return nil
	})
	return c
}

// SetBusy disables the submit button while an order is in flight.
func (c *ContactsForm) SetBusy(busy bool) {
	c.busy = busy
	dom.SetDisabled(c.submit, busy)
}

// Busy reports whether an order is in flight.
func (c *ContactsForm) Busy() bool { return c.busy }
