// Package topics declares every storefront event together with its payload
// type. Change events are published by the state holder after a committed
// mutation; intent events are published by view fragments and describe a
// user action.
package topics

import (
	"golang.org/x/net/html"

	"github.com/jcmexdev/storefront/internal/pkg/events"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

// Step identifies one of the two checkout validation domains.
type Step string

const (
	StepDelivery Step = "delivery"
	StepContacts Step = "contacts"
)

// Change event payloads.
type (
	CatalogChanged struct {
		Catalog []entity.Product
	}

	PreviewChanged struct {
		Product entity.Product
	}

	BasketChanged struct {
		Basket entity.Basket
	}

	OrderReady struct {
		Order entity.OrderDraft
	}

	// FormErrorsChanged carries the freshly computed errors of one step and
	// the draft they were computed from.
	FormErrorsChanged struct {
		Step   Step
		Errors entity.FormErrors
		Valid  bool
		Order  entity.OrderDraft
	}

	OrderPlaced struct {
		Result entity.OrderResult
	}
)

// Intent event payloads.
type (
	CardSelect struct {
		Product entity.Product
	}

	PreviewBuy struct {
		Product entity.Product
	}

	PreviewRemove struct {
		ID string
	}

	BasketRemove struct {
		ID string
	}

	PaymentChange struct {
		Payment entity.PaymentMethod
	}

	AddressChange struct {
		Address string
	}

	EmailChange struct {
		Email string
	}

	PhoneChange struct {
		Phone string
	}

	OrderSubmit struct {
		Payment entity.PaymentMethod
		Address string
	}

	ContactsSubmit struct {
		Email string
		Phone string
	}
)

// Modal and page chrome payloads.
type (
	ModalOpen struct {
		Content *html.Node
	}

	Notice struct {
		Message string
	}

	CheckoutBusy struct {
		Busy bool
	}
)

// Change events.
var (
	CatalogChangedTopic    = events.NewTopic[CatalogChanged]("catalog-changed")
	PreviewChangedTopic    = events.NewTopic[PreviewChanged]("preview-changed")
	BasketChangedTopic     = events.NewTopic[BasketChanged]("basket-changed")
	OrderReadyTopic        = events.NewTopic[OrderReady]("order-ready")
	FormErrorsChangedTopic = events.NewTopic[FormErrorsChanged]("form-errors-changed")
	OrderPlacedTopic       = events.NewTopic[OrderPlaced]("order-placed")
)

// Intent events.
var (
	CardSelectTopic     = events.NewTopic[CardSelect]("card-select")
	PreviewBuyTopic     = events.NewTopic[PreviewBuy]("preview-buy")
	PreviewRemoveTopic  = events.NewTopic[PreviewRemove]("preview-remove")
	BasketOpenTopic     = events.NewTopic[struct{}]("basket-open")
	BasketRemoveTopic   = events.NewTopic[BasketRemove]("basket-remove")
	OrderOpenTopic      = events.NewTopic[struct{}]("order-open")
	PaymentChangeTopic  = events.NewTopic[PaymentChange]("order-payment-change")
	AddressChangeTopic  = events.NewTopic[AddressChange]("order-address-change")
	OrderSubmitTopic    = events.NewTopic[OrderSubmit]("order-submit")
	EmailChangeTopic    = events.NewTopic[EmailChange]("contacts-email-change")
	PhoneChangeTopic    = events.NewTopic[PhoneChange]("contacts-phone-change")
	ContactsSubmitTopic = events.NewTopic[ContactsSubmit]("contacts-submit")
	SuccessCloseTopic   = events.NewTopic[struct{}]("success-close")
	NoticeDismissTopic  = events.NewTopic[struct{}]("notice-dismiss")
)

// Modal, page chrome and orchestration events.
var (
	ModalOpenTopic    = events.NewTopic[ModalOpen]("modal-open")
	ModalCloseTopic   = events.NewTopic[struct{}]("modal-close")
	NoticeTopic       = events.NewTopic[Notice]("notice")
	CheckoutBusyTopic = events.NewTopic[CheckoutBusy]("checkout-busy")
)
