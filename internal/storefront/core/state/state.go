// Package state holds the storefront application state.
//
// AppState owns the catalog, the preview, the basket with its selection set,
// the order draft and the checkout phase. Every mutation is announced on the
// event bus; readers never see a partially applied change because events
// are emitted only after the mutation is committed. Payloads are copies, so
// subscribers cannot reach back into the state.
//
// AppState is not safe for concurrent use. A session drives it from a
// single loop.
package state

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront/internal/pkg/events"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/topics"
)

var (
	// ErrUnknownField is returned by SetOrderField for fields outside the draft.
	ErrUnknownField = errors.New("state: unknown order field")

	// ErrNotReady is returned when the order is requested before both
	// checkout steps have validated.
	ErrNotReady = errors.New("state: order is not ready")

	// ErrSubmitted is returned by CompleteOrder once the checkout is already
	// submitted.
	ErrSubmitted = errors.New("state: order already submitted")

	// ErrEmptyBasket is returned when an order is requested for an empty basket.
	ErrEmptyBasket = errors.New("state: basket is empty")
)

// AppState is the central application state holder.
type AppState struct {
	bus *events.Bus

	catalog   []entity.Product
	preview   string
	basket    entity.Basket
	selection map[string]int
	order     entity.OrderDraft
	phase     Phase
}

// New returns an empty state announcing its changes on bus.
func New(bus *events.Bus) *AppState {
	if bus == nil {
		panic("state.New: nil bus")
	}
	return &AppState{
		bus:       bus,
		selection: make(map[string]int),
	}
}

// SetCatalog replaces the catalog.
func (s *AppState) SetCatalog(items []entity.Product) {
	s.catalog = slices.Clone(items)
	emit(s.bus, topics.CatalogChangedTopic, topics.CatalogChanged{Catalog: s.Catalog()})
}

// Catalog returns a copy of the catalog.
func (s *AppState) Catalog() []entity.Product {
	return slices.Clone(s.catalog)
}

// SetPreview marks item as the product shown in the preview.
func (s *AppState) SetPreview(item entity.Product) {
	s.preview = item.ID
	emit(s.bus, topics.PreviewChangedTopic, topics.PreviewChanged{Product: item})
}

// Preview returns the id of the previewed product.
func (s *AppState) Preview() string { return s.preview }

// AddToBasket appends a line for item. Priceless products are ignored and
// produce no event. Adding a product twice yields two lines.
func (s *AppState) AddToBasket(item entity.Product) {
	amount, ok := item.Price.Amount()
	if !ok {
		return
	}
	s.basket.Items = append(s.basket.Items, entity.BasketItem{
		ID:    item.ID,
		Title: item.Title,
		Price: amount,
	})
	s.selection[item.ID]++
	s.emitBasket()
}

// RemoveFromBasket removes the first line with the given product id.
// Removing an absent id is a no-op and produces no event.
func (s *AppState) RemoveFromBasket(id string) {
	i := slices.IndexFunc(s.basket.Items, func(it entity.BasketItem) bool {
		return it.ID == id
	})
	if i < 0 {
		return
	}
	s.basket.Items = slices.Delete(s.basket.Items, i, i+1)
	if s.selection[id]--; s.selection[id] <= 0 {
		delete(s.selection, id)
	}
	s.emitBasket()
}

// ClearBasket empties the basket and the selection set.
func (s *AppState) ClearBasket() {
	s.basket.Items = nil
	clear(s.selection)
	s.emitBasket()
}

// Basket returns a copy of the basket.
func (s *AppState) Basket() entity.Basket { return s.basket.Clone() }

// IsInBasket reports whether at least one line holds the product.
func (s *AppState) IsInBasket(id string) bool {
	return s.selection[id] > 0
}

// Selection returns the sorted ids of the products in the basket.
func (s *AppState) Selection() []string {
	return slices.Sorted(maps.Keys(s.selection))
}

// TotalPrice sums the current basket lines.
func (s *AppState) TotalPrice() decimal.Decimal {
	return s.basket.Total()
}

// SetOrderField stores value into the draft and re-runs the delivery
// validation. Payment values must name a known method. While the order is
// submitted the draft is frozen and edits are ignored.
func (s *AppState) SetOrderField(field entity.OrderField, value string) error {
	if s.phase == PhaseSubmitted {
		return nil
	}
	switch field {
	case entity.FieldPayment:
		m, err := entity.ParsePaymentMethod(value)
		if err != nil {
			return fmt.Errorf("state: set %s: %w", field, err)
		}
		s.order.Payment = m
	case entity.FieldAddress:
		s.order.Address = value
	case entity.FieldEmail:
		s.order.Email = value
		s.invalidateContacts()
	case entity.FieldPhone:
		s.order.Phone = value
		s.invalidateContacts()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	s.ValidateOrder()
	return nil
}

// SetPaymentMethod stores the payment method and re-runs the delivery
// validation.
func (s *AppState) SetPaymentMethod(method entity.PaymentMethod) error {
	return s.SetOrderField(entity.FieldPayment, string(method))
}

// PaymentMethod returns the selected payment method, empty if none.
func (s *AppState) PaymentMethod() entity.PaymentMethod { return s.order.Payment }

// Order returns the current draft.
func (s *AppState) Order() entity.OrderDraft { return s.order }

// Phase returns the checkout phase.
func (s *AppState) Phase() Phase { return s.phase }

// ValidateOrder recomputes the delivery step errors, announces them and,
// when the step is valid, announces the order as ready.
func (s *AppState) ValidateOrder() entity.FormErrors {
	errs := check(deliveryForm{
		Payment: string(s.order.Payment),
		Address: s.order.Address,
	})
	s.report(topics.StepDelivery, errs)
	if errs.Valid() {
		emit(s.bus, topics.OrderReadyTopic, topics.OrderReady{Order: s.order})
	}
	return errs
}

// ValidateContacts recomputes the contacts step errors and announces them.
func (s *AppState) ValidateContacts() entity.FormErrors {
	errs := check(contactsForm{
		Email: s.order.Email,
		Phone: s.order.Phone,
	})
	s.report(topics.StepContacts, errs)
	return errs
}

// BeginCheckout starts a new checkout once the previous order was
// submitted. It has no effect while a checkout is in progress.
func (s *AppState) BeginCheckout() {
	if s.phase == PhaseSubmitted {
		s.phase = PhaseEmpty
	}
}

// PendingOrder builds the backend request from the draft and the basket.
func (s *AppState) PendingOrder() (entity.Order, error) {
	if s.phase != PhaseContactsValid {
		return entity.Order{}, fmt.Errorf("%w: phase %s", ErrNotReady, s.phase)
	}
	if s.basket.Count() == 0 {
		return entity.Order{}, ErrEmptyBasket
	}
	return entity.NewOrder(s.order, s.basket), nil
}

// CompleteOrder records a backend acknowledgement: the basket is cleared,
// the draft is reset and the checkout becomes submitted. The backend has
// already placed the order, so the current validation phase does not matter.
func (s *AppState) CompleteOrder(result entity.OrderResult) error {
	if s.phase == PhaseSubmitted {
		return ErrSubmitted
	}
	s.phase = PhaseSubmitted
	s.order = entity.OrderDraft{}
	s.ClearBasket()
	emit(s.bus, topics.OrderPlacedTopic, topics.OrderPlaced{Result: result})
	return nil
}

// invalidateContacts drops a contacts result computed for older values.
func (s *AppState) invalidateContacts() {
	if s.phase == PhaseContactsInvalid || s.phase == PhaseContactsValid {
		s.phase = PhaseDeliveryValid
	}
}

func (s *AppState) report(step topics.Step, errs entity.FormErrors) {
	s.phase = s.phase.next(step, errs.Valid())
	emit(s.bus, topics.FormErrorsChangedTopic, topics.FormErrorsChanged{
		Step:   step,
		Errors: maps.Clone(errs),
		Valid:  errs.Valid(),
		Order:  s.order,
	})
}

func (s *AppState) emitBasket() {
	emit(s.bus, topics.BasketChangedTopic, topics.BasketChanged{Basket: s.Basket()})
}

// emit publishes a change event. Handler failures are isolated and logged
// by the bus and never roll back a committed mutation.
func emit[T any](bus *events.Bus, t events.Topic[T], payload T) {
	_ = events.Emit(bus, t, payload)
}
