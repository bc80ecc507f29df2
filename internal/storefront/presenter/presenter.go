// Package presenter wires the storefront together: it reacts to intent and
// change events, decides what the modal shows and talks to the backend.
package presenter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/jcmexdev/storefront/internal/pkg/events"
	"github.com/jcmexdev/storefront/internal/pkg/loop"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/core/state"
	"github.com/jcmexdev/storefront/internal/storefront/core/topics"
	"github.com/jcmexdev/storefront/internal/storefront/view"
)

// Notices shown when the backend cannot be reached.
const (
	NoticeCatalogFailed = "Не удалось загрузить товары. Проверьте подключение к серверу."
	NoticeOrderFailed   = "Не удалось оформить заказ. Попробуйте ещё раз."
)

// Runner starts blocking work and applies its continuation later on the
// session loop.
type Runner interface {
	Go(ctx context.Context, work loop.Work)
}

// Config tunes the presenter.
type Config struct {
	// RequestTimeout bounds every backend call. Zero means no timeout.
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// Presenter is the orchestration layer of one session.
type Presenter struct {
	// ctx scopes the backend calls of the session; handlers have no
	// request context of their own.
	ctx context.Context

	env    view.Env
	state  *state.AppState
	api    ports.ProductAPI
	runner Runner
	cfg    Config

	Page     *view.Page
	Modal    *view.Modal
	Basket   *view.Basket
	Order    *view.OrderForm
	Contacts *view.ContactsForm
	Success  *view.Success

	busy bool
	// key identifies the current checkout to the backend.
	key string
}

// New builds the fragments of doc and subscribes the orchestration
// handlers. Fragments subscribe before the presenter, so they have
// re-rendered by the time an orchestration handler runs.
func New(ctx context.Context, env view.Env, doc *html.Node, st *state.AppState, api ports.ProductAPI, runner Runner, cfg Config) *Presenter {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	p := &Presenter{
		ctx:      ctx,
		env:      env,
		state:    st,
		api:      api,
		runner:   runner,
		cfg:      cfg,
		Page:     view.NewPage(env, doc),
		Modal:    view.NewModal(env, doc),
		Basket:   view.NewBasket(env),
		Order:    view.NewOrderForm(env),
		Contacts: view.NewContactsForm(env),
		Success:  view.NewSuccess(env),
	}
	p.subscribe()
	return p
}

func (p *Presenter) subscribe() {
	b := p.env.Bus

	events.On(b, topics.CatalogChangedTopic, p.onCatalogChanged)
	events.On(b, topics.CardSelectTopic, func(e topics.CardSelect) error {
		p.state.SetPreview(e.Product)
		return nil
	})
	events.On(b, topics.PreviewChangedTopic, p.onPreviewChanged)
	events.On(b, topics.PreviewBuyTopic, func(e topics.PreviewBuy) error {
		p.state.AddToBasket(e.Product)
		p.Modal.Close()
		return nil
	})
	events.On(b, topics.PreviewRemoveTopic, func(e topics.PreviewRemove) error {
		p.state.RemoveFromBasket(e.ID)
		p.Modal.Close()
		return nil
	})

	events.On(b, topics.BasketOpenTopic, func(struct{}) error {
		p.Modal.Render(p.Basket.Render(view.BasketDataOf(p.state.Basket())))
		return nil
	})
	events.On(b, topics.BasketRemoveTopic, func(e topics.BasketRemove) error {
		p.state.RemoveFromBasket(e.ID)
		return nil
	})
	// a different basket is a different order
	events.On(b, topics.BasketChangedTopic, func(topics.BasketChanged) error {
		if !p.busy {
			p.key = ""
		}
		return nil
	})

	// the draft is frozen while the order carrying it is in flight
	events.On(b, topics.OrderOpenTopic, p.onOrderOpen)
	events.On(b, topics.PaymentChangeTopic, func(e topics.PaymentChange) error {
		if p.busy {
			return nil
		}
		return p.state.SetPaymentMethod(e.Payment)
	})
	events.On(b, topics.AddressChangeTopic, func(e topics.AddressChange) error {
		if p.busy {
			return nil
		}
		return p.state.SetOrderField(entity.FieldAddress, e.Address)
	})
	events.On(b, topics.OrderSubmitTopic, p.onOrderSubmit)

	events.On(b, topics.EmailChangeTopic, func(e topics.EmailChange) error {
		if p.busy {
			return nil
		}
		return p.state.SetOrderField(entity.FieldEmail, e.Email)
	})
	events.On(b, topics.PhoneChangeTopic, func(e topics.PhoneChange) error {
		if p.busy {
			return nil
		}
		return p.state.SetOrderField(entity.FieldPhone, e.Phone)
	})
	events.On(b, topics.ContactsSubmitTopic, p.onContactsSubmit)

	events.On(b, topics.OrderPlacedTopic, p.onOrderPlaced)
	events.On(b, topics.SuccessCloseTopic, func(struct{}) error {
		p.Modal.Close()
		return nil
	})
}

// Load fetches the catalog.
func (p *Presenter) Load() {
	p.runner.Go(p.ctx, func(ctx context.Context) func() {
		ctx, cancel := p.timeout(ctx)
		defer cancel()

		catalog, err := p.api.GetProducts(ctx)
		return func() {
			if err != nil {
				p.cfg.Logger.ErrorContext(ctx, "failed to load catalog", "error", err)
				p.notice(NoticeCatalogFailed)
				return
			}
			p.cfg.Logger.InfoContext(ctx, "catalog loaded", "items", len(catalog.Items))
			p.state.SetCatalog(catalog.Items)
		}
	})
}

// Busy reports whether an order is in flight.
func (p *Presenter) Busy() bool { return p.busy }

// Retained returns the fragment roots that live outside the document
// between renders.
func (p *Presenter) Retained() []*html.Node {
	return []*html.Node{p.Basket.Root(), p.Order.Root(), p.Contacts.Root(), p.Success.Root()}
}

func (p *Presenter) onCatalogChanged(e topics.CatalogChanged) error {
	cards := make([]*html.Node, len(e.Catalog))
	for i, item := range e.Catalog {
		cards[i] = view.RenderCard(p.env, view.CatalogCardData{Product: item})
	}
	p.Page.SetCatalog(cards)
	return nil
}

func (p *Presenter) onPreviewChanged(e topics.PreviewChanged) error {
	p.Modal.Render(view.RenderCard(p.env, view.PreviewCardData{
		Product:  e.Product,
		InBasket: p.state.IsInBasket(e.Product.ID),
	}))
	return nil
}

func (p *Presenter) onOrderOpen(struct{}) error {
	p.state.BeginCheckout()
	p.Modal.Render(p.Order.Render(view.FormState{}))

	// a draft kept from an earlier visit is shown with its current verdict
	if d := p.state.Order(); d.Payment != "" || d.Address != "" {
		p.state.ValidateOrder()
	}
	return nil
}

func (p *Presenter) onOrderSubmit(e topics.OrderSubmit) error {
	if p.busy {
		return nil
	}
	if e.Payment != "" {
		if err := p.state.SetPaymentMethod(e.Payment); err != nil {
			return err
		}
	}
	if err := p.state.SetOrderField(entity.FieldAddress, e.Address); err != nil {
		return err
	}
	if errs := p.state.ValidateOrder(); !errs.Valid() {
		return nil
	}
	p.Modal.Render(p.Contacts.Render(view.FormState{Valid: true}))
	return nil
}

func (p *Presenter) onContactsSubmit(e topics.ContactsSubmit) error {
	if p.busy {
		p.cfg.Logger.InfoContext(p.ctx, "order already in flight, submit ignored")
		return nil
	}
	if err := p.state.SetOrderField(entity.FieldEmail, e.Email); err != nil {
		return err
	}
	if err := p.state.SetOrderField(entity.FieldPhone, e.Phone); err != nil {
		return err
	}
	if errs := p.state.ValidateContacts(); !errs.Valid() {
		return nil
	}

	order, err := p.state.PendingOrder()
	if err != nil {
		if errors.Is(err, state.ErrEmptyBasket) {
			p.notice("Корзина пуста")
			return nil
		}
		return err
	}
	if p.key == "" {
		p.key = uuid.NewString()
	}
	order.IdempotencyKey = p.key

	p.setBusy(true)
	p.runner.Go(p.ctx, func(ctx context.Context) func() {
		ctx, cancel := p.timeout(ctx)
		defer cancel()

		result, err := p.api.SubmitOrder(ctx, order)
		return func() {
			p.setBusy(false)
			if err != nil {
				p.cfg.Logger.ErrorContext(ctx, "failed to submit order", "error", err, "items", len(order.Items))
				if errors.Is(err, ports.ErrRejected) {
					p.key = ""
				}
				p.notice(NoticeOrderFailed)
				return
			}
			p.cfg.Logger.InfoContext(ctx, "order placed", "order_id", result.ID, "total", result.Total.String())
			p.key = ""
			if err := p.state.CompleteOrder(result); err != nil {
				p.cfg.Logger.ErrorContext(ctx, "order acknowledged after checkout was submitted", "order_id", result.ID, "error", err)
			}
		}
	})
	return nil
}

func (p *Presenter) onOrderPlaced(e topics.OrderPlaced) error {
	p.Order.Clear()
	p.Contacts.Clear()
	p.Modal.Render(p.Success.Render(view.SuccessData{Total: e.Result.Total.Decimal}))
	return nil
}

func (p *Presenter) setBusy(busy bool) {
	p.busy = busy
	_ = events.Emit(p.env.Bus, topics.CheckoutBusyTopic, topics.CheckoutBusy{Busy: busy})
}

func (p *Presenter) notice(msg string) {
	_ = events.Emit(p.env.Bus, topics.NoticeTopic, topics.Notice{Message: msg})
}

func (p *Presenter) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.cfg.RequestTimeout)
}
