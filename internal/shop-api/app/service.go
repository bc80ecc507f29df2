// Package app holds the shop backend's use cases: the catalog queries and
// order placement.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront/internal/shop-api/domain"
	"github.com/jcmexdev/storefront/internal/shop-api/orderlog"
)

// Service implements the backend use cases.
type Service struct {
	catalog  *domain.Catalog
	journal  orderlog.Repository
	validate *validator.Validate
	logger   *slog.Logger

	// mu serializes placement so a key is looked up and recorded atomically.
	mu sync.Mutex

	now   func() time.Time
	newID func() string
}

// NewService returns a Service selling from catalog and recording orders
// in journal. A nil logger falls back to slog.Default.
func NewService(catalog *domain.Catalog, journal orderlog.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		catalog:  catalog,
		journal:  journal,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Products lists the catalog in its listed order.
func (s *Service) Products(ctx context.Context) []domain.Product {
	return s.catalog.Products()
}

// Product looks up one catalog entry. Unknown ids wrap
// domain.ErrProductNotFound.
func (s *Service) Product(ctx context.Context, id string) (domain.Product, error) {
	p, ok := s.catalog.Find(id)
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %q", domain.ErrProductNotFound, id)
	}
	return p, nil
}

// PlaceOrder validates req and records the order. A request repeating the
// idempotency key of a recorded order gets that order back with replayed
// set; the same key with different items or total is refused.
func (s *Service) PlaceOrder(ctx context.Context, req domain.PlaceOrder) (order domain.Order, replayed bool, err error) {
	if err := s.check(req); err != nil {
		return domain.Order{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.IdempotencyKey != "" {
		prev, err := s.journal.GetByKey(ctx, req.IdempotencyKey)
		switch {
		case err == nil:
			return s.replay(ctx, prev, req)
		case !errors.Is(err, orderlog.ErrNotFound):
			return domain.Order{}, false, fmt.Errorf("place order: %w", err)
		}
	}

	order = domain.Order{
		ID:             s.newID(),
		Payment:        req.Payment,
		Address:        req.Address,
		Email:          req.Email,
		Phone:          req.Phone,
		Total:          req.Total,
		Items:          req.Items,
		IdempotencyKey: req.IdempotencyKey,
		RequestID:      req.RequestID,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.journal.Save(ctx, orderlog.NewEntry(ctx, order)); err != nil {
		return domain.Order{}, false, fmt.Errorf("place order: %w", err)
	}

	s.logger.InfoContext(ctx, "order placed",
		"order_id", order.ID,
		"request_id", order.RequestID,
		"items", len(order.Items),
		"total", order.Total.String(),
	)
	return order, false, nil
}

func (s *Service) replay(ctx context.Context, prev *orderlog.Entry, req domain.PlaceOrder) (domain.Order, bool, error) {
	order, err := prev.Order()
	if err != nil {
		return domain.Order{}, false, fmt.Errorf("place order: recorded order %q: %w", prev.OrderID, err)
	}
	if !order.SameAs(req) {
		return domain.Order{}, false, fmt.Errorf("%w: %q", domain.ErrIdempotencyConflict, req.IdempotencyKey)
	}
	s.logger.InfoContext(ctx, "order replayed", "order_id", order.ID, "request_id", req.RequestID)
	return order, true, nil
}

// check validates the fields of req and prices its items against the
// catalog.
func (s *Service) check(req domain.PlaceOrder) error {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed on %s", domain.ErrInvalidOrder, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %w", domain.ErrInvalidOrder, err)
	}

	sum := decimal.Zero
	for _, id := range req.Items {
		p, ok := s.catalog.Find(id)
		if !ok {
			return fmt.Errorf("%w: %q", domain.ErrProductNotFound, id)
		}
		if !p.ForSale() {
			return fmt.Errorf("%w: %q", domain.ErrNotForSale, id)
		}
		sum = sum.Add(p.Price.Decimal)
	}
	if !sum.Equal(req.Total) {
		return fmt.Errorf("%w: items sum to %s, got %s", domain.ErrTotalMismatch, sum, req.Total)
	}
	return nil
}
