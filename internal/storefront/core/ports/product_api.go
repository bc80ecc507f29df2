package ports

import (
	"context"
	"errors"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

// ErrRejected is returned when the backend answered and refused the
// request. Transport failures are not ErrRejected: their outcome is unknown.
var ErrRejected = errors.New("backend rejected the request")

// ProductAPI is the storefront's view of the shop backend. Image paths of
// returned products are already absolute.
type ProductAPI interface {
	GetProducts(ctx context.Context) (entity.Catalog, error)
	GetProduct(ctx context.Context, id string) (entity.Product, error)
	SubmitOrder(ctx context.Context, order entity.Order) (entity.OrderResult, error)
}
