package httpx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront/internal/pkg/requestid"
	"github.com/jcmexdev/storefront/internal/shop-api/app"
	"github.com/jcmexdev/storefront/internal/shop-api/domain"
	"github.com/jcmexdev/storefront/internal/shop-api/orderlog/sqlite"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/infra/adapters/api"
)

const (
	timer = "854cef69-976d-4c2a-a18c-2aa45046c390"
	nanny = "b06cde61-912f-4663-9751-09956c0eed67"
)

func newServer(t *testing.T) (*httptest.Server, *sqlite.Repository) {
	t.Helper()

	catalog, err := domain.LoadCatalog()
	require.NoError(t, err)
	journal, err := sqlite.Open(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = journal.Close() })

	srv := httptest.NewServer(NewRouter(NewHandler(app.NewService(catalog, journal, nil), nil)))
	t.Cleanup(srv.Close)
	return srv, journal
}

func TestCatalogShape(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/product/" + nanny)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":"`+nanny+`","title":"Мамка-таймер","category":"софт-скил",
		"image":"/Asterisk_2.svg","price":null,
		"description":"Будет стоять над душой и не давать прокрастинировать."}`, string(body))
}

func TestPlaceOrder_BadBody(t *testing.T) {
	srv, _ := newServer(t)

	tests := map[string]string{
		"not json":       `{`,
		"string total":   `{"total":"abc","items":["x"]}`,
		"missing fields": `{"total":750,"items":["` + timer + `"]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/order", "application/json", strings.NewReader(body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

// The storefront client and the backend agree on the wire format.
func TestStorefrontClient(t *testing.T) {
	srv, journal := newServer(t)
	client := api.NewClient(api.Config{BaseURL: srv.URL, CDN: "https://cdn.example", HTTPClient: srv.Client()})
	ctx := requestid.With(context.Background(), "req-42")

	catalog, err := client.GetProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, catalog.Total)

	var timerProduct entity.Product
	for _, p := range catalog.Items {
		if p.ID == timer {
			timerProduct = p
		}
		if p.ID == nanny {
			assert.True(t, p.Price.IsPriceless())
		}
	}
	assert.Equal(t, "https://cdn.example/5_Dots.svg", timerProduct.Image)

	basket := entity.Basket{Items: []entity.BasketItem{{ID: timer, Price: decimal.NewFromInt(750)}}}
	order := entity.NewOrder(entity.OrderDraft{
		Payment: entity.PaymentCash,
		Address: "Москва",
		Email:   "a@b.ru",
		Phone:   "+79990000000",
	}, basket)
	order.IdempotencyKey = "k-1"

	first, err := client.SubmitOrder(ctx, order)
	require.NoError(t, err)
	assert.True(t, first.Total.Equal(decimal.NewFromInt(750)))

	again, err := client.SubmitOrder(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "retry answered with the recorded order")

	entry, err := journal.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "req-42", entry.RequestID)
	assert.Equal(t, "k-1", entry.IdempotencyKey)

	order.IdempotencyKey = "k-2"
	order.Total = entity.Amount{Decimal: decimal.NewFromInt(1)}
	_, err = client.SubmitOrder(ctx, order)
	require.ErrorIs(t, err, ports.ErrRejected)
	assert.Contains(t, err.Error(), "total_mismatch")
}
