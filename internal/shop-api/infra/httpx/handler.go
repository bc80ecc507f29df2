package httpx

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront/internal/pkg/requestid"
	"github.com/jcmexdev/storefront/internal/shop-api/app"
	"github.com/jcmexdev/storefront/internal/shop-api/domain"
)

// HeaderReplayed marks an answer to a retried order.
const HeaderReplayed = "Idempotent-Replayed"

const maxOrderBody = 1 << 20

// Handler exposes the catalog and order placement over HTTP.
type Handler struct {
	svc    *app.Service
	logger *slog.Logger
}

func NewHandler(svc *app.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// ListProducts returns the whole catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.svc.Products(r.Context())
	items := make([]ProductResponse, len(products))
	for i, p := range products {
		items[i] = mapProduct(p)
	}
	writeJSON(w, http.StatusOK, CatalogResponse{Total: len(items), Items: items})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}

// PlaceOrder validates and records an order. The X-Idempotency-Key header
// makes retries safe.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxOrderBody))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	total, err := decimal.NewFromString(req.Total.String())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_total", fmt.Sprintf("total %q is not a number", req.Total))
		return
	}

	ctx := r.Context()
	order, replayed, err := h.svc.PlaceOrder(ctx, domain.PlaceOrder{
		Payment:        domain.PaymentMethod(req.Payment),
		Address:        req.Address,
		Email:          req.Email,
		Phone:          req.Phone,
		Total:          total,
		Items:          req.Items,
		IdempotencyKey: requestid.IdempotencyKey(ctx),
		RequestID:      requestid.FromContext(ctx),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if replayed {
		w.Header().Set(HeaderReplayed, "true")
	}
	writeJSON(w, http.StatusOK, OrderResponse{ID: order.ID, Total: json.Number(order.Total.String())})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	} else {
		h.logger.InfoContext(r.Context(), "request refused", "path", r.URL.Path, "error", err)
	}
	writeError(w, status, errorKind(err), err.Error())
}

func mapProduct(p domain.Product) ProductResponse {
	out := ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Category:    p.Category,
		Image:       p.Image,
		Description: p.Description,
	}
	if p.ForSale() {
		n := json.Number(p.Price.Decimal.String())
		out.Price = &n
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
