// Package api is the HTTP adapter of ports.ProductAPI.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/storefront/internal/pkg/cache"
	"github.com/jcmexdev/storefront/internal/pkg/requestid"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

const maxBody = 4 << 20

// ErrUnavailable is returned for 5xx answers. The backend may or may not
// have acted on the request.
var ErrUnavailable = errors.New("backend unavailable")

// Config configures a Client.
type Config struct {
	BaseURL string
	// CDN is prepended to every product image path.
	CDN string

	// HTTPClient defaults to a client with an otelhttp transport.
	HTTPClient *http.Client
	// Cache holds the raw catalog for CatalogTTL. Nil disables caching.
	Cache      cache.Cache
	CatalogTTL time.Duration
	Logger     *slog.Logger
}

// Client talks to the shop backend over HTTP.
type Client struct {
	base   string
	cdn    string
	http   *http.Client
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.ProductAPI = (*Client)(nil)

// errorResponse is the backend's error body.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		cdn:    cfg.CDN,
		http:   hc,
		cache:  cfg.Cache,
		ttl:    cfg.CatalogTTL,
		logger: logger,
	}
}

// GetProducts returns the catalog, served from the cache when one is
// configured and holds a fresh copy.
func (c *Client) GetProducts(ctx context.Context) (entity.Catalog, error) {
	raw, err := c.catalog(ctx)
	if err != nil {
		return entity.Catalog{}, err
	}

	var catalog entity.Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return entity.Catalog{}, fmt.Errorf("api GetProducts: decode: %w", err)
	}
	for i := range catalog.Items {
		catalog.Items[i].Image = c.imageURL(catalog.Items[i].Image)
	}
	return catalog, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (entity.Product, error) {
	raw, err := c.do(ctx, http.MethodGet, "/product/"+id, nil, nil)
	if err != nil {
		return entity.Product{}, fmt.Errorf("api GetProduct: %w", err)
	}

	var p entity.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return entity.Product{}, fmt.Errorf("api GetProduct: decode: %w", err)
	}
	p.Image = c.imageURL(p.Image)
	return p, nil
}

// SubmitOrder posts order. A non-empty IdempotencyKey is sent as a header so
// the backend can recognise retries.
func (c *Client) SubmitOrder(ctx context.Context, order entity.Order) (entity.OrderResult, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return entity.OrderResult{}, fmt.Errorf("api SubmitOrder: encode: %w", err)
	}

	header := http.Header{}
	if order.IdempotencyKey != "" {
		header.Set(requestid.HeaderIdempotencyKey, order.IdempotencyKey)
	}
	raw, err := c.do(ctx, http.MethodPost, "/order", body, header)
	if err != nil {
		return entity.OrderResult{}, fmt.Errorf("api SubmitOrder: %w", err)
	}

	var res entity.OrderResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return entity.OrderResult{}, fmt.Errorf("api SubmitOrder: decode: %w", err)
	}
	return res, nil
}

func (c *Client) catalog(ctx context.Context) ([]byte, error) {
	var key string
	if c.cache != nil {
		key = c.cache.GenerateKey("catalog", "all")
		hit, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.WarnContext(ctx, "catalog cache read failed", "error", err)
		}
		if hit != "" {
			return []byte(hit), nil
		}
	}

	raw, err := c.do(ctx, http.MethodGet, "/product", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("api GetProducts: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
			c.logger.WarnContext(ctx, "catalog cache write failed", "error", err)
		}
	}
	return raw, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, header http.Header) ([]byte, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, r)
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.HeaderRequestID, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %s %s: %s", ErrUnavailable, method, path, describe(resp.StatusCode, raw))
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: %s %s: %s", ports.ErrRejected, method, path, describe(resp.StatusCode, raw))
	}
	return raw, nil
}

func (c *Client) imageURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.cdn + path
}

func describe(status int, raw []byte) string {
	var e errorResponse
	if err := json.Unmarshal(raw, &e); err != nil || e.Error == "" {
		return fmt.Sprintf("status %d", status)
	}
	if e.Message != "" {
		return fmt.Sprintf("status %d: %s: %s", status, e.Error, e.Message)
	}
	return fmt.Sprintf("status %d: %s", status, e.Error)
}
