package httpx

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/storefront/internal/pkg/dom"
	"github.com/jcmexdev/storefront/internal/pkg/requestid"
	"github.com/jcmexdev/storefront/internal/storefront/infra/httpx/middlewares"
	"github.com/jcmexdev/storefront/internal/storefront/session"
	"github.com/jcmexdev/storefront/internal/storefront/view"
)

// RouterConfig configures the storefront router.
type RouterConfig struct {
	SessionTTL   time.Duration
	SecureCookie bool
}

func NewRouter(handler *Handler, sessions *session.Registry, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestid.Middleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	static, err := fs.Sub(view.Static, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	r.Get("/healthz", handler.Health)

	r.Group(func(r chi.Router) {
		r.Use(middlewares.Session(sessions, cfg.SessionTTL, cfg.SecureCookie))
		r.Get("/", handler.Page)
		r.Post(dom.ActionPath, handler.Events)
	})

	return otelhttp.NewHandler(r, "storefront",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
