package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jcmexdev/storefront/internal/pkg/dom"
	"github.com/jcmexdev/storefront/internal/storefront/infra/httpx/middlewares"
	"github.com/jcmexdev/storefront/internal/storefront/session"
)

// Handler serves the server-rendered storefront.
type Handler struct {
	sessions *session.Registry
	// timeout bounds how long a request waits for work it started.
	timeout time.Duration
	logger  *slog.Logger
}

func NewHandler(sessions *session.Registry, timeout time.Duration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{sessions: sessions, timeout: timeout, logger: logger}
}

// Page renders the visitor's page.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	s := middlewares.SessionFrom(r.Context())
	ctx, cancel := h.wait(r.Context())
	defer cancel()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.Render(ctx, w); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page", "session_id", s.ID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Events dispatches a posted form to the visitor's page and redirects back
// to it.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_form", err.Error())
		return
	}

	s := middlewares.SessionFrom(r.Context())
	ctx, cancel := h.wait(r.Context())
	defer cancel()

	if err := s.Handle(ctx, r.PostForm); err != nil {
		// a stale or empty post is answered with the current page
		level := slog.LevelError
		if errors.Is(err, dom.ErrStaleListener) || errors.Is(err, dom.ErrNoListener) {
			level = slog.LevelInfo
		}
		h.logger.Log(r.Context(), level, "post not dispatched", "session_id", s.ID, "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Health reports liveness and the number of live sessions.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Sessions: h.sessions.Len()})
}

func (h *Handler) wait(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.timeout)
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
