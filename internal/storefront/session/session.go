// Package session keeps one server-side page per visitor.
//
// A session owns a document cloned from the page prototype, the event bus
// and state of that visitor, and the loop every change runs on. Posted forms
// are dispatched to the listeners of the document; the page is rendered back
// from the same document.
package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/net/html"

	"github.com/jcmexdev/storefront/internal/pkg/dom"
	"github.com/jcmexdev/storefront/internal/pkg/events"
	"github.com/jcmexdev/storefront/internal/pkg/loop"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/core/state"
	"github.com/jcmexdev/storefront/internal/storefront/presenter"
	"github.com/jcmexdev/storefront/internal/storefront/view"
)

// Deps are shared by every session.
type Deps struct {
	Templates      *view.Templates
	API            ports.ProductAPI
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// Session is the server-side page of one visitor.
type Session struct {
	ID string

	loop      *loop.Loop
	doc       *html.Node
	listeners *dom.Listeners
	presenter *presenter.Presenter
	logger    *slog.Logger

	// guarded by the registry
	lastSeen time.Time
}

// New builds a session and starts loading the catalog.
func New(id string, deps Deps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session_id", id)

	s := &Session{
		ID:        id,
		loop:      loop.New(logger),
		doc:       deps.Templates.Document(),
		listeners: dom.NewListeners(),
		logger:    logger,
	}

	s.loop.Do(func() {
		bus := events.New(events.WithLogger(logger))
		env := view.Env{Bus: bus, Listeners: s.listeners, Templates: deps.Templates}
		s.presenter = presenter.New(context.Background(), env, s.doc, state.New(bus), deps.API, s.loop, presenter.Config{
			RequestTimeout: deps.RequestTimeout,
			Logger:         logger,
		})
		s.presenter.Load()
	})
	return s
}

// Handle dispatches a posted form and waits, bounded by ctx, for the work
// it started to settle.
func (s *Session) Handle(ctx context.Context, values url.Values) error {
	var err error
	s.loop.Do(func() {
		err = s.listeners.Dispatch(s.doc, values)
		s.listeners.Prune(append([]*html.Node{s.doc}, s.presenter.Retained()...)...)
	})
	if err != nil {
		return fmt.Errorf("session %s: %w", s.ID, err)
	}

	if err := s.loop.Wait(ctx); err != nil {
		s.logger.WarnContext(ctx, "work still in flight", "running", s.loop.Running())
	}
	return nil
}

// Render writes the current page. Work in flight is given until ctx is
// done to finish; after that the page is rendered as it stands.
func (s *Session) Render(ctx context.Context, w io.Writer) error {
	_ = s.loop.Wait(ctx)

	var buf bytes.Buffer
	var err error
	s.loop.Do(func() {
		err = dom.Render(&buf, s.doc)
	})
	if err != nil {
		return fmt.Errorf("session %s: render: %w", s.ID, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// Busy reports whether the session has work in flight.
func (s *Session) Busy() bool {
	return s.loop.Running() > 0
}
