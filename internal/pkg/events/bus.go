// Package events implements a synchronous publish/subscribe bus.
//
// Handlers are registered against an exact event name or the wildcard
// pattern "*" and are invoked in registration order on the publishing
// goroutine. A failing handler never stops delivery to the handlers after
// it; every failure is logged and returned from Publish.
package events

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Wildcard matches every event name.
const Wildcard = "*"

var (
	// ErrPayloadType is returned when a typed handler receives a payload of
	// a different type than its topic declares.
	ErrPayloadType = errors.New("events: unexpected payload type")

	// ErrEmptyName is returned when publishing an event without a name.
	ErrEmptyName = errors.New("events: empty event name")
)

// Handler receives the name of the published event and its payload.
type Handler func(name string, payload any) error

// HandlerError describes a single failed delivery.
type HandlerError struct {
	Event   string
	Pattern string
	Err     error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("events: handler %q for %q: %v", e.Pattern, e.Event, e.Err)
}

// Unwrap returns the handler's error.
func (e *HandlerError) Unwrap() error { return e.Err }

type subscription struct {
	pattern string
	fn      Handler
}

// Bus routes published events to subscribers.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used to report failed deliveries.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// New returns an empty Bus.
func New(opts ...Option) *Bus {
	b := &Bus{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers fn for pattern, which is either an exact event name
// or Wildcard. A nil fn is ignored.
func (b *Bus) Subscribe(pattern string, fn Handler) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	b.subs = append(b.subs, subscription{pattern: pattern, fn: fn})
	b.mu.Unlock()
}

// UnsubscribeAll removes every registration. A dispatch already in progress
// completes with the handlers it started with.
func (b *Bus) UnsubscribeAll() {
	b.mu.Lock()
	b.subs = nil
	b.mu.Unlock()
}

// Len reports the number of registered handlers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers payload to every handler whose pattern matches name, in
// registration order. The returned error joins every HandlerError raised
// during this dispatch; it is nil when all handlers succeeded.
func (b *Bus) Publish(name string, payload any) error {
	if name == "" {
		return ErrEmptyName
	}

	b.mu.RLock()
	subs := make([]subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.pattern == Wildcard || s.pattern == name {
			subs = append(subs, s)
		}
	}
	b.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if err := invoke(s.fn, name, payload); err != nil {
			herr := &HandlerError{Event: name, Pattern: s.pattern, Err: err}
			b.logger.Error("event handler failed", "event", name, "pattern", s.pattern, "error", err)
			errs = append(errs, herr)
		}
	}
	return errors.Join(errs...)
}

func invoke(fn Handler, name string, payload any) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn(name, payload)
}
