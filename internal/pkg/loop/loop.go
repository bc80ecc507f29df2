// Package loop serializes the work of one session.
//
// Every mutation of session state runs through Do, one at a time. Slow work
// such as network calls is started with Go: it runs on its own goroutine
// without holding the loop, and the function it returns is applied back on
// the loop once the work is done.
package loop

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Work performs a blocking operation and returns the continuation to run
// on the loop, or nil.
type Work func(ctx context.Context) func()

// Loop is a cooperative single-threaded executor.
type Loop struct {
	mu sync.Mutex

	state    sync.Mutex
	inflight int64
	idle     chan struct{}

	logger *slog.Logger
}

// New returns an idle loop.
func New(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{logger: logger}
}

// Do runs fn on the loop.
func (l *Loop) Do(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn()
}

// Go starts work on a new goroutine and applies its continuation with Do.
// It never blocks and may be called from inside Do.
func (l *Loop) Go(ctx context.Context, work Work) {
	l.inc()
	go func() {
		defer l.dec()

		apply := l.run(ctx, work)
		if apply == nil {
			return
		}
		l.Do(func() {
			defer func() {
				if rec := recover(); rec != nil {
					l.logger.ErrorContext(ctx, "loop continuation panicked", "panic", fmt.Sprint(rec))
				}
			}()
			apply()
		})
	}()
}

func (l *Loop) run(ctx context.Context, work Work) (apply func()) {
	defer func() {
		if rec := recover(); rec != nil {
			l.logger.ErrorContext(ctx, "loop work panicked", "panic", fmt.Sprint(rec))
			apply = nil
		}
	}()
	return work(ctx)
}

// Wait blocks until no work started with Go is in flight, or ctx is done.
func (l *Loop) Wait(ctx context.Context) error {
	l.state.Lock()
	if l.inflight == 0 {
		l.state.Unlock()
		return nil
	}
	idle := l.idle
	l.state.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports the number of operations in flight.
func (l *Loop) Running() int64 {
	l.state.Lock()
	defer l.state.Unlock()
	return l.inflight
}

func (l *Loop) inc() {
	l.state.Lock()
	defer l.state.Unlock()
	if l.inflight == 0 {
		l.idle = make(chan struct{})
	}
	l.inflight++
}

func (l *Loop) dec() {
	l.state.Lock()
	defer l.state.Unlock()
	l.inflight--
	if l.inflight == 0 {
		close(l.idle)
	}
}
