package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry holds the live sessions and expires idle ones.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	deps Deps
	ttl  time.Duration
	now  func() time.Time
}

// NewRegistry returns an empty registry. Sessions idle for longer than ttl
// are dropped by Sweep.
func NewRegistry(deps Deps, ttl time.Duration) *Registry {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		deps:     deps,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the session with id and marks it as seen.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if ok {
		s.lastSeen = r.now()
	}
	return s, ok
}

// Create starts a new session under a fresh id.
func (r *Registry) Create(ctx context.Context) *Session {
	s := New(uuid.NewString(), r.deps)

	r.mu.Lock()
	s.lastSeen = r.now()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.deps.Logger.InfoContext(ctx, "session created", "session_id", s.ID)
	return s
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the ttl and returns how many
// were dropped. Sessions with an order in flight are kept.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	n := 0
	for id, s := range r.sessions {
		if s.lastSeen.After(cutoff) || s.Busy() {
			continue
		}
		delete(r.sessions, id)
		n++
	}
	return n
}

// Run sweeps every half ttl until ctx is done.
func (r *Registry) Run(ctx context.Context) error {
	ticker := time.NewTicker(max(r.ttl/2, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.deps.Logger.InfoContext(ctx, "expired sessions dropped", "count", n, "live", r.Len())
			}
		}
	}
}
