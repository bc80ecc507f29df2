package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type entry struct {
	value   string
	expires time.Time
}

// Memory is an in-process Cache for single-instance deployments and tests.
type Memory struct {
	mu        sync.Mutex
	entries   map[string]entry
	namespace string
	now       func() time.Time
}

// NewMemory returns an empty in-process cache.
func NewMemory(namespace string) *Memory {
	return &Memory{
		entries:   make(map[string]entry),
		namespace: namespace,
		now:       time.Now,
	}
}

var _ Cache = (*Memory)(nil)

// Set stores value formatted with %v. A non-positive ttl never expires.
func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprint(v)
	}

	e := entry{value: s}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, key)
		return "", nil
	}
	return e.value, nil
}

func (m *Memory) GenerateKey(operation, key string) string {
	return generateKey(m.namespace, operation, key)
}
