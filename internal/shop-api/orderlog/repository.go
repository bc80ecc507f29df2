package orderlog

import "context"

// Repository persists journal entries.
type Repository interface {
	// Save appends entry. A second entry with the same non-empty
	// idempotency key fails with ErrDuplicateKey.
	Save(ctx context.Context, entry *Entry) error
	// GetByKey returns the entry recorded under an idempotency key, or
	// ErrNotFound.
	GetByKey(ctx context.Context, key string) (*Entry, error)
	// Get returns the entry of an order, or ErrNotFound.
	Get(ctx context.Context, orderID string) (*Entry, error)
}
