// Package sqlite provides a SQLite-backed implementation of
// orderlog.Repository.
//
// WAL mode is enabled on Open so that readers never block the writer.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jcmexdev/storefront/internal/shop-api/orderlog"

	// pure-Go driver, no CGO
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id         TEXT NOT NULL UNIQUE,

    -- NULL when the client sent no key; NULLs never collide in a UNIQUE column.
    idempotency_key  TEXT UNIQUE,
    request_id       TEXT NOT NULL DEFAULT '',

    payment          TEXT NOT NULL,
    address          TEXT NOT NULL,
    email            TEXT NOT NULL,
    phone            TEXT NOT NULL,
    total            TEXT NOT NULL,
    -- JSON array of product ids in basket order
    items            TEXT NOT NULL,

    trace_id         TEXT NOT NULL DEFAULT '',
    span_id          TEXT NOT NULL DEFAULT '',
    created_at       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_trace_id ON orders(trace_id);
`

const columns = `order_id, COALESCE(idempotency_key, ''), request_id, payment, address,
	email, phone, total, items, trace_id, span_id, created_at`

// Repository is the SQLite implementation of orderlog.Repository.
type Repository struct {
	db *sql.DB
}

var _ orderlog.Repository = (*Repository)(nil)

// Open opens (or creates) the SQLite database at path and applies the
// schema.
//
//	repo, err := sqlite.Open("./data/orders.db")
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// single writer
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Save(ctx context.Context, entry *orderlog.Entry) error {
	const q = `
		INSERT INTO orders
			(order_id, idempotency_key, request_id, payment, address, email, phone,
			 total, items, trace_id, span_id, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	items, err := json.Marshal(entry.Items)
	if err != nil {
		return fmt.Errorf("sqlite: encode items of %q: %w", entry.OrderID, err)
	}

	_, err = r.db.ExecContext(ctx, q,
		entry.OrderID,
		nullableString(entry.IdempotencyKey),
		entry.RequestID,
		entry.Payment,
		entry.Address,
		entry.Email,
		entry.Phone,
		entry.Total,
		string(items),
		entry.TraceID,
		entry.SpanID,
		formatTime(entry.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err, "idempotency_key") {
			return fmt.Errorf("%w: %q", orderlog.ErrDuplicateKey, entry.IdempotencyKey)
		}
		return fmt.Errorf("sqlite: save order %q: %w", entry.OrderID, err)
	}
	return nil
}

func (r *Repository) GetByKey(ctx context.Context, key string) (*orderlog.Entry, error) {
	if key == "" {
		return nil, orderlog.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM orders WHERE idempotency_key = ?`, key)
	entry, err := scan(row)
	if err != nil {
		return nil, fmt.Errorf("sqlite: get by key %q: %w", key, err)
	}
	return entry, nil
}

func (r *Repository) Get(ctx context.Context, orderID string) (*orderlog.Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM orders WHERE order_id = ?`, orderID)
	entry, err := scan(row)
	if err != nil {
		return nil, fmt.Errorf("sqlite: get %q: %w", orderID, err)
	}
	return entry, nil
}

func scan(row *sql.Row) (*orderlog.Entry, error) {
	var (
		entry     orderlog.Entry
		items     string
		createdAt string
	)
	err := row.Scan(
		&entry.OrderID,
		&entry.IdempotencyKey,
		&entry.RequestID,
		&entry.Payment,
		&entry.Address,
		&entry.Email,
		&entry.Phone,
		&entry.Total,
		&items,
		&entry.TraceID,
		&entry.SpanID,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, orderlog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(items), &entry.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	entry.CreatedAt, err = parseRFC3339(createdAt)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}

// nullableString stores empty strings as NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// isUniqueViolation matches the driver's message, which names the column
// as "UNIQUE constraint failed: orders.<column>".
func isUniqueViolation(err error, column string) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, "orders."+column)
}
