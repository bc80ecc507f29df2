package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	t.Parallel()

	// the client connects lazily, nothing is dialed here
	r := NewRedisCache("127.0.0.1:0", "storefront")
	defer r.Close()
	assert.Equal(t, "storefront:catalog:all", r.GenerateKey("catalog", "all"))
	assert.Equal(t, "storefront:catalog:all", NewMemory("storefront").GenerateKey("catalog", "all"))
}

func TestMemory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory("test")
	m.now = func() time.Time { return now }

	v, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, m.Set(ctx, "a", []byte(`{"total":1}`), time.Minute))
	require.NoError(t, m.Set(ctx, "b", 42, 0))

	v, _ = m.Get(ctx, "a")
	assert.Equal(t, `{"total":1}`, v)

	now = now.Add(time.Minute)
	v, _ = m.Get(ctx, "a")
	assert.Empty(t, v, "entry expired")

	v, _ = m.Get(ctx, "b")
	assert.Equal(t, "42", v, "zero ttl never expires")
}
