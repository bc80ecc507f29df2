package events_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront/internal/pkg/events"
)

var (
	greeted = events.NewTopic[string]("greeted")
	counted = events.NewTopic[int]("counted")
)

func newBus() *events.Bus {
	return events.New(events.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestPublish_RegistrationOrder(t *testing.T) {
	t.Parallel()

	bus := newBus()
	var got []string
	for _, tag := range []string{"a", "b", "c"} {
		events.On(bus, greeted, func(p string) error {
			got = append(got, tag+":"+p)
			return nil
		})
	}

	require.NoError(t, events.Emit(bus, greeted, "hi"))
	assert.Equal(t, []string{"a:hi", "b:hi", "c:hi"}, got)
}

func TestPublish_ExactAndWildcard(t *testing.T) {
	t.Parallel()

	bus := newBus()
	var exact []int
	var all []string

	events.On(bus, counted, func(n int) error {
		exact = append(exact, n)
		return nil
	})
	events.OnAny(bus, func(name string, _ any) error {
		all = append(all, name)
		return nil
	})

	require.NoError(t, events.Emit(bus, greeted, "x"))
	require.NoError(t, events.Emit(bus, counted, 7))

	assert.Equal(t, []int{7}, exact)
	assert.Equal(t, []string{"greeted", "counted"}, all)
}

func TestPublish_FailuresAreIsolated(t *testing.T) {
	t.Parallel()

	bus := newBus()
	boom := errors.New("boom")
	var reached []string

	events.On(bus, greeted, func(string) error { return boom })
	events.On(bus, greeted, func(string) error { panic("kaput") })
	events.On(bus, greeted, func(p string) error {
		reached = append(reached, p)
		return nil
	})

	err := events.Emit(bus, greeted, "still delivered")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "kaput")

	var herr *events.HandlerError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "greeted", herr.Event)

	assert.Equal(t, []string{"still delivered"}, reached)
}

func TestPublish_PayloadTypeMismatch(t *testing.T) {
	t.Parallel()

	bus := newBus()
	events.On(bus, counted, func(int) error { return nil })

	err := bus.Publish(counted.Name(), "not an int")
	assert.ErrorIs(t, err, events.ErrPayloadType)
}

func TestPublish_EmptyName(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, newBus().Publish("", nil), events.ErrEmptyName)
}

func TestUnsubscribeAll(t *testing.T) {
	t.Parallel()

	bus := newBus()
	calls := 0
	events.On(bus, greeted, func(string) error { calls++; return nil })
	events.OnAny(bus, func(string, any) error { calls++; return nil })
	require.Equal(t, 2, bus.Len())

	bus.UnsubscribeAll()
	require.NoError(t, events.Emit(bus, greeted, "ignored"))

	assert.Zero(t, calls)
	assert.Zero(t, bus.Len())
}

func TestPublish_SubscriptionsDuringDispatch(t *testing.T) {
	t.Parallel()

	bus := newBus()
	var got []string

	events.On(bus, greeted, func(p string) error {
		got = append(got, "first:"+p)
		bus.UnsubscribeAll()
		events.On(bus, greeted, func(p string) error {
			got = append(got, "late:"+p)
			return nil
		})
		return nil
	})
	events.On(bus, greeted, func(p string) error {
		got = append(got, "second:"+p)
		return nil
	})

	require.NoError(t, events.Emit(bus, greeted, "one"))
	assert.Equal(t, []string{"first:one", "second:one"}, got)

	require.NoError(t, events.Emit(bus, greeted, "two"))
	assert.Equal(t, []string{"first:one", "second:one", "late:two"}, got)
}

func TestPublish_NestedIsDepthFirst(t *testing.T) {
	t.Parallel()

	bus := newBus()
	var got []string

	events.On(bus, greeted, func(p string) error {
		got = append(got, "greeted:"+p)
		return events.Emit(bus, counted, len(p))
	})
	events.On(bus, counted, func(n int) error {
		got = append(got, "counted")
		return nil
	})
	events.On(bus, greeted, func(string) error {
		got = append(got, "greeted:after")
		return nil
	})

	require.NoError(t, events.Emit(bus, greeted, "abc"))
	assert.Equal(t, []string{"greeted:abc", "counted", "greeted:after"}, got)
}

func TestNewTopic_RejectsInvalidNames(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { events.NewTopic[int]("") })
	assert.Panics(t, func() { events.NewTopic[int](events.Wildcard) })
}
