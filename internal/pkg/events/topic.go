package events

import "fmt"

// Topic binds an event name to its payload type.
type Topic[T any] struct {
	name string
}

// NewTopic declares a topic. Names must be unique within a bus.
func NewTopic[T any](name string) Topic[T] {
	if name == "" || name == Wildcard {
		panic(fmt.Sprintf("events: invalid topic name %q", name))
	}
	return Topic[T]{name: name}
}

// Name returns the event name.
func (t Topic[T]) Name() string { return t.name }

// On subscribes fn to topic t on b.
func On[T any](b *Bus, t Topic[T], fn func(T) error) {
	b.Subscribe(t.name, func(name string, payload any) error {
		p, ok := payload.(T)
		if !ok {
			return fmt.Errorf("%w: %s got %T", ErrPayloadType, name, payload)
		}
		return fn(p)
	})
}

// OnAny subscribes fn to every event published on b.
func OnAny(b *Bus, fn Handler) {
	b.Subscribe(Wildcard, fn)
}

// Emit publishes payload on topic t.
func Emit[T any](b *Bus, t Topic[T], payload T) error {
	return b.Publish(t.name, payload)
}
