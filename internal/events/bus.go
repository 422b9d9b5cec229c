package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers.
// Usage: bus.Publish(LedStateChangedEvent{...})
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case LedStateRequestedEvent:
		event.Publish(b.dispatcher, e)
	case LedStateChangedEvent:
		event.Publish(b.dispatcher, e)
	case LedErrorEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe registers a handler; its parameter type selects the events it
// receives. Unknown handler types get a no-op unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e LedStateChangedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(LedStateRequestedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LedStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LedErrorEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
