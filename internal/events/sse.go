package events

import (
	"slices"

	"github.com/kelindar/event"
)

// LedEvent is an event about one LED.
type LedEvent interface {
	Event
	LED() int
}

// LedFilter selects the LEDs a stream carries. An empty filter passes all.
type LedFilter []int

func (f LedFilter) allows(id int) bool {
	return len(f) == 0 || slices.Contains(f, id)
}

// Stream forwards state requests, state changes and errors of the LEDs in
// filter into ch, for select-loop consumers such as the SSE endpoint.
// Events are dropped while ch is full. The returned function ends the stream.
func (b *Bus) Stream(ch chan<- LedEvent, filter LedFilter) func() {
	unsubscribers := []func(){
		forward[LedStateRequestedEvent](b, ch, filter),
		forward[LedStateChangedEvent](b, ch, filter),
		forward[LedErrorEvent](b, ch, filter),
	}
	return func() {
		for _, unsub := range unsubscribers {
			unsub()
		}
	}
}

func forward[T LedEvent](b *Bus, ch chan<- LedEvent, filter LedFilter) func() {
	return event.Subscribe(b.dispatcher, func(e T) {
		if !filter.allows(e.LED()) {
			return
		}
		select {
		case ch <- e:
		default:
		}
	})
}
