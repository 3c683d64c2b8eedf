package ecs

import "reflect"

// EventBus is a typed, synchronous publish/subscribe bus. Handlers for an
// event type run in subscription order on the publishing goroutine; there is
// no queueing and no internal concurrency.
//
// Handlers return an error. Publish stops at the first failing handler and
// returns its error to the publisher, so a failure surfaces synchronously at
// the call site that triggered the event.
type EventBus struct {
	handlers map[reflect.Type][]any
}

// NewEventBus creates an empty event bus.
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[reflect.Type][]any),
	}
}

// Subscribe registers a handler for events of type T. Handlers are invoked in
// the order they were subscribed.
func Subscribe[T any](bus *EventBus, handler func(T) error) {
	t := reflect.TypeFor[T]()
	bus.handlers[t] = append(bus.handlers[t], handler)
}

// Publish delivers an event of type T to every subscribed handler, in
// subscription order. The first handler error aborts the remainder of the
// delivery pass and is returned.
func Publish[T any](bus *EventBus, event T) error {
	t := reflect.TypeFor[T]()
	for _, h := range bus.handlers[t] {
		if err := h.(func(T) error)(event); err != nil {
			return err
		}
	}
	return nil
}
