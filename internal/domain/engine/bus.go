package engine

import (
	"sync"

	"github.com/felixgeelhaar/linework/internal/domain/figure"
)

// EventBus fans figure events out to subscribed handlers. Publication is
// synchronous and happens after the engine releases its write lock, so
// handlers may re-enter the engine's read APIs.
type EventBus struct {
	mu       sync.RWMutex
	handlers []func(figure.Event)
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a handler for every future event.
func (b *EventBus) Subscribe(handler func(figure.Event)) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Publish delivers events to every handler in subscription order.
func (b *EventBus) Publish(events ...figure.Event) {
	b.mu.RLock()
	handlers := make([]func(figure.Event), len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, ev := range events {
		for _, handler := range handlers {
			handler(ev)
		}
	}
}
