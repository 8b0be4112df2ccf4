package events

import (
	"fmt"
	"sync"

	"subcycle/internal/shared/logger"
)

// InMemoryEventDispatcher delivers events synchronously to registered
// handlers. Delivery is deliberately synchronous: the payment processor
// must observe handler failures in-line so it can revert a half-applied
// transition, which an async queue would make impossible.
type InMemoryEventDispatcher struct {
	handlers map[string][]EventHandler
	mu       sync.RWMutex
	logger   logger.Interface
	// strict propagates the first handler error to the publisher instead
	// of only logging it. The payment processor runs strict.
	strict bool
}

func NewInMemoryEventDispatcher(log logger.Interface) *InMemoryEventDispatcher {
	return &InMemoryEventDispatcher{
		handlers: make(map[string][]EventHandler),
		logger:   log,
	}
}

// NewStrictEventDispatcher returns a dispatcher whose Publish returns the
// first handler error instead of swallowing it.
func NewStrictEventDispatcher(log logger.Interface) *InMemoryEventDispatcher {
	d := NewInMemoryEventDispatcher(log)
	d.strict = true
	return d
}

// Subscribe registers a handler for an event type.
func (d *InMemoryEventDispatcher) Subscribe(eventType string, handler EventHandler) error {
	if eventType == "" {
		return fmt.Errorf("event type cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
	return nil
}

// Publish delivers the event to every handler registered for its type.
func (d *InMemoryEventDispatcher) Publish(event DomainEvent) error {
	d.mu.RLock()
	handlers := d.handlers[event.GetEventType()]
	d.mu.RUnlock()

	for _, handler := range handlers {
		if !handler.CanHandle(event.GetEventType()) {
			continue
		}
		if err := handler.Handle(event); err != nil {
			if d.strict {
				return fmt.Errorf("handler failed for %s: %w", event.GetEventType(), err)
			}
			d.logger.Errorw("event handler failed",
				"event_type", event.GetEventType(),
				"aggregate_id", event.GetAggregateID(),
				"error", err,
			)
		}
	}
	return nil
}

// SimpleEventHandler adapts a function to the EventHandler interface.
type SimpleEventHandler struct {
	eventType string
	handler   func(DomainEvent) error
}

func NewSimpleEventHandler(eventType string, handler func(DomainEvent) error) *SimpleEventHandler {
	return &SimpleEventHandler{
		eventType: eventType,
		handler:   handler,
	}
}

func (h *SimpleEventHandler) Handle(event DomainEvent) error {
	if h.handler != nil {
		return h.handler(event)
	}
	return nil
}

func (h *SimpleEventHandler) CanHandle(eventType string) bool {
	return h.eventType == eventType
}
