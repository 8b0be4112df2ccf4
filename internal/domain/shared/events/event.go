package events

import "time"

// DomainEvent is the contract every engine event satisfies.
type DomainEvent interface {
	// GetEventType returns the dotted event name, e.g.
	// "subscription.payment_complete".
	GetEventType() string

	// GetTimestamp returns when the event occurred.
	GetTimestamp() time.Time

	// GetAggregateID returns the id of the aggregate that emitted it.
	GetAggregateID() uint
}

// EventHandler processes domain events.
type EventHandler interface {
	Handle(event DomainEvent) error
	CanHandle(eventType string) bool
}

// EventPublisher publishes domain events. Publishing is fire-and-forget
// from the emitter's point of view: handler errors are logged, never
// returned to the emitting operation.
type EventPublisher interface {
	Publish(event DomainEvent) error
}

// EventSubscriber registers handlers for event types.
type EventSubscriber interface {
	Subscribe(eventType string, handler EventHandler) error
}

// EventDispatcher combines publishing and subscribing.
type EventDispatcher interface {
	EventPublisher
	EventSubscriber
}
