package subscription

import "time"

// StatusChangedEvent fires after a status transition and its side effects
// have been applied and persisted.
type StatusChangedEvent struct {
	SubscriptionID uint
	From           string
	To             string
	Note           string
	Timestamp      time.Time
}

func NewStatusChangedEvent(subscriptionID uint, from, to, note string) *StatusChangedEvent {
	return &StatusChangedEvent{
		SubscriptionID: subscriptionID,
		From:           from,
		To:             to,
		Note:           note,
		Timestamp:      time.Now().UTC(),
	}
}

func (e *StatusChangedEvent) GetEventType() string {
	return "subscription.status_changed"
}

func (e *StatusChangedEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

func (e *StatusChangedEvent) GetAggregateID() uint {
	return e.SubscriptionID
}

// DatesUpdatedEvent fires after a successful schedule-date update.
type DatesUpdatedEvent struct {
	SubscriptionID uint
	Updated        map[string]time.Time
	Timestamp      time.Time
}

func NewDatesUpdatedEvent(subscriptionID uint, updated map[string]time.Time) *DatesUpdatedEvent {
	return &DatesUpdatedEvent{
		SubscriptionID: subscriptionID,
		Updated:        updated,
		Timestamp:      time.Now().UTC(),
	}
}

func (e *DatesUpdatedEvent) GetEventType() string {
	return "subscription.dates_updated"
}

func (e *DatesUpdatedEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

func (e *DatesUpdatedEvent) GetAggregateID() uint {
	return e.SubscriptionID
}

// PaymentCompleteEvent fires when any payment against the subscription
// completes.
type PaymentCompleteEvent struct {
	SubscriptionID uint
	OrderID        uint
	Timestamp      time.Time
}

func NewPaymentCompleteEvent(subscriptionID, orderID uint) *PaymentCompleteEvent {
	return &PaymentCompleteEvent{
		SubscriptionID: subscriptionID,
		OrderID:        orderID,
		Timestamp:      time.Now().UTC(),
	}
}

func (e *PaymentCompleteEvent) GetEventType() string {
	return "subscription.payment_complete"
}

func (e *PaymentCompleteEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

func (e *PaymentCompleteEvent) GetAggregateID() uint {
	return e.SubscriptionID
}

// RenewalPaymentCompleteEvent fires in addition to PaymentCompleteEvent when
// the paid order is a renewal.
type RenewalPaymentCompleteEvent struct {
	SubscriptionID uint
	OrderID        uint
	Timestamp      time.Time
}

func NewRenewalPaymentCompleteEvent(subscriptionID, orderID uint) *RenewalPaymentCompleteEvent {
	return &RenewalPaymentCompleteEvent{
		SubscriptionID: subscriptionID,
		OrderID:        orderID,
		Timestamp:      time.Now().UTC(),
	}
}

func (e *RenewalPaymentCompleteEvent) GetEventType() string {
	return "subscription.renewal_payment_complete"
}

func (e *RenewalPaymentCompleteEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

func (e *RenewalPaymentCompleteEvent) GetAggregateID() uint {
	return e.SubscriptionID
}

// PaymentFailedEvent fires when a payment against the subscription fails.
type PaymentFailedEvent struct {
	SubscriptionID uint
	OrderID        uint
	NewStatus      string
	Timestamp      time.Time
}

func NewPaymentFailedEvent(subscriptionID, orderID uint, newStatus string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		SubscriptionID: subscriptionID,
		OrderID:        orderID,
		NewStatus:      newStatus,
		Timestamp:      time.Now().UTC(),
	}
}

func (e *PaymentFailedEvent) GetEventType() string {
	return "subscription.payment_failed"
}

func (e *PaymentFailedEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

func (e *PaymentFailedEvent) GetAggregateID() uint {
	return e.SubscriptionID
}

// RenewalPaymentFailedEvent fires in addition to PaymentFailedEvent when the
// failed order is a renewal.
type RenewalPaymentFailedEvent struct {
	SubscriptionID uint
	OrderID        uint
	Timestamp      time.Time
}

func NewRenewalPaymentFailedEvent(subscriptionID, orderID uint) *RenewalPaymentFailedEvent {
	return &RenewalPaymentFailedEvent{
		SubscriptionID: subscriptionID,
		OrderID:        orderID,
		Timestamp:      time.Now().UTC(),
	}
}

func (e *RenewalPaymentFailedEvent) GetEventType() string {
	return "subscription.renewal_payment_failed"
}

func (e *RenewalPaymentFailedEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

func (e *RenewalPaymentFailedEvent) GetAggregateID() uint {
	return e.SubscriptionID
}

// RenewalOrderCreatedEvent fires when the renewal processor creates a new
// renewal order for a due subscription.
type RenewalOrderCreatedEvent struct {
	SubscriptionID uint
	OrderID        uint
	Timestamp      time.Time
}

func NewRenewalOrderCreatedEvent(subscriptionID, orderID uint) *RenewalOrderCreatedEvent {
	return &RenewalOrderCreatedEvent{
		SubscriptionID: subscriptionID,
		OrderID:        orderID,
		Timestamp:      time.Now().UTC(),
	}
}

func (e *RenewalOrderCreatedEvent) GetEventType() string {
	return "subscription.renewal_order_created"
}

func (e *RenewalOrderCreatedEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

func (e *RenewalOrderCreatedEvent) GetAggregateID() uint {
	return e.SubscriptionID
}
