package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subcycle/internal/domain/order"
	"subcycle/internal/domain/subscription"
	vo "subcycle/internal/domain/subscription/valueobjects"
	"subcycle/internal/shared/biztime"
)

func TestPaymentComplete_ReactivatesOnHold(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 0)
	sub := h.addSubscription(t, vo.StatusOnHold, nil, 1500)
	sub.IncrementSuspensionCount()
	sub.IncrementSuspensionCount()
	h.seedRenewal(7, order.StatusPending, time.Time{})

	err := h.paymentComplete.Execute(ctx, PaymentCompleteCommand{
		SubscriptionID: 1,
		OrderID:        7,
		TransactionID:  "txn_123",
	})
	require.NoError(t, err)

	assert.True(t, h.store.orders[7].IsPaid())
	assert.Zero(t, sub.SuspensionCount())
	assert.Equal(t, vo.StatusActive, sub.Status())

	next := sub.Date(vo.DateNextPayment)
	require.False(t, next.IsZero())
	assert.True(t, next.After(biztime.NowUTC()))

	types := h.publisher.eventTypes()
	assert.Contains(t, types, "subscription.payment_complete")
	assert.Contains(t, types, "subscription.renewal_payment_complete")
}

func TestPaymentComplete_NonRenewalOrder(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 0)
	sub := h.addSubscription(t, vo.StatusActive, nil, 1500)
	h.store.addOrder(9, order.StatusPending, time.Time{}, 1500)

	err := h.paymentComplete.Execute(ctx, PaymentCompleteCommand{SubscriptionID: 1, OrderID: 9})
	require.NoError(t, err)

	assert.True(t, h.store.orders[9].IsPaid())
	assert.Equal(t, vo.StatusActive, sub.Status())

	types := h.publisher.eventTypes()
	assert.Contains(t, types, "subscription.payment_complete")
	assert.NotContains(t, types, "subscription.renewal_payment_complete")
}

func TestPaymentComplete_ActivatesPendingWithoutOrder(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 0)
	sub := h.addSubscription(t, vo.StatusPending, nil, 1500)

	err := h.paymentComplete.Execute(ctx, PaymentCompleteCommand{SubscriptionID: 1})
	require.NoError(t, err)

	assert.Equal(t, vo.StatusActive, sub.Status())
	assert.False(t, sub.Date(vo.DateNextPayment).IsZero())
}

func TestPaymentFailed_SuspendsAndMarksOrder(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 0)
	sub := h.addSubscription(t, vo.StatusActive, nil, 1500)
	h.seedRenewal(7, order.StatusPending, time.Time{})

	err := h.paymentFailed.Execute(ctx, PaymentFailedCommand{SubscriptionID: 1, OrderID: 7})
	require.NoError(t, err)

	assert.Equal(t, order.StatusFailed, h.store.orders[7].Status())
	assert.Equal(t, vo.StatusOnHold, sub.Status())
	assert.Equal(t, 1, sub.SuspensionCount())

	types := h.publisher.eventTypes()
	assert.Contains(t, types, "subscription.payment_failed")
	assert.Contains(t, types, "subscription.renewal_payment_failed")
}

func TestPaymentFailed_CancelsAtMaxFailures(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 2)
	sub := h.addSubscription(t, vo.StatusActive, nil, 1500)
	h.seedRenewal(5, order.StatusFailed, time.Time{})
	h.seedRenewal(7, order.StatusPending, time.Time{})

	err := h.paymentFailed.Execute(ctx, PaymentFailedCommand{SubscriptionID: 1, OrderID: 7})
	require.NoError(t, err)

	assert.Equal(t, vo.StatusCancelled, sub.Status())
	assert.Contains(t, h.notes.notes,
		"Payment failed 2 times. Subscription cancelled. Status changed from active to cancelled.")

	var failedEvent *subscription.PaymentFailedEvent
	for _, e := range h.publisher.events {
		if fe, ok := e.(*subscription.PaymentFailedEvent); ok {
			failedEvent = fe
		}
	}
	require.NotNil(t, failedEvent)
	assert.Equal(t, vo.StatusCancelled.String(), failedEvent.NewStatus)
}

func TestPaymentFailed_NoTransitionWhenAlreadyOnHold(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 0)
	sub := h.addSubscription(t, vo.StatusOnHold, nil, 1500)
	h.seedRenewal(7, order.StatusPending, time.Time{})

	err := h.paymentFailed.Execute(ctx, PaymentFailedCommand{SubscriptionID: 1, OrderID: 7})
	require.NoError(t, err)

	assert.Equal(t, vo.StatusOnHold, sub.Status())
	assert.Zero(t, sub.SuspensionCount())
	assert.Contains(t, h.publisher.eventTypes(), "subscription.payment_failed")
}
