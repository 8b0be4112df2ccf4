package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subcycle/internal/domain/subscription"
	vo "subcycle/internal/domain/subscription/valueobjects"
	"subcycle/internal/shared/biztime"
	apperrors "subcycle/internal/shared/errors"
)

func TestUpdateDates_RoundTrip(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 0)
	sub := h.addSubscription(t, vo.StatusActive, nil, 1500)

	err := h.updateDates.Execute(ctx, UpdateDatesCommand{
		SubscriptionID: 1,
		Dates: map[string]string{
			"next_payment": "2027-03-15 10:00:00",
			"end":          "2028-01-01 00:00:00",
		},
	})
	require.NoError(t, err)

	want, perr := biztime.ParseStorage("2027-03-15 10:00:00")
	require.NoError(t, perr)
	assert.Equal(t, want, sub.Date(vo.DateNextPayment))
	assert.Contains(t, h.publisher.eventTypes(), "subscription.dates_updated")
}

func TestUpdateDates_AcceptsSchedulePrefixedTypes(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 0)
	sub := h.addSubscription(t, vo.StatusActive, nil, 1500)

	err := h.updateDates.Execute(ctx, UpdateDatesCommand{
		SubscriptionID: 1,
		Dates:          map[string]string{"schedule_next_payment": "2027-03-15 10:00:00"},
	})
	require.NoError(t, err)
	assert.False(t, sub.Date(vo.DateNextPayment).IsZero())
}

func TestUpdateDates_OrderingViolationKeepsState(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 0)
	nextPayment := biztime.NowUTC().Add(30 * 24 * time.Hour)
	sub := h.addSubscription(t, vo.StatusActive, map[vo.DateType]time.Time{
		vo.DateNextPayment: nextPayment,
	}, 1500)

	err := h.updateDates.Execute(ctx, UpdateDatesCommand{
		SubscriptionID: 1,
		Dates:          map[string]string{"end": "2024-02-01 00:00:00"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, subscription.ErrInvalidDateOrdering)

	assert.Equal(t, nextPayment, sub.Date(vo.DateNextPayment))
	assert.True(t, sub.Date(vo.DateEnd).IsZero())

	require.NotEmpty(t, h.notes.notes)
	assert.Contains(t, h.notes.notes[len(h.notes.notes)-1], "Unable to update subscription dates")
}

func TestUpdateDates_RejectsUneditableDate(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 0)
	h.addSubscription(t, vo.StatusCancelled, nil, 1500)

	err := h.updateDates.Execute(ctx, UpdateDatesCommand{
		SubscriptionID: 1,
		Dates:          map[string]string{"next_payment": "2027-03-15 10:00:00"},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsAppError(err))
}
