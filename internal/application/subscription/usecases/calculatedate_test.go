package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subcycle/internal/domain/order"
	vo "subcycle/internal/domain/subscription/valueobjects"
	"subcycle/internal/shared/biztime"
)

func TestCalculateDate_NextPaymentPreview(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 0)
	uc := NewCalculateDateUseCase(h.repo, testLogger())

	now := biztime.NowUTC()
	stored := now.Add(-24 * time.Hour)
	sub := h.addSubscription(t, vo.StatusActive, map[vo.DateType]time.Time{
		vo.DateNextPayment: stored,
	}, 1500)

	result, err := uc.Execute(ctx, CalculateDateCommand{SubscriptionID: 1, DateType: "next_payment"})
	require.NoError(t, err)

	assert.Equal(t, "next_payment", result.DateType)
	assert.Equal(t, biztime.FormatStorage(stored), result.Stored)

	calculated, err := biztime.ParseStorage(result.Calculated)
	require.NoError(t, err)
	assert.True(t, calculated.After(now.Add(2*time.Hour)))

	// Pure preview: nothing was written, and a second call agrees.
	assert.Equal(t, stored, sub.Date(vo.DateNextPayment))
	again, err := uc.Execute(ctx, CalculateDateCommand{SubscriptionID: 1, DateType: "next_payment"})
	require.NoError(t, err)
	assert.Equal(t, result.Calculated, again.Calculated)
}

func TestCalculateDate_TrialEndGoneAfterSecondPayment(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 0)
	uc := NewCalculateDateUseCase(h.repo, testLogger())

	h.addSubscription(t, vo.StatusActive, map[vo.DateType]time.Time{
		vo.DateTrialEnd: time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC),
	}, 1500)
	h.seedRenewal(5, order.StatusCompleted, time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC))
	h.seedRenewal(6, order.StatusCompleted, time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))

	result, err := uc.Execute(ctx, CalculateDateCommand{SubscriptionID: 1, DateType: "trial_end"})
	require.NoError(t, err)
	assert.Empty(t, result.Calculated)
}
