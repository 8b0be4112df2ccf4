package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "subcycle/internal/domain/subscription/valueobjects"
	"subcycle/internal/shared/biztime"
)

func TestCreateSubscription(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 0)
	uc := NewCreateSubscriptionUseCase(h.repo, testLogger())

	id, err := uc.Execute(ctx, CreateSubscriptionCommand{
		BillingPeriod:   "month",
		BillingInterval: 1,
		Start:           "2026-01-10 00:00:00",
		TrialEnd:        "2026-02-10 00:00:00",
		TotalCents:      1500,
		ParentOrderID:   42,
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	sub, err := h.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, vo.StatusPending, sub.Status())
	assert.Equal(t, vo.PeriodMonth, sub.BillingPeriod())
	assert.Equal(t, uint(42), sub.ParentOrderID())

	start, _ := biztime.ParseStorage("2026-01-10 00:00:00")
	trialEnd, _ := biztime.ParseStorage("2026-02-10 00:00:00")
	assert.Equal(t, start, sub.Date(vo.DateStart))
	assert.Equal(t, trialEnd, sub.Date(vo.DateTrialEnd))
}

func TestCreateSubscription_DefaultsStartToNow(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 0)
	uc := NewCreateSubscriptionUseCase(h.repo, testLogger())

	id, err := uc.Execute(ctx, CreateSubscriptionCommand{
		BillingPeriod:   "week",
		BillingInterval: 2,
		TotalCents:      500,
	})
	require.NoError(t, err)

	sub, err := h.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.WithinDuration(t, biztime.NowUTC(), sub.Date(vo.DateStart), 2*time.Second)
}

func TestCreateSubscription_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 0)
	uc := NewCreateSubscriptionUseCase(h.repo, testLogger())

	_, err := uc.Execute(ctx, CreateSubscriptionCommand{
		BillingPeriod:   "fortnight",
		BillingInterval: 1,
	})
	require.Error(t, err)

	// A trial before the start date never validates.
	_, err = uc.Execute(ctx, CreateSubscriptionCommand{
		BillingPeriod:   "month",
		BillingInterval: 1,
		Start:           "2026-03-10 00:00:00",
		TrialEnd:        "2026-02-10 00:00:00",
	})
	require.Error(t, err)
}
