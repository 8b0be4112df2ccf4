package usecases

import (
	"context"
	"fmt"
	"time"

	"subcycle/internal/domain/subscription"
	vo "subcycle/internal/domain/subscription/valueobjects"
	"subcycle/internal/shared/biztime"
	"subcycle/internal/shared/logger"
)

// CreateSubscriptionCommand registers a new subscription. Dates are in
// storage format; an empty Start means now.
type CreateSubscriptionCommand struct {
	BillingPeriod   string
	BillingInterval int
	Start           string
	TrialEnd        string
	End             string
	TotalCents      int64
	ParentOrderID   uint
	ManualRenewal   bool
	Synced          bool
}

// CreateSubscriptionUseCase creates a pending subscription with its initial
// schedule.
type CreateSubscriptionUseCase struct {
	repo   subscription.Repository
	logger logger.Interface
}

func NewCreateSubscriptionUseCase(repo subscription.Repository, log logger.Interface) *CreateSubscriptionUseCase {
	return &CreateSubscriptionUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *CreateSubscriptionUseCase) Execute(ctx context.Context, cmd CreateSubscriptionCommand) (uint, error) {
	period, err := vo.ParseBillingPeriod(cmd.BillingPeriod)
	if err != nil {
		return 0, err
	}

	start, err := biztime.ParseStorage(cmd.Start)
	if err != nil {
		return 0, err
	}
	if start.IsZero() {
		start = biztime.NowUTC()
	}

	sub, err := subscription.NewSubscription(period, cmd.BillingInterval, start, cmd.TotalCents)
	if err != nil {
		return 0, err
	}

	sub.SetManualRenewal(cmd.ManualRenewal)
	sub.SetSynced(cmd.Synced)
	if cmd.ParentOrderID != 0 {
		sub.SetParentOrderID(cmd.ParentOrderID)
	}

	initial := make(map[vo.DateType]time.Time)
	if cmd.TrialEnd != "" {
		trialEnd, err := biztime.ParseStorage(cmd.TrialEnd)
		if err != nil {
			return 0, err
		}
		initial[vo.DateTrialEnd] = trialEnd
	}
	if cmd.End != "" {
		end, err := biztime.ParseStorage(cmd.End)
		if err != nil {
			return 0, err
		}
		initial[vo.DateEnd] = end
	}
	if len(initial) > 0 {
		if err := sub.UpdateDates(initial); err != nil {
			return 0, err
		}
	}

	if err := uc.repo.Create(ctx, sub); err != nil {
		return 0, fmt.Errorf("failed to create subscription: %w", err)
	}

	uc.logger.Infow("subscription created",
		"subscription_id", sub.ID(), "period", period, "interval", sub.BillingInterval())
	return sub.ID(), nil
}
