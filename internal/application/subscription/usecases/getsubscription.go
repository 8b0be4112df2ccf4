package usecases

import (
	"context"

	"subcycle/internal/domain/subscription"
	vo "subcycle/internal/domain/subscription/valueobjects"
	"subcycle/internal/shared/biztime"
	"subcycle/internal/shared/logger"
)

// GetSubscriptionQuery fetches one subscription.
type GetSubscriptionQuery struct {
	SubscriptionID uint
}

// SubscriptionResult is the read model returned to the interface layer.
// Dates are in storage format; absent dates are omitted.
type SubscriptionResult struct {
	ID              uint              `json:"id"`
	Status          string            `json:"status"`
	BillingPeriod   string            `json:"billing_period"`
	BillingInterval int               `json:"billing_interval"`
	TotalCents      int64             `json:"total_cents"`
	SuspensionCount int               `json:"suspension_count"`
	ManualRenewal   bool              `json:"manual_renewal"`
	Synced          bool              `json:"synced"`
	ParentOrderID   uint              `json:"parent_order_id,omitempty"`
	Dates           map[string]string `json:"dates"`
	PaymentCount    int               `json:"payment_count"`
	CreatedAt       string            `json:"created_at"`
	UpdatedAt       string            `json:"updated_at"`
}

// GetSubscriptionUseCase resolves a subscription with its stored and
// derived dates and the completed payment count.
type GetSubscriptionUseCase struct {
	repo   subscription.Repository
	logger logger.Interface
}

func NewGetSubscriptionUseCase(repo subscription.Repository, log logger.Interface) *GetSubscriptionUseCase {
	return &GetSubscriptionUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *GetSubscriptionUseCase) Execute(ctx context.Context, query GetSubscriptionQuery) (*SubscriptionResult, error) {
	sub, err := uc.repo.GetByID(ctx, query.SubscriptionID)
	if err != nil {
		return nil, err
	}

	dates := make(map[string]string)
	for dateType, value := range sub.Dates() {
		dates[dateType.String()] = biztime.FormatStorage(value)
	}
	for _, dateType := range []vo.DateType{vo.DateLastOrderCreated, vo.DateLastOrderPaid, vo.DateLastOrderCompleted} {
		value, err := sub.GetDate(ctx, dateType)
		if err != nil {
			return nil, err
		}
		if !value.IsZero() {
			dates[dateType.String()] = biztime.FormatStorage(value)
		}
	}

	paymentCount, err := sub.PaymentCount(ctx, subscription.CountCompleted, nil)
	if err != nil {
		return nil, err
	}

	return &SubscriptionResult{
		ID:              sub.ID(),
		Status:          sub.Status().String(),
		BillingPeriod:   sub.BillingPeriod().String(),
		BillingInterval: sub.BillingInterval(),
		TotalCents:      sub.TotalCents(),
		SuspensionCount: sub.SuspensionCount(),
		ManualRenewal:   sub.RequiresManualRenewal(),
		Synced:          sub.IsSynced(),
		ParentOrderID:   sub.ParentOrderID(),
		Dates:           dates,
		PaymentCount:    paymentCount,
		CreatedAt:       biztime.FormatStorage(sub.CreatedAt()),
		UpdatedAt:       biztime.FormatStorage(sub.UpdatedAt()),
	}, nil
}
