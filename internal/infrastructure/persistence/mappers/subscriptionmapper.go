// Package mappers converts between domain entities and persistence models.
package mappers

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"subcycle/internal/domain/subscription"
	vo "subcycle/internal/domain/subscription/valueobjects"
	"subcycle/internal/infrastructure/persistence/models"
)

// SubscriptionMapper converts subscriptions between the domain and database
// representations.
type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

// ToModel converts a domain subscription to its persistence model.
func (m *SubscriptionMapper) ToModel(sub *subscription.Subscription) (*models.SubscriptionModel, error) {
	var metadata datatypes.JSON
	if len(sub.Metadata()) > 0 {
		raw, err := json.Marshal(sub.Metadata())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal subscription metadata: %w", err)
		}
		metadata = raw
	}

	return &models.SubscriptionModel{
		ID:               sub.ID(),
		Status:           sub.Status().String(),
		BillingPeriod:    sub.BillingPeriod().String(),
		BillingInterval:  sub.BillingInterval(),
		TotalCents:       sub.TotalCents(),
		SuspensionCount:  sub.SuspensionCount(),
		ManualRenewal:    sub.RequiresManualRenewal(),
		Synced:           sub.IsSynced(),
		ParentOrderID:    sub.ParentOrderID(),
		DateStart:        timePtr(sub.Date(vo.DateStart)),
		DateTrialEnd:     timePtr(sub.Date(vo.DateTrialEnd)),
		DateNextPayment:  timePtr(sub.Date(vo.DateNextPayment)),
		DateCancelled:    timePtr(sub.Date(vo.DateCancelled)),
		DateEnd:          timePtr(sub.Date(vo.DateEnd)),
		DatePaymentRetry: timePtr(sub.Date(vo.DatePaymentRetry)),
		SnapshotEnd:      timePtr(sub.SnapshotEnd()),
		SnapshotTrialEnd: timePtr(sub.SnapshotTrialEnd()),
		Metadata:         metadata,
		Version:          sub.Version(),
		CreatedAt:        sub.CreatedAt(),
		UpdatedAt:        sub.UpdatedAt(),
	}, nil
}

// ToEntity converts a persistence model back to the domain subscription.
func (m *SubscriptionMapper) ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	status, err := vo.ParseStatus(model.Status)
	if err != nil {
		return nil, err
	}
	period, err := vo.ParseBillingPeriod(model.BillingPeriod)
	if err != nil {
		return nil, err
	}

	var metadata map[string]interface{}
	if len(model.Metadata) > 0 {
		if err := json.Unmarshal(model.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal subscription metadata: %w", err)
		}
	}

	dates := map[vo.DateType]time.Time{
		vo.DateStart:        timeVal(model.DateStart),
		vo.DateTrialEnd:     timeVal(model.DateTrialEnd),
		vo.DateNextPayment:  timeVal(model.DateNextPayment),
		vo.DateCancelled:    timeVal(model.DateCancelled),
		vo.DateEnd:          timeVal(model.DateEnd),
		vo.DatePaymentRetry: timeVal(model.DatePaymentRetry),
	}

	return subscription.ReconstructSubscription(subscription.SubscriptionParams{
		ID:               model.ID,
		Status:           status,
		Dates:            dates,
		Period:           period,
		Interval:         model.BillingInterval,
		TotalCents:       model.TotalCents,
		SuspensionCount:  model.SuspensionCount,
		ManualRenewal:    model.ManualRenewal,
		Synced:           model.Synced,
		ParentOrderID:    model.ParentOrderID,
		SnapshotEnd:      timeVal(model.SnapshotEnd),
		SnapshotTrialEnd: timeVal(model.SnapshotTrialEnd),
		Metadata:         metadata,
		Version:          model.Version,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	})
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	utc := t.UTC()
	return &utc
}

func timeVal(p *time.Time) time.Time {
	if p == nil {
		return time.Time{}
	}
	return *p
}
