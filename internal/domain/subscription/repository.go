package subscription

import (
	"context"
	"time"
)

// Repository persists subscriptions. SaveDates writes only the schedule
// date columns so a date update never races a full-row save.
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, id uint) (*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error
	SaveDates(ctx context.Context, sub *Subscription) error
	ListDueForRenewal(ctx context.Context, before time.Time, limit int) ([]uint, error)
}

// Feature names a gateway capability the engine asks about.
type Feature string

const (
	FeatureSuspension        Feature = "subscription_suspension"
	FeatureReactivation      Feature = "subscription_reactivation"
	FeatureCancellation      Feature = "subscription_cancellation"
	FeatureDateChanges       Feature = "subscription_date_changes"
	FeatureScheduledPayments Feature = "gateway_scheduled_payments"
)

// CapabilityResolver answers what the subscription's payment gateway can do.
type CapabilityResolver interface {
	Supports(ctx context.Context, sub *Subscription, feature Feature) bool
	HasAvailableAutomaticMethod(ctx context.Context, sub *Subscription) bool
}

// EnvironmentChecker reports site-level conditions that force manual
// renewal regardless of gateway support.
type EnvironmentChecker interface {
	IsStagingSite() bool
}

// NoteRecorder appends human-readable notes to a subscription's audit
// trail. Rejected transitions and validation failures are recorded here in
// addition to being returned as errors.
type NoteRecorder interface {
	RecordNote(ctx context.Context, subscriptionID uint, note string) error
}

