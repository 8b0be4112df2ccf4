// Package gateway adapts payment-gateway capability lookups for the engine.
package gateway

import (
	"context"

	"subcycle/internal/domain/subscription"
)

// StaticCapabilityResolver answers capability checks from a fixed table.
// Real gateway integrations implement subscription.CapabilityResolver
// against their own APIs; the static resolver covers single-gateway
// deployments and tests.
type StaticCapabilityResolver struct {
	features  map[subscription.Feature]bool
	automatic bool
}

func NewStaticCapabilityResolver(features map[subscription.Feature]bool, automatic bool) *StaticCapabilityResolver {
	return &StaticCapabilityResolver{
		features:  features,
		automatic: automatic,
	}
}

// NewFullCapabilityResolver supports every feature and automatic payments.
func NewFullCapabilityResolver() *StaticCapabilityResolver {
	return &StaticCapabilityResolver{
		features: map[subscription.Feature]bool{
			subscription.FeatureSuspension:        true,
			subscription.FeatureReactivation:      true,
			subscription.FeatureCancellation:      true,
			subscription.FeatureDateChanges:       true,
			subscription.FeatureScheduledPayments: true,
		},
		automatic: true,
	}
}

func (r *StaticCapabilityResolver) Supports(ctx context.Context, sub *subscription.Subscription, feature subscription.Feature) bool {
	return r.features[feature]
}

func (r *StaticCapabilityResolver) HasAvailableAutomaticMethod(ctx context.Context, sub *subscription.Subscription) bool {
	return r.automatic
}
