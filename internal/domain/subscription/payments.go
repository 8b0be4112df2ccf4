package subscription

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"subcycle/internal/domain/order"
)

// CountKind selects which payment tally PaymentCount returns.
type CountKind string

const (
	CountCompleted CountKind = "completed"
	CountRefunded  CountKind = "refunded"
	CountNet       CountKind = "net"
)

// paymentTally is the per-relation-set memo. Completed and refunded are
// tallied in one ledger pass; net is derived.
type paymentTally struct {
	completed int
	refunded  int
}

// PaymentCount counts payments across the subscription's related orders.
// Passing no relations (or RelationAny) counts across all relation types.
// Tallies are memoized per relation set until a payment is recorded or a
// schedule date changes.
func (s *Subscription) PaymentCount(ctx context.Context, kind CountKind, relations []order.Relation) (int, error) {
	if s.orders == nil {
		return 0, ErrNotHydrated
	}

	rels := order.ExpandRelations(relations)
	key := tallyKey(rels)

	tally, ok := s.paymentCounts[key]
	if !ok {
		related, err := s.orders.RelatedOrders(ctx, s.id, s.parentOrderID, rels...)
		if err != nil {
			return 0, fmt.Errorf("failed to load related orders: %w", err)
		}
		for _, o := range related {
			if !o.IsPaid() {
				continue
			}
			tally.completed++
			if o.Status() == order.StatusRefunded {
				tally.refunded++
			}
		}
		if s.paymentCounts == nil {
			s.paymentCounts = make(map[string]paymentTally)
		}
		s.paymentCounts[key] = tally
	}

	switch kind {
	case CountCompleted:
		return tally.completed, nil
	case CountRefunded:
		return tally.refunded, nil
	case CountNet:
		return tally.completed - tally.refunded, nil
	default:
		return 0, fmt.Errorf("unknown payment count kind: %s", kind)
	}
}

// FailedPaymentCount counts failed payment attempts: a failed parent order
// plus every failed renewal order.
func (s *Subscription) FailedPaymentCount(ctx context.Context) (int, error) {
	if s.orders == nil {
		return 0, ErrNotHydrated
	}

	count := 0

	if s.parentOrderID != 0 {
		parent, err := s.orders.LastOrder(ctx, s.id, s.parentOrderID, order.RelationParent)
		if err != nil {
			return 0, fmt.Errorf("failed to load parent order: %w", err)
		}
		if parent != nil && parent.Status() == order.StatusFailed {
			count++
		}
	}

	renewals, err := s.orders.RelatedOrders(ctx, s.id, s.parentOrderID, order.RelationRenewal)
	if err != nil {
		return 0, fmt.Errorf("failed to load renewal orders: %w", err)
	}
	for _, o := range renewals {
		if o.Status() == order.StatusFailed {
			count++
		}
	}
	return count, nil
}

// ResetPaymentCountCache drops all memoized tallies. Called after a payment
// is recorded against the subscription.
func (s *Subscription) ResetPaymentCountCache() {
	s.invalidatePaymentCounts()
}

func (s *Subscription) invalidatePaymentCounts() {
	s.paymentCounts = nil
}

// tallyKey is order-insensitive: the same relation set always hits the same
// memo entry.
func tallyKey(rels []order.Relation) string {
	names := make([]string, len(rels))
	for i, r := range rels {
		names[i] = string(r)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
