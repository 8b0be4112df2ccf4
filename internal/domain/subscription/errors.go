package subscription

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrIllegalTransition: the requested status is not permitted from the
	// current status. The subscription is left unchanged.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrInvalidDateOrdering: a date update would break the schedule
	// ordering invariant. No dates are committed.
	ErrInvalidDateOrdering = errors.New("invalid date ordering")

	// ErrProtectedDate: attempt to delete the start date or an
	// order-derived date.
	ErrProtectedDate = errors.New("date cannot be deleted")

	// ErrRenewalOrderCreation: the order store failed to create a renewal
	// order even after a retry. The subscription stays on hold.
	ErrRenewalOrderCreation = errors.New("failed to create renewal order")

	// ErrTransientProcessing: a side effect of a status transition failed;
	// the status has been reverted and the failure recorded.
	ErrTransientProcessing = errors.New("transient processing failure")

	ErrInvalidBillingPeriod = errors.New("invalid billing period")
	ErrNotHydrated          = errors.New("subscription collaborators not attached")
)

func NewIllegalTransitionError(from, to string) error {
	return fmt.Errorf("%w: from %s to %s", ErrIllegalTransition, from, to)
}

// NewDateOrderingError aggregates every ordering violation from a single
// update into one error so callers see the full picture at once.
func NewDateOrderingError(violations []string) error {
	return fmt.Errorf("%w: %s", ErrInvalidDateOrdering, strings.Join(violations, "; "))
}

func NewProtectedDateError(dateType string) error {
	return fmt.Errorf("%w: %s", ErrProtectedDate, dateType)
}
