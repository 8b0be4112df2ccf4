package subscription

import (
	"context"
	"fmt"
	"time"

	vo "subcycle/internal/domain/subscription/valueobjects"
	"subcycle/internal/shared/biztime"
)

// Date returns a stored schedule date, or the zero time when unset. Derived
// dates are resolved by GetDate, which can reach the order ledger.
func (s *Subscription) Date(dateType vo.DateType) time.Time {
	return s.dates[dateType]
}

// Dates returns a copy of the stored schedule dates.
func (s *Subscription) Dates() map[vo.DateType]time.Time {
	out := make(map[vo.DateType]time.Time, len(s.dates))
	for dt, v := range s.dates {
		out[dt] = v
	}
	return out
}

// GetDate resolves any date type, stored or derived. Derived dates come from
// the newest related order carrying the relevant timestamp; a subscription
// with no such order resolves to the zero time.
func (s *Subscription) GetDate(ctx context.Context, dateType vo.DateType) (time.Time, error) {
	if dateType.IsStored() {
		return s.dates[dateType], nil
	}
	if !dateType.IsDerived() {
		return time.Time{}, fmt.Errorf("unknown date type: %s", dateType)
	}

	if s.orders == nil {
		return time.Time{}, ErrNotHydrated
	}

	related, err := s.orders.RelatedOrders(ctx, s.id, s.parentOrderID)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to load related orders: %w", err)
	}

	// Orders are newest first; the first non-zero timestamp wins.
	for _, o := range related {
		var v time.Time
		switch dateType {
		case vo.DateLastOrderCreated:
			v = o.DateCreated()
		case vo.DateLastOrderPaid, vo.DatePaid:
			v = o.DatePaid()
		case vo.DateLastOrderCompleted, vo.DateCompleted:
			v = o.DateCompleted()
		}
		if !v.IsZero() {
			return biztime.ToUTC(v), nil
		}
	}
	return time.Time{}, nil
}

// UpdateDates applies a batch of schedule date changes atomically: every
// requested date is validated against the full resulting timetable and
// either all changes land or none do. A zero value deletes the date, except
// for start, which is never implicitly deleted.
func (s *Subscription) UpdateDates(updates map[vo.DateType]time.Time) error {
	if len(updates) == 0 {
		return nil
	}

	normalized := make(map[vo.DateType]time.Time, len(updates))
	for dateType, v := range updates {
		if dateType.IsDerived() {
			return fmt.Errorf("%w: %s is derived from related orders", ErrProtectedDate, dateType)
		}
		if !dateType.IsStored() {
			return fmt.Errorf("unknown date type: %s", dateType)
		}
		v = biztime.ToUTC(v)
		if v.IsZero() && dateType == vo.DateStart {
			continue
		}
		normalized[dateType] = v
	}

	timetable := s.Dates()
	for dateType, v := range normalized {
		if v.IsZero() {
			delete(timetable, dateType)
		} else {
			timetable[dateType] = v
		}
	}

	if violations := validateDateOrdering(timetable); len(violations) > 0 {
		return NewDateOrderingError(violations)
	}

	changed := false
	for dateType, v := range normalized {
		if current, ok := s.dates[dateType]; ok && current.Equal(v) {
			continue
		}
		if v.IsZero() {
			if _, ok := s.dates[dateType]; !ok {
				continue
			}
			delete(s.dates, dateType)
		} else {
			s.dates[dateType] = v
		}
		changed = true
	}
	if changed {
		s.invalidatePaymentCounts()
		s.touch()
	}
	return nil
}

// DeleteDate removes a stored schedule date. Start and all derived dates
// are protected.
func (s *Subscription) DeleteDate(dateType vo.DateType) error {
	if dateType.IsProtectedFromDeletion() {
		return NewProtectedDateError(string(dateType))
	}
	if !dateType.IsStored() {
		return fmt.Errorf("unknown date type: %s", dateType)
	}
	if _, ok := s.dates[dateType]; !ok {
		return nil
	}
	delete(s.dates, dateType)
	s.invalidatePaymentCounts()
	s.touch()
	return nil
}

// CanDateBeUpdated reports whether a schedule date may be changed in the
// subscription's current state.
func (s *Subscription) CanDateBeUpdated(ctx context.Context, dateType vo.DateType) (bool, error) {
	switch dateType {
	case vo.DateStart:
		return s.status == vo.StatusAutoDraft || s.status == vo.StatusDraft || s.status == vo.StatusPending, nil

	case vo.DateTrialEnd:
		if s.status.IsEnded() {
			return false, nil
		}
		// The cached payment tally may be stale here; a payment recorded
		// since the last read would wrongly keep the trial editable.
		s.invalidatePaymentCounts()
		count, err := s.PaymentCount(ctx, CountCompleted, nil)
		if err != nil {
			return false, err
		}
		if count >= 2 {
			return false, nil
		}
		return s.status == vo.StatusPending || s.SupportsFeature(ctx, FeatureDateChanges), nil

	case vo.DateNextPayment, vo.DateEnd, vo.DateCancelled, vo.DatePaymentRetry:
		if s.status.IsEnded() {
			return false, nil
		}
		return s.status == vo.StatusPending || s.SupportsFeature(ctx, FeatureDateChanges), nil

	default:
		return false, nil
	}
}

// validateDateOrdering checks the timetable against the required ordering
//
//	start < trial_end < next_payment <= cancelled <= end
//
// and returns one message per violated pair, most significant date first.
func validateDateOrdering(timetable map[vo.DateType]time.Time) []string {
	var violations []string

	set := func(dt vo.DateType) (time.Time, bool) {
		v, ok := timetable[dt]
		return v, ok && !v.IsZero()
	}

	mustAfter := func(dt, other vo.DateType, strict bool) {
		v, ok := set(dt)
		if !ok {
			return
		}
		o, ok := set(other)
		if !ok {
			return
		}
		if v.Before(o) || (strict && v.Equal(o)) {
			violations = append(violations, fmt.Sprintf("the %s date must occur after the %s date", dt, other))
		}
	}

	for _, dt := range vo.ValidationPriority {
		switch dt {
		case vo.DateEnd:
			mustAfter(vo.DateEnd, vo.DateCancelled, false)
			mustAfter(vo.DateEnd, vo.DateNextPayment, false)
			mustAfter(vo.DateEnd, vo.DateTrialEnd, false)
			mustAfter(vo.DateEnd, vo.DateStart, true)
		case vo.DateCancelled:
			mustAfter(vo.DateCancelled, vo.DateNextPayment, false)
			mustAfter(vo.DateCancelled, vo.DateTrialEnd, false)
			mustAfter(vo.DateCancelled, vo.DateStart, true)
		case vo.DateNextPayment:
			mustAfter(vo.DateNextPayment, vo.DateTrialEnd, true)
			mustAfter(vo.DateNextPayment, vo.DateStart, true)
		case vo.DateTrialEnd:
			mustAfter(vo.DateTrialEnd, vo.DateStart, true)
		}
	}
	return violations
}

// LastPaymentTime is the most recent of the derived last-order created and
// paid dates, used as the renewal anchor.
func (s *Subscription) LastPaymentTime(ctx context.Context) (time.Time, error) {
	created, err := s.GetDate(ctx, vo.DateLastOrderCreated)
	if err != nil {
		return time.Time{}, err
	}
	paid, err := s.GetDate(ctx, vo.DateLastOrderPaid)
	if err != nil {
		return time.Time{}, err
	}
	return biztime.MaxTime(created, paid), nil
}
