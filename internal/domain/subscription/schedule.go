package subscription

import (
	"time"

	vo "subcycle/internal/domain/subscription/valueobjects"
)

const (
	// nextPaymentSafetyMargin keeps the next payment at least this far in
	// the future so a daylight-saving shift can never schedule a second
	// renewal charge on the same day.
	nextPaymentSafetyMargin = 2 * time.Hour

	// endProximityWindow is how close to the end date a payment may land
	// before it is dropped entirely: a renewal less than 23 hours before
	// expiry would charge for a term that never starts.
	endProximityWindow = 23 * time.Hour

	// maxPeriodAdvances bounds the safety-margin loop. A schedule that
	// needs more advances than this is stale beyond repair.
	maxPeriodAdvances = 3000
)

// NextPaymentFacts carries everything CalculateNextPayment needs. All times
// are UTC; zero means the date is not set.
type NextPaymentFacts struct {
	Start             time.Time
	StoredNextPayment time.Time
	TrialEnd          time.Time
	LastPayment       time.Time // max of last order created/paid
	End               time.Time
	Interval          int
	Period            vo.BillingPeriod
	Synced            bool // product uses date synchronization
	PaymentCount      int  // completed payments recorded so far
	Now               time.Time
}

// CalculateNextPayment computes the next renewal charge time, or the zero
// time when no further payment is due. Pure: identical facts give identical
// results.
//
// Inside a free trial the next payment is the trial end. Otherwise an anchor
// is chosen, one billing interval is added, and the result is pushed forward
// period by period until it clears the 2-hour safety margin. A result that
// would land within 23 hours of the end date means no payment at all.
func CalculateNextPayment(f NextPaymentFacts) time.Time {
	if !f.TrialEnd.IsZero() && f.TrialEnd.After(f.Now) {
		return capToEnd(f.TrialEnd, f.End)
	}

	anchor := nextPaymentAnchor(f)
	next := f.Period.Add(f.Interval, anchor)

	for i := 1; next.Before(f.Now.Add(nextPaymentSafetyMargin)) && i < maxPeriodAdvances; i++ {
		next = f.Period.Add(f.Interval, next)
	}

	return capToEnd(next, f.End)
}

// nextPaymentAnchor picks the date one billing interval is added to:
//  1. the stored next payment, when it is in the past and this is either the
//     first renewal after a free trial or a date-synchronized product;
//     both cases must preserve the originally scheduled day;
//  2. the last payment, when it is no earlier than the start date;
//  3. the stored next payment, when it is after the start date (keeps
//     synchronized schedules intact);
//  4. the start date.
func nextPaymentAnchor(f NextPaymentFacts) time.Time {
	firstRenewalAfterTrial := !f.TrialEnd.IsZero() && f.PaymentCount <= 1

	switch {
	case !f.StoredNextPayment.IsZero() && f.StoredNextPayment.Before(f.Now) && (firstRenewalAfterTrial || f.Synced):
		return f.StoredNextPayment
	case !f.LastPayment.IsZero() && !f.LastPayment.Before(f.Start):
		return f.LastPayment
	case f.StoredNextPayment.After(f.Start):
		return f.StoredNextPayment
	default:
		return f.Start
	}
}

func capToEnd(next, end time.Time) time.Time {
	if !end.IsZero() && next.Add(endProximityWindow).After(end) {
		return time.Time{}
	}
	return next
}

// CalculateTrialEnd computes the trial end date: zero once two or more
// payments are recorded (the trial can never come back), otherwise the
// stored trial end unchanged.
func CalculateTrialEnd(paymentCount int, storedTrialEnd time.Time) time.Time {
	if paymentCount >= 2 {
		return time.Time{}
	}
	return storedTrialEnd
}

// CalculateEndOfPrepaidTerm determines when already-paid service runs out:
// a future next payment marks the term boundary; with no next payment and no
// usable end date the term is already over; otherwise the end date stands.
func CalculateEndOfPrepaidTerm(nextPayment, end, now time.Time) time.Time {
	if nextPayment.After(now) {
		return nextPayment
	}
	if end.IsZero() || end.Before(now) {
		return now
	}
	return end
}
