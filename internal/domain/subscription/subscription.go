// Package subscription implements the billing-schedule engine's core: the
// subscription aggregate, its schedule dates, the status transition guard
// and the pure date arithmetic renewals are computed from.
package subscription

import (
	"context"
	"fmt"
	"time"

	"subcycle/internal/domain/order"
	vo "subcycle/internal/domain/subscription/valueobjects"
	"subcycle/internal/shared/biztime"
)

// Subscription is the aggregate root. It owns the schedule dates, the
// status and the derived counters; related orders are referenced through
// the ledger query, never embedded.
type Subscription struct {
	id              uint
	status          vo.Status
	dates           map[vo.DateType]time.Time
	period          vo.BillingPeriod
	interval        int
	totalCents      int64
	suspensionCount int
	manualRenewal   bool
	synced          bool
	parentOrderID   uint

	// Pre-cancellation snapshot, used to restore the schedule when a
	// pending-cancel subscription reactivates.
	snapshotEnd      time.Time
	snapshotTrialEnd time.Time

	metadata  map[string]interface{}
	version   int
	createdAt time.Time
	updatedAt time.Time

	// paymentCounts memoizes related-order payment tallies per relation
	// set. Reset whenever a payment is recorded or a date bearing on
	// payment eligibility changes.
	paymentCounts map[string]paymentTally

	orders *order.Query
	caps   CapabilityResolver
	env    EnvironmentChecker
}

// NewSubscription creates a pending subscription with its start date set.
func NewSubscription(period vo.BillingPeriod, interval int, start time.Time, totalCents int64) (*Subscription, error) {
	if !period.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBillingPeriod, period)
	}
	if interval < 1 {
		return nil, fmt.Errorf("billing interval must be at least 1, got %d", interval)
	}
	if start.IsZero() {
		return nil, fmt.Errorf("start date is required")
	}
	if totalCents < 0 {
		return nil, fmt.Errorf("recurring total cannot be negative")
	}

	now := biztime.NowUTC()
	return &Subscription{
		status:     vo.StatusPending,
		dates:      map[vo.DateType]time.Time{vo.DateStart: biztime.ToUTC(start)},
		period:     period,
		interval:   interval,
		totalCents: totalCents,
		metadata:   make(map[string]interface{}),
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// SubscriptionParams carries everything needed to rebuild a subscription
// from persistence.
type SubscriptionParams struct {
	ID               uint
	Status           vo.Status
	Dates            map[vo.DateType]time.Time
	Period           vo.BillingPeriod
	Interval         int
	TotalCents       int64
	SuspensionCount  int
	ManualRenewal    bool
	Synced           bool
	ParentOrderID    uint
	SnapshotEnd      time.Time
	SnapshotTrialEnd time.Time
	Metadata         map[string]interface{}
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ReconstructSubscription rebuilds a subscription from persistence. Dates
// are assigned as stored, without ordering validation: historical rows may
// predate the current invariants and must still load.
func ReconstructSubscription(p SubscriptionParams) (*Subscription, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if !p.Status.IsValid() {
		return nil, fmt.Errorf("invalid subscription status: %s", p.Status)
	}
	if !p.Period.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBillingPeriod, p.Period)
	}
	if p.Interval < 1 {
		return nil, fmt.Errorf("billing interval must be at least 1, got %d", p.Interval)
	}

	dates := make(map[vo.DateType]time.Time, len(p.Dates))
	for dt, v := range p.Dates {
		if !dt.IsStored() || v.IsZero() {
			continue
		}
		dates[dt] = biztime.ToUTC(v)
	}

	metadata := p.Metadata
	if metadata == nil {
		metadata = make(map[string]interface{})
	}

	return &Subscription{
		id:               p.ID,
		status:           p.Status,
		dates:            dates,
		period:           p.Period,
		interval:         p.Interval,
		totalCents:       p.TotalCents,
		suspensionCount:  p.SuspensionCount,
		manualRenewal:    p.ManualRenewal,
		synced:           p.Synced,
		parentOrderID:    p.ParentOrderID,
		snapshotEnd:      biztime.ToUTC(p.SnapshotEnd),
		snapshotTrialEnd: biztime.ToUTC(p.SnapshotTrialEnd),
		metadata:         metadata,
		version:          p.Version,
		createdAt:        p.CreatedAt,
		updatedAt:        p.UpdatedAt,
	}, nil
}

// AttachCollaborators wires the external collaborators the aggregate
// delegates to. Called by the repository after reconstruction.
func (s *Subscription) AttachCollaborators(orders *order.Query, caps CapabilityResolver, env EnvironmentChecker) {
	s.orders = orders
	s.caps = caps
	s.env = env
}

func (s *Subscription) ID() uint {
	return s.id
}

func (s *Subscription) Status() vo.Status {
	return s.status
}

func (s *Subscription) BillingPeriod() vo.BillingPeriod {
	return s.period
}

func (s *Subscription) BillingInterval() int {
	return s.interval
}

func (s *Subscription) TotalCents() int64 {
	return s.totalCents
}

func (s *Subscription) SuspensionCount() int {
	return s.suspensionCount
}

// RequiresManualRenewal returns the stored flag only; IsManual resolves the
// effective value including site and gateway conditions.
func (s *Subscription) RequiresManualRenewal() bool {
	return s.manualRenewal
}

func (s *Subscription) IsSynced() bool {
	return s.synced
}

func (s *Subscription) ParentOrderID() uint {
	return s.parentOrderID
}

func (s *Subscription) SnapshotEnd() time.Time {
	return s.snapshotEnd
}

func (s *Subscription) SnapshotTrialEnd() time.Time {
	return s.snapshotTrialEnd
}

func (s *Subscription) Metadata() map[string]interface{} {
	return s.metadata
}

func (s *Subscription) Version() int {
	return s.version
}

func (s *Subscription) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Subscription) UpdatedAt() time.Time {
	return s.updatedAt
}

// SetID sets the subscription ID (only for persistence layer use).
func (s *Subscription) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("subscription ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	s.id = id
	return nil
}

// SetStatus assigns the status without consulting the transition guard.
// Only the payment event processor calls this, after the guard has ruled;
// it is also how a failed transition's side effects get reverted.
func (s *Subscription) SetStatus(status vo.Status) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid subscription status: %s", status)
	}
	if s.status == status {
		return nil
	}
	s.status = status
	s.touch()
	return nil
}

func (s *Subscription) SetManualRenewal(manual bool) {
	if s.manualRenewal == manual {
		return
	}
	s.manualRenewal = manual
	s.touch()
}

func (s *Subscription) SetSynced(synced bool) {
	if s.synced == synced {
		return
	}
	s.synced = synced
	s.touch()
}

func (s *Subscription) SetParentOrderID(orderID uint) {
	if s.parentOrderID == orderID {
		return
	}
	s.parentOrderID = orderID
	s.touch()
}

// IncrementSuspensionCount bumps the counter; it only ever grows, except
// through ResetSuspensionCount on successful payment.
func (s *Subscription) IncrementSuspensionCount() {
	s.suspensionCount++
	s.touch()
}

func (s *Subscription) ResetSuspensionCount() {
	if s.suspensionCount == 0 {
		return
	}
	s.suspensionCount = 0
	s.touch()
}

// SaveScheduleSnapshot records the current end and trial end so a later
// reactivation out of pending-cancel can restore them.
func (s *Subscription) SaveScheduleSnapshot() {
	s.snapshotEnd = s.Date(vo.DateEnd)
	s.snapshotTrialEnd = s.Date(vo.DateTrialEnd)
	s.touch()
}

// ClearScheduleSnapshot drops the pre-cancellation snapshot.
func (s *Subscription) ClearScheduleSnapshot() {
	s.snapshotEnd = time.Time{}
	s.snapshotTrialEnd = time.Time{}
	s.touch()
}

// IsManual reports whether renewals must be triggered manually: forced on a
// staging site, by the stored flag, or when no gateway can charge this
// subscription automatically.
func (s *Subscription) IsManual(ctx context.Context) bool {
	if s.env != nil && s.env.IsStagingSite() {
		return true
	}
	if s.manualRenewal {
		return true
	}
	if s.caps == nil {
		return true
	}
	return !s.caps.HasAvailableAutomaticMethod(ctx, s)
}

// SupportsFeature asks the capability resolver about a gateway feature.
// Without a resolver nothing is supported.
func (s *Subscription) SupportsFeature(ctx context.Context, feature Feature) bool {
	if s.caps == nil {
		return false
	}
	return s.caps.Supports(ctx, s, feature)
}

// NeedsPayment reports whether money is still owed on the subscription:
// the subscription itself is pending with a recurring total, the parent
// order is unpaid or in a blocked status, or the most recent renewal or
// switch order is.
func (s *Subscription) NeedsPayment(ctx context.Context) (bool, error) {
	if s.status == vo.StatusPending && s.totalCents > 0 {
		return true, nil
	}

	if s.orders == nil {
		return false, ErrNotHydrated
	}

	if s.parentOrderID != 0 {
		parent, err := s.orders.LastOrder(ctx, s.id, s.parentOrderID, order.RelationParent)
		if err != nil {
			return false, fmt.Errorf("failed to load parent order: %w", err)
		}
		if parent != nil && (parent.NeedsPayment() || parent.Status() == order.StatusOnHold || parent.Status() == order.StatusCancelled) {
			return true, nil
		}
	}

	last, err := s.orders.LastOrder(ctx, s.id, s.parentOrderID, order.RelationRenewal, order.RelationSwitch)
	if err != nil {
		return false, fmt.Errorf("failed to load last renewal order: %w", err)
	}
	if last != nil {
		switch {
		case last.NeedsPayment():
			return true, nil
		case last.Status() == order.StatusOnHold, last.Status() == order.StatusFailed, last.Status() == order.StatusCancelled:
			return true, nil
		}
	}

	return false, nil
}

// CalculateDate previews what a schedule date would be recomputed to,
// without mutating anything.
func (s *Subscription) CalculateDate(ctx context.Context, dateType vo.DateType) (time.Time, error) {
	now := biztime.NowUTC()

	switch dateType {
	case vo.DateNextPayment:
		facts, err := s.nextPaymentFacts(ctx, now)
		if err != nil {
			return time.Time{}, err
		}
		return CalculateNextPayment(facts), nil

	case vo.DateTrialEnd:
		count, err := s.PaymentCount(ctx, CountCompleted, nil)
		if err != nil {
			return time.Time{}, err
		}
		return CalculateTrialEnd(count, s.Date(vo.DateTrialEnd)), nil

	default:
		return s.GetDate(ctx, dateType)
	}
}

// EndOfPrepaidTerm computes when already-paid service runs out, as of now.
func (s *Subscription) EndOfPrepaidTerm(now time.Time) time.Time {
	return CalculateEndOfPrepaidTerm(s.Date(vo.DateNextPayment), s.Date(vo.DateEnd), now)
}

func (s *Subscription) nextPaymentFacts(ctx context.Context, now time.Time) (NextPaymentFacts, error) {
	count, err := s.PaymentCount(ctx, CountCompleted, nil)
	if err != nil {
		return NextPaymentFacts{}, err
	}

	lastCreated, err := s.GetDate(ctx, vo.DateLastOrderCreated)
	if err != nil {
		return NextPaymentFacts{}, err
	}
	lastPaid, err := s.GetDate(ctx, vo.DateLastOrderPaid)
	if err != nil {
		return NextPaymentFacts{}, err
	}

	return NextPaymentFacts{
		Start:             s.Date(vo.DateStart),
		StoredNextPayment: s.Date(vo.DateNextPayment),
		TrialEnd:          s.Date(vo.DateTrialEnd),
		LastPayment:       biztime.MaxTime(lastCreated, lastPaid),
		End:               s.Date(vo.DateEnd),
		Interval:          s.interval,
		Period:            s.period,
		Synced:            s.synced,
		PaymentCount:      count,
		Now:               now,
	}, nil
}

func (s *Subscription) touch() {
	s.updatedAt = biztime.NowUTC()
	s.version++
}
