// Package usecases contains the application operations of the billing
// engine. Each use case loads the aggregate, runs one operation against the
// domain rules, persists the result and publishes the corresponding events.
package usecases

import (
	"context"
	"fmt"
	"time"

	"subcycle/internal/domain/shared/events"
	"subcycle/internal/domain/subscription"
	vo "subcycle/internal/domain/subscription/valueobjects"
	"subcycle/internal/shared/biztime"
	"subcycle/internal/shared/logger"
)

// TransitionOverride lets the caller extend the transition guard for flows
// the engine does not own, e.g. marking a subscription switched from an
// upgrade pipeline. Consulted only after the built-in guard says no.
type TransitionOverride func(ctx context.Context, sub *subscription.Subscription, requested vo.Status) bool

// UpdateStatusCommand requests a status transition.
type UpdateStatusCommand struct {
	SubscriptionID uint
	Status         string
	Note           string
}

// UpdateStatusUseCase runs the status state machine: guard, transition,
// per-target side effects, persistence, audit note and event. A side-effect
// failure reverts the status before the error is returned.
type UpdateStatusUseCase struct {
	repo      subscription.Repository
	notes     subscription.NoteRecorder
	publisher events.EventPublisher
	override  TransitionOverride
	logger    logger.Interface
}

func NewUpdateStatusUseCase(
	repo subscription.Repository,
	notes subscription.NoteRecorder,
	publisher events.EventPublisher,
	log logger.Interface,
) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{
		repo:      repo,
		notes:     notes,
		publisher: publisher,
		logger:    log,
	}
}

// WithOverride installs a transition override hook.
func (uc *UpdateStatusUseCase) WithOverride(override TransitionOverride) *UpdateStatusUseCase {
	uc.override = override
	return uc
}

func (uc *UpdateStatusUseCase) Execute(ctx context.Context, cmd UpdateStatusCommand) error {
	requested, err := vo.ParseStatus(cmd.Status)
	if err != nil {
		return err
	}

	sub, err := uc.repo.GetByID(ctx, cmd.SubscriptionID)
	if err != nil {
		return err
	}

	from := sub.Status()
	facts, err := uc.transitionFacts(ctx, sub)
	if err != nil {
		return err
	}

	if !subscription.CanTransition(from, requested, facts) {
		if uc.override == nil || !uc.override(ctx, sub, requested) {
			uc.recordNote(ctx, sub.ID(), fmt.Sprintf(
				"Unable to change subscription status from %s to %s.", from, requested))
			return subscription.NewIllegalTransitionError(from.String(), requested.String())
		}
	}

	if err := sub.SetStatus(requested); err != nil {
		return err
	}

	if err := uc.applySideEffects(ctx, sub, from, requested); err != nil {
		// The transition itself is undone; date changes the side effect
		// already applied stay, matching the at-least-once semantics of
		// the schedule columns.
		return uc.revertTransition(ctx, sub, from, requested, err)
	}

	if err := uc.repo.Update(ctx, sub); err != nil {
		return fmt.Errorf("failed to persist subscription %d: %w", sub.ID(), err)
	}

	note := cmd.Note
	if note == "" {
		note = fmt.Sprintf("Status changed from %s to %s.", from, requested)
	} else {
		note = fmt.Sprintf("%s Status changed from %s to %s.", note, from, requested)
	}
	uc.recordNote(ctx, sub.ID(), note)

	if err := uc.publisher.Publish(subscription.NewStatusChangedEvent(
		sub.ID(), from.String(), requested.String(), note)); err != nil {
		// The dispatcher runs strict here, so a subscriber rejecting the
		// change rolls the transition back the same way a failed side
		// effect does.
		return uc.revertTransition(ctx, sub, from, requested, err)
	}

	uc.logger.Infow("subscription status changed",
		"subscription_id", sub.ID(), "from", from, "to", requested)
	return nil
}

// revertTransition undoes a half-applied transition: the status goes back to
// its previous value, the reverted state is persisted, a failure note is
// recorded, and the caller gets a transient error to retry on.
func (uc *UpdateStatusUseCase) revertTransition(ctx context.Context, sub *subscription.Subscription, from, to vo.Status, cause error) error {
	if revertErr := sub.SetStatus(from); revertErr != nil {
		uc.logger.Errorw("failed to revert status after transition failure",
			"subscription_id", sub.ID(), "error", revertErr)
	}
	if saveErr := uc.repo.Update(ctx, sub); saveErr != nil {
		uc.logger.Errorw("failed to persist reverted status",
			"subscription_id", sub.ID(), "error", saveErr)
	}
	uc.recordNote(ctx, sub.ID(), fmt.Sprintf(
		"Unable to change subscription status to %s: %v", to, cause))
	return fmt.Errorf("%w: changing status to %s: %v",
		subscription.ErrTransientProcessing, to, cause)
}

func (uc *UpdateStatusUseCase) transitionFacts(ctx context.Context, sub *subscription.Subscription) (subscription.TransitionFacts, error) {
	needsPayment, err := sub.NeedsPayment(ctx)
	if err != nil {
		return subscription.TransitionFacts{}, err
	}
	return subscription.TransitionFacts{
		SupportsSuspension:        sub.SupportsFeature(ctx, subscription.FeatureSuspension),
		SupportsReactivation:      sub.SupportsFeature(ctx, subscription.FeatureReactivation),
		SupportsCancellation:      sub.SupportsFeature(ctx, subscription.FeatureCancellation),
		SupportsDateChanges:       sub.SupportsFeature(ctx, subscription.FeatureDateChanges),
		SupportsScheduledPayments: sub.SupportsFeature(ctx, subscription.FeatureScheduledPayments),
		IsManual:                  sub.IsManual(ctx),
		NeedsPayment:              needsPayment,
		EndTime:                   sub.Date(vo.DateEnd),
		Now:                       biztime.NowUTC(),
	}, nil
}

// applySideEffects runs the schedule adjustments each target status implies.
func (uc *UpdateStatusUseCase) applySideEffects(ctx context.Context, sub *subscription.Subscription, from, to vo.Status) error {
	now := biztime.NowUTC()

	switch to {
	case vo.StatusPendingCancel:
		// Billing stops now; access runs until the already-paid term ends.
		sub.SaveScheduleSnapshot()
		endOfTerm := sub.EndOfPrepaidTerm(now)
		return sub.UpdateDates(map[vo.DateType]time.Time{
			vo.DateNextPayment: {},
			vo.DateTrialEnd:    {},
			vo.DateCancelled:   now,
			vo.DateEnd:         endOfTerm,
		})

	case vo.StatusActive:
		if from == vo.StatusPendingCancel {
			// The snapshot taken when cancellation was requested becomes the
			// schedule again, and the restored end is when the next charge
			// falls due.
			if err := sub.UpdateDates(map[vo.DateType]time.Time{
				vo.DateEnd:         sub.SnapshotEnd(),
				vo.DateTrialEnd:    sub.SnapshotTrialEnd(),
				vo.DateNextPayment: sub.SnapshotEnd(),
				vo.DateCancelled:   {},
			}); err != nil {
				return err
			}
			sub.ClearScheduleSnapshot()
			return nil
		}
		return uc.ensureFutureNextPayment(ctx, sub, now)

	case vo.StatusOnHold:
		sub.IncrementSuspensionCount()
		return nil

	case vo.StatusCancelled:
		updates := map[vo.DateType]time.Time{
			vo.DateNextPayment: {},
			vo.DateTrialEnd:    {},
			vo.DateEnd:         now,
		}
		if sub.Date(vo.DateCancelled).IsZero() {
			updates[vo.DateCancelled] = now
		}
		return sub.UpdateDates(updates)

	case vo.StatusExpired, vo.StatusSwitched:
		return sub.UpdateDates(map[vo.DateType]time.Time{
			vo.DateNextPayment: {},
			vo.DateTrialEnd:    {},
			vo.DateEnd:         now,
		})

	default:
		return nil
	}
}

// ensureFutureNextPayment recomputes the next payment when the stored one is
// missing or no longer safely in the future.
func (uc *UpdateStatusUseCase) ensureFutureNextPayment(ctx context.Context, sub *subscription.Subscription, now time.Time) error {
	stored := sub.Date(vo.DateNextPayment)
	if stored.After(now.Add(2 * time.Hour)) {
		return nil
	}

	next, err := sub.CalculateDate(ctx, vo.DateNextPayment)
	if err != nil {
		return err
	}
	if next.IsZero() {
		// No further payment is due. A stale stored date would keep the
		// scheduler picking the subscription up, so drop it.
		if !stored.IsZero() && stored.Before(now) {
			return sub.DeleteDate(vo.DateNextPayment)
		}
		return nil
	}
	if next.Equal(stored) {
		return nil
	}
	return sub.UpdateDates(map[vo.DateType]time.Time{vo.DateNextPayment: next})
}

func (uc *UpdateStatusUseCase) recordNote(ctx context.Context, subscriptionID uint, note string) {
	if uc.notes == nil {
		return
	}
	if err := uc.notes.RecordNote(ctx, subscriptionID, note); err != nil {
		uc.logger.Warnw("failed to record subscription note",
			"subscription_id", subscriptionID, "error", err)
	}
}
