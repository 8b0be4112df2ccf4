package usecases

import (
	"context"
	"fmt"

	"subcycle/internal/domain/order"
	"subcycle/internal/domain/shared/events"
	"subcycle/internal/domain/subscription"
	vo "subcycle/internal/domain/subscription/valueobjects"
	"subcycle/internal/shared/logger"
)

// ProcessRenewalCommand triggers one renewal cycle for a due subscription.
// RequiredStatus guards against racing transitions: the cycle is a no-op
// unless the subscription still holds that status (active when empty). Note,
// when set, replaces the default suspension note.
type ProcessRenewalCommand struct {
	SubscriptionID uint
	RequiredStatus string
	Note           string
}

// ProcessRenewalUseCase drives a scheduled renewal. The subscription is put
// on hold before the renewal order exists, so a crash between the two steps
// leaves it suspended rather than silently unbilled.
type ProcessRenewalUseCase struct {
	repo            subscription.Repository
	orders          order.Store
	ledger          order.Ledger
	updateStatus    *UpdateStatusUseCase
	paymentComplete *PaymentCompleteUseCase
	notes           subscription.NoteRecorder
	publisher       events.EventPublisher
	logger          logger.Interface
}

func NewProcessRenewalUseCase(
	repo subscription.Repository,
	orders order.Store,
	ledger order.Ledger,
	updateStatus *UpdateStatusUseCase,
	paymentComplete *PaymentCompleteUseCase,
	notes subscription.NoteRecorder,
	publisher events.EventPublisher,
	log logger.Interface,
) *ProcessRenewalUseCase {
	return &ProcessRenewalUseCase{
		repo:            repo,
		orders:          orders,
		ledger:          ledger,
		updateStatus:    updateStatus,
		paymentComplete: paymentComplete,
		notes:           notes,
		publisher:       publisher,
		logger:          log,
	}
}

func (uc *ProcessRenewalUseCase) Execute(ctx context.Context, cmd ProcessRenewalCommand) error {
	sub, err := uc.repo.GetByID(ctx, cmd.SubscriptionID)
	if err != nil {
		return err
	}

	required := vo.StatusActive
	if cmd.RequiredStatus != "" {
		required, err = vo.ParseStatus(cmd.RequiredStatus)
		if err != nil {
			return err
		}
	}
	if sub.Status() != required {
		uc.logger.Debugw("skipping renewal, subscription no longer in required status",
			"subscription_id", sub.ID(), "status", sub.Status(), "required", required)
		return nil
	}

	// Gateways that bill on their own schedule report renewals through the
	// payment callbacks instead; the engine only creates renewal orders it
	// has to collect on.
	if sub.TotalCents() != 0 && !sub.IsManual(ctx) && sub.SupportsFeature(ctx, subscription.FeatureScheduledPayments) {
		uc.logger.Debugw("skipping renewal charged by the gateway",
			"subscription_id", sub.ID())
		return nil
	}

	note := cmd.Note
	if note == "" {
		note = "Payment due for renewal."
	}
	if sub.Status() != vo.StatusOnHold {
		if err := uc.updateStatus.Execute(ctx, UpdateStatusCommand{
			SubscriptionID: sub.ID(),
			Status:         vo.StatusOnHold.String(),
			Note:           note,
		}); err != nil {
			return fmt.Errorf("failed to suspend subscription %d for renewal: %w", sub.ID(), err)
		}
	}

	renewal, err := uc.createRenewalOrder(ctx, sub)
	if err != nil {
		// Stays on hold; the next scheduler pass or an operator retries.
		if uc.notes != nil {
			_ = uc.notes.RecordNote(ctx, sub.ID(),
				fmt.Sprintf("Failed to create renewal order: %v", err))
		}
		return fmt.Errorf("%w: subscription %d: %v",
			subscription.ErrRenewalOrderCreation, sub.ID(), err)
	}

	if err := uc.ledger.Link(ctx, sub.ID(), renewal.ID(), order.RelationRenewal); err != nil {
		return fmt.Errorf("failed to link renewal order %d: %w", renewal.ID(), err)
	}

	if err := uc.publisher.Publish(subscription.NewRenewalOrderCreatedEvent(sub.ID(), renewal.ID())); err != nil {
		uc.logger.Errorw("failed to publish renewal order creation",
			"subscription_id", sub.ID(), "order_id", renewal.ID(), "error", err)
	}

	uc.logger.Infow("renewal order created",
		"subscription_id", sub.ID(), "order_id", renewal.ID(), "total_cents", sub.TotalCents())

	// A free renewal has no charge to wait for; complete it immediately so
	// the subscription reactivates and the schedule advances.
	if sub.TotalCents() == 0 {
		if err := uc.orders.MarkPaid(ctx, renewal.ID(), ""); err != nil {
			return fmt.Errorf("failed to mark zero-total renewal %d paid: %w", renewal.ID(), err)
		}
		return uc.paymentComplete.Execute(ctx, PaymentCompleteCommand{
			SubscriptionID: sub.ID(),
			OrderID:        renewal.ID(),
		})
	}

	return nil
}

// createRenewalOrder creates the renewal order, retrying exactly once.
func (uc *ProcessRenewalUseCase) createRenewalOrder(ctx context.Context, sub *subscription.Subscription) (*order.Order, error) {
	renewal, err := uc.orders.CreateRenewal(ctx, sub.ID(), sub.TotalCents())
	if err == nil {
		return renewal, nil
	}

	uc.logger.Warnw("renewal order creation failed, retrying",
		"subscription_id", sub.ID(), "error", err)

	renewal, retryErr := uc.orders.CreateRenewal(ctx, sub.ID(), sub.TotalCents())
	if retryErr != nil {
		return nil, retryErr
	}
	return renewal, nil
}
