package usecases

import (
	"context"
	"errors"
	"fmt"

	"subcycle/internal/domain/order"
	"subcycle/internal/domain/shared/events"
	"subcycle/internal/domain/subscription"
	vo "subcycle/internal/domain/subscription/valueobjects"
	"subcycle/internal/shared/logger"
)

// PaymentFailedCommand records a failed payment attempt.
type PaymentFailedCommand struct {
	SubscriptionID uint
	OrderID        uint
}

// PaymentFailedUseCase handles a failed payment: the order is marked failed
// and the subscription suspends, or cancels once the failure count reaches
// the configured maximum.
type PaymentFailedUseCase struct {
	repo         subscription.Repository
	orders       order.Store
	ledger       order.Ledger
	updateStatus *UpdateStatusUseCase
	publisher    events.EventPublisher
	// maxFailedPayments of 0 disables the cancellation cutoff.
	maxFailedPayments int
	logger            logger.Interface
}

func NewPaymentFailedUseCase(
	repo subscription.Repository,
	orders order.Store,
	ledger order.Ledger,
	updateStatus *UpdateStatusUseCase,
	publisher events.EventPublisher,
	maxFailedPayments int,
	log logger.Interface,
) *PaymentFailedUseCase {
	return &PaymentFailedUseCase{
		repo:              repo,
		orders:            orders,
		ledger:            ledger,
		updateStatus:      updateStatus,
		publisher:         publisher,
		maxFailedPayments: maxFailedPayments,
		logger:            log,
	}
}

func (uc *PaymentFailedUseCase) Execute(ctx context.Context, cmd PaymentFailedCommand) error {
	sub, err := uc.repo.GetByID(ctx, cmd.SubscriptionID)
	if err != nil {
		return err
	}

	if cmd.OrderID != 0 {
		if err := uc.orders.UpdateStatus(ctx, cmd.OrderID, order.StatusFailed); err != nil {
			return fmt.Errorf("failed to mark order %d failed: %w", cmd.OrderID, err)
		}
	}

	sub.ResetPaymentCountCache()

	target := vo.StatusOnHold
	note := "Payment failed."
	if uc.maxFailedPayments > 0 {
		failed, err := sub.FailedPaymentCount(ctx)
		if err != nil {
			return err
		}
		if failed >= uc.maxFailedPayments {
			target = vo.StatusCancelled
			note = fmt.Sprintf("Payment failed %d times. Subscription cancelled.", failed)
		}
	}

	if sub.Status() != target {
		err := uc.updateStatus.Execute(ctx, UpdateStatusCommand{
			SubscriptionID: sub.ID(),
			Status:         target.String(),
			Note:           note,
		})
		if err != nil && !errors.Is(err, subscription.ErrIllegalTransition) {
			return err
		}
		if err != nil {
			uc.logger.Warnw("payment failed but subscription could not change status",
				"subscription_id", sub.ID(), "status", sub.Status(), "target", target, "error", err)
		}
	}

	if err := uc.publisher.Publish(subscription.NewPaymentFailedEvent(sub.ID(), cmd.OrderID, target.String())); err != nil {
		uc.logger.Errorw("failed to publish payment failure",
			"subscription_id", sub.ID(), "error", err)
	}

	if isRenewal, err := uc.isRenewalOrder(ctx, sub.ID(), cmd.OrderID); err != nil {
		return err
	} else if isRenewal {
		if err := uc.publisher.Publish(subscription.NewRenewalPaymentFailedEvent(sub.ID(), cmd.OrderID)); err != nil {
			uc.logger.Errorw("failed to publish renewal payment failure",
				"subscription_id", sub.ID(), "error", err)
		}
	}

	uc.logger.Infow("payment failure recorded",
		"subscription_id", sub.ID(), "order_id", cmd.OrderID, "target_status", target)
	return nil
}

func (uc *PaymentFailedUseCase) isRenewalOrder(ctx context.Context, subscriptionID, orderID uint) (bool, error) {
	if orderID == 0 {
		return false, nil
	}
	ids, err := uc.ledger.RelatedIDs(ctx, subscriptionID, order.RelationRenewal)
	if err != nil {
		return false, fmt.Errorf("failed to query renewal order ids: %w", err)
	}
	for _, id := range ids {
		if id == orderID {
			return true, nil
		}
	}
	return false, nil
}
