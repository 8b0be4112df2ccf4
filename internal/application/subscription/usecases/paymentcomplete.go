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

// PaymentCompleteCommand records a successful payment against a
// subscription. OrderID may be zero when the gateway reports a payment the
// engine holds no order for.
type PaymentCompleteCommand struct {
	SubscriptionID uint
	OrderID        uint
	TransactionID  string
}

// PaymentCompleteUseCase handles a successful payment: the order is marked
// paid, the suspension counter and payment tallies reset, and the
// subscription reactivates, which also advances the next payment date.
type PaymentCompleteUseCase struct {
	repo         subscription.Repository
	orders       order.Store
	ledger       order.Ledger
	updateStatus *UpdateStatusUseCase
	publisher    events.EventPublisher
	logger       logger.Interface
}

func NewPaymentCompleteUseCase(
	repo subscription.Repository,
	orders order.Store,
	ledger order.Ledger,
	updateStatus *UpdateStatusUseCase,
	publisher events.EventPublisher,
	log logger.Interface,
) *PaymentCompleteUseCase {
	return &PaymentCompleteUseCase{
		repo:         repo,
		orders:       orders,
		ledger:       ledger,
		updateStatus: updateStatus,
		publisher:    publisher,
		logger:       log,
	}
}

func (uc *PaymentCompleteUseCase) Execute(ctx context.Context, cmd PaymentCompleteCommand) error {
	sub, err := uc.repo.GetByID(ctx, cmd.SubscriptionID)
	if err != nil {
		return err
	}

	if cmd.OrderID != 0 {
		ord, err := uc.orders.Get(ctx, cmd.OrderID)
		if err != nil {
			return fmt.Errorf("failed to load order %d: %w", cmd.OrderID, err)
		}
		if ord != nil && !ord.IsPaid() {
			if err := uc.orders.MarkPaid(ctx, cmd.OrderID, cmd.TransactionID); err != nil {
				return fmt.Errorf("failed to mark order %d paid: %w", cmd.OrderID, err)
			}
		}
	}

	sub.ResetSuspensionCount()
	sub.ResetPaymentCountCache()
	if err := uc.repo.Update(ctx, sub); err != nil {
		return fmt.Errorf("failed to persist subscription %d: %w", sub.ID(), err)
	}

	switch sub.Status() {
	case vo.StatusPending, vo.StatusOnHold:
		err := uc.updateStatus.Execute(ctx, UpdateStatusCommand{
			SubscriptionID: sub.ID(),
			Status:         vo.StatusActive.String(),
			Note:           "Payment received.",
		})
		if err != nil && !errors.Is(err, subscription.ErrIllegalTransition) {
			return err
		}
		if err != nil {
			uc.logger.Warnw("payment received but subscription could not activate",
				"subscription_id", sub.ID(), "status", sub.Status(), "error", err)
		}
	}

	if err := uc.publisher.Publish(subscription.NewPaymentCompleteEvent(sub.ID(), cmd.OrderID)); err != nil {
		uc.logger.Errorw("failed to publish payment completion",
			"subscription_id", sub.ID(), "error", err)
	}

	isRenewal, err := uc.isRenewalOrder(ctx, sub.ID(), cmd.OrderID)
	if err != nil {
		return err
	}
	if isRenewal {
		if err := uc.publisher.Publish(subscription.NewRenewalPaymentCompleteEvent(sub.ID(), cmd.OrderID)); err != nil {
			uc.logger.Errorw("failed to publish renewal payment completion",
				"subscription_id", sub.ID(), "error", err)
		}
	}

	uc.logger.Infow("payment recorded",
		"subscription_id", sub.ID(), "order_id", cmd.OrderID, "renewal", isRenewal)
	return nil
}

func (uc *PaymentCompleteUseCase) isRenewalOrder(ctx context.Context, subscriptionID, orderID uint) (bool, error) {
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
