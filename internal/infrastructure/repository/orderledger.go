package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"subcycle/internal/domain/order"
	"subcycle/internal/infrastructure/persistence/models"
	"subcycle/internal/shared/logger"
)

// OrderLedgerImpl is the GORM-backed relation ledger.
type OrderLedgerImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewOrderLedger(db *gorm.DB, log logger.Interface) order.Ledger {
	return &OrderLedgerImpl{
		db:     db,
		logger: log,
	}
}

func (l *OrderLedgerImpl) RelatedIDs(ctx context.Context, subscriptionID uint, relation order.Relation) ([]uint, error) {
	var ids []uint

	err := l.db.WithContext(ctx).Model(&models.SubscriptionOrderModel{}).
		Where("subscription_id = ? AND relation = ?", subscriptionID, relation.String()).
		Order("order_id DESC").
		Pluck("order_id", &ids).Error
	if err != nil {
		l.logger.Errorw("failed to query related order ids",
			"subscription_id", subscriptionID, "relation", relation, "error", err)
		return nil, fmt.Errorf("failed to query related order ids: %w", err)
	}
	return ids, nil
}

func (l *OrderLedgerImpl) Link(ctx context.Context, subscriptionID, orderID uint, relation order.Relation) error {
	model := models.SubscriptionOrderModel{
		SubscriptionID: subscriptionID,
		OrderID:        orderID,
		Relation:       relation.String(),
	}

	// FirstOrCreate keeps a replayed link idempotent.
	err := l.db.WithContext(ctx).
		Where("subscription_id = ? AND order_id = ? AND relation = ?",
			subscriptionID, orderID, relation.String()).
		FirstOrCreate(&model).Error
	if err != nil {
		l.logger.Errorw("failed to link order to subscription",
			"subscription_id", subscriptionID, "order_id", orderID, "relation", relation, "error", err)
		return fmt.Errorf("failed to link order: %w", err)
	}
	return nil
}
