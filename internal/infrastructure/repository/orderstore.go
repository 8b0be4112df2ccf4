package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"subcycle/internal/domain/order"
	"subcycle/internal/infrastructure/persistence/mappers"
	"subcycle/internal/infrastructure/persistence/models"
	"subcycle/internal/shared/biztime"
	"subcycle/internal/shared/logger"
)

// OrderStoreImpl is the GORM-backed order store. In a full shop deployment
// this adapter is replaced by a client for the order system; the engine only
// sees the order.Store interface.
type OrderStoreImpl struct {
	db     *gorm.DB
	mapper *mappers.OrderMapper
	logger logger.Interface
}

func NewOrderStore(db *gorm.DB, log logger.Interface) order.Store {
	return &OrderStoreImpl{
		db:     db,
		mapper: mappers.NewOrderMapper(),
		logger: log,
	}
}

func (s *OrderStoreImpl) Get(ctx context.Context, id uint) (*order.Order, error) {
	var model models.OrderModel

	if err := s.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Errorw("failed to get order", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return s.mapper.ToEntity(&model)
}

func (s *OrderStoreImpl) CreateRenewal(ctx context.Context, subscriptionID uint, totalCents int64) (*order.Order, error) {
	model := &models.OrderModel{
		Status:      order.StatusPending.String(),
		TotalCents:  totalCents,
		DateCreated: biztime.NowUTC(),
	}

	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		s.logger.Errorw("failed to create renewal order",
			"subscription_id", subscriptionID, "error", err)
		return nil, fmt.Errorf("failed to create renewal order: %w", err)
	}

	s.logger.Infow("renewal order created",
		"subscription_id", subscriptionID, "order_id", model.ID)
	return s.mapper.ToEntity(model)
}

func (s *OrderStoreImpl) UpdateStatus(ctx context.Context, id uint, status order.Status) error {
	result := s.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("id = ?", id).
		Update("status", status.String())
	if result.Error != nil {
		return fmt.Errorf("failed to update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order %d not found", id)
	}
	return nil
}

func (s *OrderStoreImpl) MarkPaid(ctx context.Context, id uint, transactionID string) error {
	now := biztime.NowUTC()
	updates := map[string]interface{}{
		"status":    order.StatusProcessing.String(),
		"date_paid": now,
	}
	if transactionID != "" {
		updates["transaction_id"] = transactionID
	}

	result := s.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to mark order paid: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order %d not found", id)
	}
	return nil
}
