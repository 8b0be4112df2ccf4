// Package repository contains the GORM-backed persistence adapters.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"subcycle/internal/domain/order"
	"subcycle/internal/domain/subscription"
	vo "subcycle/internal/domain/subscription/valueobjects"
	"subcycle/internal/infrastructure/persistence/mappers"
	"subcycle/internal/infrastructure/persistence/models"
	"subcycle/internal/shared/logger"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mappers.SubscriptionMapper
	orders *order.Query
	caps   subscription.CapabilityResolver
	env    subscription.EnvironmentChecker
	logger logger.Interface
}

func NewSubscriptionRepository(
	db *gorm.DB,
	orders *order.Query,
	caps subscription.CapabilityResolver,
	env subscription.EnvironmentChecker,
	log logger.Interface,
) subscription.Repository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mappers.NewSubscriptionMapper(),
		orders: orders,
		caps:   caps,
		env:    env,
		logger: log,
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, sub *subscription.Subscription) error {
	model, err := r.mapper.ToModel(sub)
	if err != nil {
		r.logger.Errorw("failed to map subscription entity to model", "error", err)
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create subscription in database", "error", err)
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := sub.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set subscription ID: %w", err)
	}
	sub.AttachCollaborators(r.orders, r.caps, r.env)

	r.logger.Infow("subscription created", "id", model.ID, "status", model.Status)
	return nil
}

func (r *SubscriptionRepositoryImpl) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel

	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", subscription.ErrSubscriptionNotFound, id)
		}
		r.logger.Errorw("failed to get subscription by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	sub, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map subscription model to entity", "id", id, "error", err)
		return nil, fmt.Errorf("failed to map subscription: %w", err)
	}

	sub.AttachCollaborators(r.orders, r.caps, r.env)
	return sub, nil
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, sub *subscription.Subscription) error {
	model, err := r.mapper.ToModel(sub)
	if err != nil {
		r.logger.Errorw("failed to map subscription entity to model", "id", sub.ID(), "error", err)
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	// Select("*") forces NULL writes for cleared dates and snapshot columns.
	result := r.db.WithContext(ctx).Model(&models.SubscriptionModel{}).
		Where("id = ?", model.ID).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(model)
	if result.Error != nil {
		r.logger.Errorw("failed to update subscription", "id", sub.ID(), "error", result.Error)
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", subscription.ErrSubscriptionNotFound, sub.ID())
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) SaveDates(ctx context.Context, sub *subscription.Subscription) error {
	model, err := r.mapper.ToModel(sub)
	if err != nil {
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	result := r.db.WithContext(ctx).Model(&models.SubscriptionModel{}).
		Where("id = ?", model.ID).
		Select(
			"date_start", "date_trial_end", "date_next_payment",
			"date_cancelled", "date_end", "date_payment_retry",
			"snapshot_end", "snapshot_trial_end",
			"version", "updated_at",
		).
		Updates(model)
	if result.Error != nil {
		r.logger.Errorw("failed to save subscription dates", "id", sub.ID(), "error", result.Error)
		return fmt.Errorf("failed to save subscription dates: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", subscription.ErrSubscriptionNotFound, sub.ID())
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) ListDueForRenewal(ctx context.Context, before time.Time, limit int) ([]uint, error) {
	var ids []uint

	err := r.db.WithContext(ctx).Model(&models.SubscriptionModel{}).
		Where("status = ?", vo.StatusActive.String()).
		Where("date_next_payment IS NOT NULL AND date_next_payment <= ?", before.UTC()).
		Order("date_next_payment ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		r.logger.Errorw("failed to list subscriptions due for renewal", "error", err)
		return nil, fmt.Errorf("failed to list due subscriptions: %w", err)
	}
	return ids, nil
}
