package usecases

import (
	"context"
	"fmt"
	"time"

	"subcycle/internal/domain/shared/events"
	"subcycle/internal/domain/subscription"
	vo "subcycle/internal/domain/subscription/valueobjects"
	"subcycle/internal/shared/biztime"
	apperrors "subcycle/internal/shared/errors"
	"subcycle/internal/shared/logger"
)

// UpdateDatesCommand requests a batch schedule-date update. Dates map raw
// date-type names to storage-format timestamps; an empty value deletes the
// date.
type UpdateDatesCommand struct {
	SubscriptionID uint
	Dates          map[string]string
}

// UpdateDatesUseCase applies a schedule-date batch: every date is checked
// for editability in the current status, then the whole batch validates and
// commits atomically on the aggregate.
type UpdateDatesUseCase struct {
	repo      subscription.Repository
	notes     subscription.NoteRecorder
	publisher events.EventPublisher
	logger    logger.Interface
}

func NewUpdateDatesUseCase(
	repo subscription.Repository,
	notes subscription.NoteRecorder,
	publisher events.EventPublisher,
	log logger.Interface,
) *UpdateDatesUseCase {
	return &UpdateDatesUseCase{
		repo:      repo,
		notes:     notes,
		publisher: publisher,
		logger:    log,
	}
}

func (uc *UpdateDatesUseCase) Execute(ctx context.Context, cmd UpdateDatesCommand) error {
	if len(cmd.Dates) == 0 {
		return nil
	}

	sub, err := uc.repo.GetByID(ctx, cmd.SubscriptionID)
	if err != nil {
		return err
	}

	updates := make(map[vo.DateType]time.Time, len(cmd.Dates))
	for rawType, rawValue := range cmd.Dates {
		dateType, err := vo.ParseDateType(rawType)
		if err != nil {
			return err
		}

		editable, err := sub.CanDateBeUpdated(ctx, dateType)
		if err != nil {
			return err
		}
		if !editable {
			return apperrors.NewConflictError(fmt.Sprintf(
				"the %s date cannot be updated while the subscription is %s",
				dateType, sub.Status()))
		}

		value, err := biztime.ParseStorage(rawValue)
		if err != nil {
			return err
		}
		updates[dateType] = value
	}

	if err := sub.UpdateDates(updates); err != nil {
		if uc.notes != nil {
			_ = uc.notes.RecordNote(ctx, sub.ID(),
				fmt.Sprintf("Unable to update subscription dates: %v", err))
		}
		return err
	}

	if err := uc.repo.SaveDates(ctx, sub); err != nil {
		return fmt.Errorf("failed to persist dates for subscription %d: %w", sub.ID(), err)
	}

	applied := make(map[string]time.Time, len(updates))
	for dateType, value := range updates {
		applied[dateType.String()] = value
	}
	if err := uc.publisher.Publish(subscription.NewDatesUpdatedEvent(sub.ID(), applied)); err != nil {
		uc.logger.Errorw("failed to publish dates update",
			"subscription_id", sub.ID(), "error", err)
	}

	uc.logger.Infow("subscription dates updated",
		"subscription_id", sub.ID(), "count", len(updates))
	return nil
}
