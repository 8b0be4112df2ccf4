package usecases

import (
	"context"

	"subcycle/internal/domain/subscription"
	vo "subcycle/internal/domain/subscription/valueobjects"
	"subcycle/internal/shared/biztime"
	"subcycle/internal/shared/logger"
)

// CalculateDateCommand previews a recomputed schedule date.
type CalculateDateCommand struct {
	SubscriptionID uint
	DateType       string
}

// CalculateDateResult carries the preview. Calculated is empty when the
// computation yields no date, e.g. a next payment suppressed by a nearby
// end date.
type CalculateDateResult struct {
	DateType   string `json:"date_type"`
	Calculated string `json:"calculated"`
	Stored     string `json:"stored,omitempty"`
}

// CalculateDateUseCase previews what a schedule date would become without
// writing anything.
type CalculateDateUseCase struct {
	repo   subscription.Repository
	logger logger.Interface
}

func NewCalculateDateUseCase(repo subscription.Repository, log logger.Interface) *CalculateDateUseCase {
	return &CalculateDateUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *CalculateDateUseCase) Execute(ctx context.Context, cmd CalculateDateCommand) (*CalculateDateResult, error) {
	dateType, err := vo.ParseDateType(cmd.DateType)
	if err != nil {
		return nil, err
	}

	sub, err := uc.repo.GetByID(ctx, cmd.SubscriptionID)
	if err != nil {
		return nil, err
	}

	calculated, err := sub.CalculateDate(ctx, dateType)
	if err != nil {
		return nil, err
	}

	return &CalculateDateResult{
		DateType:   dateType.String(),
		Calculated: biztime.FormatStorage(calculated),
		Stored:     biztime.FormatStorage(sub.Date(dateType)),
	}, nil
}
